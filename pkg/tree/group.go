package tree

import (
	"fmt"
	"strings"

	"github.com/edgeflare/treeconf/pkg/codec"
)

// NamedNode binds a child node to the identifier addressing it.
type NamedNode struct {
	Name string
	Node Node
}

// Named pairs an identifier with a child node. Identifiers must not
// contain the path separator; there is no escaping mechanism. The
// identifier "error" is reserved: a node so named would share its topic
// with the failure-report sibling and be unreachable over the wire.
// Named panics on an invalid identifier since tree shape is fixed at
// startup.
func Named(name string, n Node) NamedNode {
	if name == "" || strings.ContainsRune(name, Separator) {
		panic(fmt.Sprintf("tree: invalid identifier %q", name))
	}
	if name == "error" {
		panic(`tree: identifier "error" is reserved for failure reports`)
	}
	return NamedNode{Name: name, Node: n}
}

// Group is an internal node with a fixed, ordered set of named
// children, typically mirroring the fields of a settings struct.
type Group struct {
	children []NamedNode
	subtree  bool
}

// NewGroup composes named children into an internal node. Child order
// is the enumeration order.
func NewGroup(children ...NamedNode) *Group {
	return &Group{children: children}
}

// WithSubtree enables whole-subtree get/set on this node: Get
// serializes all leaves below it as one nested value and Set applies a
// nested payload to them, restoring prior values if any part fails.
func (g *Group) WithSubtree() *Group {
	g.subtree = true
	return g
}

func (g *Group) Descend(segment string) (Node, error) {
	for _, c := range g.children {
		if c.Name == segment {
			return c.Node, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, segment)
}

func (g *Group) Get(c codec.Codec) ([]byte, error) {
	if !g.subtree {
		return nil, fmt.Errorf("%w: subtree access disabled", ErrLeafExpected)
	}
	v, err := nestedValue(g, c)
	if err != nil {
		return nil, err
	}
	data, err := c.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	return data, nil
}

func (g *Group) Set(c codec.Codec, data []byte) error {
	if !g.subtree {
		return fmt.Errorf("%w: subtree access disabled", ErrLeafExpected)
	}
	return setSubtree(g, c, data)
}

func (g *Group) IsLeaf() bool { return false }

func (g *Group) Children() int { return len(g.children) }

func (g *Group) Segment(i int) string { return g.children[i].Name }

func (g *Group) Child(i int) Node { return g.children[i].Node }
