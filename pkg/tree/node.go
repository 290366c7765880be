// Package tree implements the navigable settings tree: a fixed-shape
// hierarchy of named and indexed nodes whose leaf values are readable
// and writable at run time through slash-delimited paths.
//
// The shape of the tree is established once at startup by composing
// Group, List and Leaf nodes over the fields of an application-owned
// settings struct; only leaf values mutate afterwards. Traversal never
// reflects over the struct: every node resolves its own children, so
// descent is type-checked at the point the tree is built.
package tree

import (
	"fmt"

	"github.com/edgeflare/treeconf/pkg/codec"
)

// Node is one position in the settings tree, either a leaf holding a
// value or an internal node holding a fixed set of children.
type Node interface {
	// Descend resolves one path segment to a child node. Leaves have no
	// children and always fail with ErrNotFound.
	Descend(segment string) (Node, error)

	// Get serializes the value at this node. Internal nodes fail with
	// ErrLeafExpected unless whole-subtree access is enabled.
	Get(c codec.Codec) ([]byte, error)

	// Set deserializes data into this node. A failed set never mutates
	// the tree.
	Set(c codec.Codec, data []byte) error

	// IsLeaf reports whether this node holds a value. Internal nodes
	// report false even when composed with no children.
	IsLeaf() bool

	// Children reports the fixed number of children; zero for leaves.
	Children() int

	// Segment returns the path segment addressing child i.
	Segment(i int) string

	// Child returns child i. i must be in [0, Children()).
	Child(i int) Node
}

// Leaf holds a pointer to one value of type T inside the settings
// struct. Get and Set pass the value through the codec; Set commits
// only after the payload deserializes cleanly.
type Leaf[T any] struct {
	v *T
}

// NewLeaf wraps a settings field as an addressable leaf.
func NewLeaf[T any](v *T) *Leaf[T] {
	return &Leaf[T]{v: v}
}

func (l *Leaf[T]) Descend(segment string) (Node, error) {
	return nil, fmt.Errorf("%w: leaf has no child %q", ErrNotFound, segment)
}

func (l *Leaf[T]) Get(c codec.Codec) ([]byte, error) {
	data, err := c.Marshal(*l.v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	return data, nil
}

func (l *Leaf[T]) Set(c codec.Codec, data []byte) error {
	var tmp T
	if err := c.Unmarshal(data, &tmp); err != nil {
		return fmt.Errorf("%w: %v", ErrDeserialize, err)
	}
	*l.v = tmp
	return nil
}

func (l *Leaf[T]) IsLeaf() bool       { return true }
func (l *Leaf[T]) Children() int      { return 0 }
func (l *Leaf[T]) Segment(int) string { return "" }
func (l *Leaf[T]) Child(int) Node     { return nil }

// Value returns the current leaf value. Intended for hosts that hold a
// reference to the leaf; the agent itself only goes through Get/Set.
func (l *Leaf[T]) Value() T { return *l.v }
