package tree

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/edgeflare/treeconf/pkg/codec"
)

// List is an internal node with a fixed number of indexed children,
// addressed by base-10 non-negative integer segments.
type List struct {
	children []Node
	subtree  bool
}

// NewList composes indexed children into an internal node.
func NewList(children ...Node) *List {
	return &List{children: children}
}

// WithSubtree enables whole-subtree get/set, serializing the children
// as one array value. See Group.WithSubtree.
func (l *List) WithSubtree() *List {
	l.subtree = true
	return l
}

func (l *List) Descend(segment string) (Node, error) {
	i, err := parseIndex(segment)
	if err != nil {
		return nil, err
	}
	if i >= len(l.children) {
		return nil, fmt.Errorf("%w: index %d out of range [0,%d)", ErrNotFound, i, len(l.children))
	}
	return l.children[i], nil
}

func (l *List) Get(c codec.Codec) ([]byte, error) {
	if !l.subtree {
		return nil, fmt.Errorf("%w: subtree access disabled", ErrLeafExpected)
	}
	v, err := nestedValue(l, c)
	if err != nil {
		return nil, err
	}
	data, err := c.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	return data, nil
}

func (l *List) Set(c codec.Codec, data []byte) error {
	if !l.subtree {
		return fmt.Errorf("%w: subtree access disabled", ErrLeafExpected)
	}
	return setSubtree(l, c, data)
}

func (l *List) IsLeaf() bool { return false }

func (l *List) Children() int { return len(l.children) }

func (l *List) Segment(i int) string { return strconv.Itoa(i) }

func (l *List) Child(i int) Node { return l.children[i] }

// parseIndex parses a strictly numeric segment. Signs, leading zeros
// and other decorations a general integer parser would accept are
// rejected so every index has exactly one spelling.
func parseIndex(segment string) (int, error) {
	if segment == "" {
		return 0, fmt.Errorf("%w: empty index", ErrTypeMismatch)
	}
	if len(segment) > 1 && segment[0] == '0' {
		return 0, fmt.Errorf("%w: %q is not an index", ErrTypeMismatch, segment)
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q is not an index", ErrTypeMismatch, segment)
		}
	}
	i, err := strconv.Atoi(segment)
	if err != nil {
		// An all-digit segment only fails here on overflow, which is a
		// well-formed index no tree is large enough to hold.
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: index %q out of range", ErrNotFound, segment)
		}
		return 0, fmt.Errorf("%w: %q is not an index", ErrTypeMismatch, segment)
	}
	return i, nil
}
