package tree

import (
	"fmt"

	"github.com/edgeflare/treeconf/pkg/codec"
)

// nestedValue builds the nested representation of every leaf under n:
// maps for named children, arrays for indexed ones, decoded leaf values
// at the bottom. Used by whole-subtree Get.
func nestedValue(n Node, c codec.Codec) (any, error) {
	if n.IsLeaf() {
		raw, err := n.Get(c)
		if err != nil {
			return nil, err
		}
		var v any
		if err := c.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSerialize, err)
		}
		return v, nil
	}

	if _, indexed := n.(*List); indexed {
		out := make([]any, n.Children())
		for i := 0; i < n.Children(); i++ {
			v, err := nestedValue(n.Child(i), c)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}

	out := make(map[string]any, n.Children())
	for i := 0; i < n.Children(); i++ {
		v, err := nestedValue(n.Child(i), c)
		if err != nil {
			return nil, err
		}
		out[n.Segment(i)] = v
	}
	return out, nil
}

// setSubtree applies a nested payload to every leaf under n. The leaves
// are snapshotted first and restored if any part of the payload fails,
// so a failed set leaves the tree unchanged.
func setSubtree(n Node, c codec.Codec, data []byte) error {
	var v any
	if err := c.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrDeserialize, err)
	}

	snap, err := snapshot(n, c)
	if err != nil {
		return err
	}
	if err := setNested(n, c, v); err != nil {
		restore(snap, c)
		return err
	}
	return nil
}

func setNested(n Node, c codec.Codec, v any) error {
	if n.IsLeaf() {
		raw, err := c.Marshal(v)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDeserialize, err)
		}
		return n.Set(c, raw)
	}

	if _, indexed := n.(*List); indexed {
		elems, ok := v.([]any)
		if !ok {
			return fmt.Errorf("%w: expected array for indexed node", ErrDeserialize)
		}
		if len(elems) != n.Children() {
			return fmt.Errorf("%w: expected %d elements, got %d", ErrDeserialize, n.Children(), len(elems))
		}
		for i, elem := range elems {
			if err := setNested(n.Child(i), c, elem); err != nil {
				return err
			}
		}
		return nil
	}

	fields, err := stringKeyed(v)
	if err != nil {
		return err
	}
	for name, elem := range fields {
		child, err := n.Descend(name)
		if err != nil {
			return err
		}
		if err := setNested(child, c, elem); err != nil {
			return err
		}
	}
	return nil
}

// stringKeyed normalizes a decoded map. CBOR decodes untyped maps with
// interface{} keys, JSON with string keys.
func stringKeyed(v any) (map[string]any, error) {
	switch m := v.(type) {
	case map[string]any:
		return m, nil
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, elem := range m {
			s, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("%w: non-string key %v", ErrDeserialize, k)
			}
			out[s] = elem
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected object for named node", ErrDeserialize)
	}
}

type leafState struct {
	node Node
	raw  []byte
}

func snapshot(n Node, c codec.Codec) ([]leafState, error) {
	if n.IsLeaf() {
		raw, err := n.Get(c)
		if err != nil {
			return nil, err
		}
		return []leafState{{node: n, raw: raw}}, nil
	}
	var out []leafState
	for i := 0; i < n.Children(); i++ {
		states, err := snapshot(n.Child(i), c)
		if err != nil {
			return nil, err
		}
		out = append(out, states...)
	}
	return out, nil
}

func restore(snap []leafState, c codec.Codec) {
	// The snapshot came from the leaves themselves, so re-applying it
	// cannot fail.
	for _, s := range snap {
		_ = s.node.Set(c, s.raw)
	}
}
