package tree

import "strings"

// Walker enumerates every leaf path under a root in stable pre-order,
// children in declared order, one path per Next call. The cursor is a
// fixed-capacity frame stack, so a full enumeration never materializes
// the path set; the synchronization agent holds one across scheduling
// ticks while republishing.
type Walker struct {
	root   Node
	stack  []frame
	segs   []string
	primed bool
}

type frame struct {
	node Node
	next int
}

// NewWalker returns a cursor positioned before the first leaf.
func NewWalker(root Node) *Walker {
	w := &Walker{
		root:  root,
		stack: make([]frame, 0, MaxDepth),
		segs:  make([]string, 0, MaxDepth),
	}
	return w
}

// Reset rewinds the cursor to the first leaf.
func (w *Walker) Reset() {
	w.stack = w.stack[:0]
	w.segs = w.segs[:0]
	w.primed = false
}

// Next returns the next leaf path. ok is false once the enumeration is
// exhausted. A tree nested deeper than MaxDepth yields ErrDepthExceeded
// rather than growing the cursor.
func (w *Walker) Next() (path string, ok bool, err error) {
	if !w.primed {
		w.primed = true
		if w.root.IsLeaf() {
			// A bare leaf root has exactly one path: the root itself.
			return "", true, nil
		}
		w.stack = append(w.stack, frame{node: w.root})
	}

	for len(w.stack) > 0 {
		top := &w.stack[len(w.stack)-1]
		if top.next >= top.node.Children() {
			w.stack = w.stack[:len(w.stack)-1]
			if len(w.segs) > 0 {
				w.segs = w.segs[:len(w.segs)-1]
			}
			continue
		}

		i := top.next
		top.next++
		child := top.node.Child(i)
		seg := top.node.Segment(i)

		if child.IsLeaf() {
			if len(w.segs) == 0 {
				return seg, true, nil
			}
			return strings.Join(w.segs, sep) + sep + seg, true, nil
		}

		if len(w.stack) == cap(w.stack) {
			return "", false, ErrDepthExceeded
		}
		w.stack = append(w.stack, frame{node: child})
		w.segs = append(w.segs, seg)
	}
	return "", false, nil
}

// Walk calls fn with every leaf path in enumeration order, stopping at
// the first error.
func Walk(root Node, fn func(path string) error) error {
	w := NewWalker(root)
	for {
		path, ok, err := w.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(path); err != nil {
			return err
		}
	}
}
