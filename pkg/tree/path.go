package tree

import (
	"fmt"
	"strings"

	"github.com/edgeflare/treeconf/pkg/codec"
)

// Separator delimits path segments. Identifiers must not contain it;
// there is no escaping.
const Separator = '/'

// MaxDepth is the maximum number of path segments, and so the deepest
// nesting the enumeration cursor tracks.
const MaxDepth = 8

const sep = string(Separator)

// Split tokenizes a path into segments. A leading separator is
// root-relative addressing and is stripped, as is a single trailing
// separator; the empty path and the bare separator denote the root
// itself and yield no segments. Interior empty segments are rejected.
func Split(path string) ([]string, error) {
	path = strings.TrimPrefix(path, sep)
	path = strings.TrimSuffix(path, sep)
	if path == "" {
		return nil, nil
	}
	segs := strings.Split(path, sep)
	if len(segs) > MaxDepth {
		return nil, fmt.Errorf("%w: %d segments", ErrDepthExceeded, len(segs))
	}
	for _, s := range segs {
		if s == "" {
			return nil, fmt.Errorf("%w: empty segment", ErrNotFound)
		}
	}
	return segs, nil
}

// Resolve walks the tree from root, one segment at a time, and returns
// the addressed node. The empty path resolves to root itself.
func Resolve(root Node, path string) (Node, error) {
	segs, err := Split(path)
	if err != nil {
		return nil, err
	}
	n := root
	for _, s := range segs {
		n, err = n.Descend(s)
		if err != nil {
			return nil, err
		}
	}
	return n, nil
}

// Get resolves path and serializes the value there.
func Get(root Node, path string, c codec.Codec) ([]byte, error) {
	n, err := Resolve(root, path)
	if err != nil {
		return nil, err
	}
	return n.Get(c)
}

// Set resolves path and deserializes data into the value there. On
// failure the tree is unchanged.
func Set(root Node, path string, c codec.Codec, data []byte) error {
	n, err := Resolve(root, path)
	if err != nil {
		return err
	}
	return n.Set(c, data)
}
