package tree

import "errors"

var (
	// ErrNotFound indicates a path segment with no matching child, or an
	// index outside a list's fixed range.
	ErrNotFound = errors.New("no setting at path")

	// ErrLeafExpected indicates a get/set addressed an internal node and
	// whole-subtree access is not enabled on it.
	ErrLeafExpected = errors.New("path addresses an internal node")

	// ErrTypeMismatch indicates a segment whose form does not match the
	// node kind, e.g. a non-numeric index into a list.
	ErrTypeMismatch = errors.New("segment type mismatch")

	// ErrSerialize wraps a codec failure while reading a value.
	ErrSerialize = errors.New("serialize")

	// ErrDeserialize wraps a codec failure while writing a value. A set
	// that fails with it leaves the tree unchanged.
	ErrDeserialize = errors.New("deserialize")

	// ErrDepthExceeded indicates a tree deeper than MaxDepth, which the
	// enumeration cursor cannot track.
	ErrDepthExceeded = errors.New("tree exceeds maximum depth")
)

// Kind maps an error to the stable identifier reported on the error
// topic. Unrecognized errors map to "internal".
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrLeafExpected):
		return "leaf_expected"
	case errors.Is(err, ErrTypeMismatch):
		return "type_mismatch"
	case errors.Is(err, ErrSerialize):
		return "serialize"
	case errors.Is(err, ErrDeserialize):
		return "deserialize"
	case errors.Is(err, ErrDepthExceeded):
		return "depth_exceeded"
	default:
		return "internal"
	}
}
