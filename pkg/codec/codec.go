// Package codec defines the wire format used to serialize individual
// settings values. The tree and agent packages are codec-agnostic; any
// format that round-trips a value can be plugged in.
package codec

import "fmt"

// A Codec serializes and deserializes a single settings value.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error

	// Name identifies the codec in config files and logs.
	Name() string
}

// ByName returns the codec registered under name. An empty name selects
// the JSON default.
func ByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSON{}, nil
	case "cbor":
		return CBOR{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}
