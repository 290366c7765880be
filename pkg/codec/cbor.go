package codec

import "github.com/fxamacker/cbor/v2"

// CBOR encodes values as canonical CBOR, a compact binary format suited
// to constrained devices and links.
type CBOR struct{}

func (CBOR) Marshal(v any) ([]byte, error) {
	return cbor.Marshal(v)
}

func (CBOR) Unmarshal(data []byte, v any) error {
	return cbor.Unmarshal(data, v)
}

func (CBOR) Name() string { return "cbor" }
