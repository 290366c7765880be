package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Enabled bool    `json:"enabled"`
	Gain    float64 `json:"gain"`
}

func TestRoundTrip(t *testing.T) {
	for _, c := range []Codec{JSON{}, CBOR{}} {
		t.Run(c.Name(), func(t *testing.T) {
			in := sample{Enabled: true, Gain: 0.5}

			data, err := c.Marshal(in)
			require.NoError(t, err)

			var out sample
			require.NoError(t, c.Unmarshal(data, &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestByName(t *testing.T) {
	c, err := ByName("")
	require.NoError(t, err)
	assert.Equal(t, "json", c.Name())

	c, err = ByName("cbor")
	require.NoError(t, err)
	assert.Equal(t, "cbor", c.Name())

	_, err = ByName("xml")
	assert.Error(t, err)
}
