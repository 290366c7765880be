package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgeflare/treeconf/pkg/codec"
)

type channel struct {
	Enabled bool
}

type settings struct {
	Gain     float32
	Channels [2]channel
}

func buildTree(s *settings, subtree bool) Node {
	ch := func(c *channel) Node {
		g := NewGroup(Named("enabled", NewLeaf(&c.Enabled)))
		if subtree {
			g = g.WithSubtree()
		}
		return g
	}
	return NewGroup(
		Named("gain", NewLeaf(&s.Gain)),
		Named("channels", NewList(ch(&s.Channels[0]), ch(&s.Channels[1]))),
	)
}

func TestSplit(t *testing.T) {
	testCases := []struct {
		name    string
		path    string
		want    []string
		wantErr error
	}{
		{name: "empty path is root", path: "", want: nil},
		{name: "bare separator is root", path: "/", want: nil},
		{name: "root relative", path: "/gain", want: []string{"gain"}},
		{name: "nested", path: "channels/1/enabled", want: []string{"channels", "1", "enabled"}},
		{name: "trailing separator stripped", path: "gain/", want: []string{"gain"}},
		{name: "interior empty segment", path: "channels//enabled", wantErr: ErrNotFound},
		{name: "too deep", path: "a/b/c/d/e/f/g/h/i", wantErr: ErrDepthExceeded},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			segs, err := Split(tc.path)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, segs)
		})
	}
}

func TestGetSetRoundTrip(t *testing.T) {
	s := &settings{Gain: 1.0}
	root := buildTree(s, false)
	c := codec.JSON{}

	require.NoError(t, Set(root, "/channels/1/enabled", c, []byte("true")))
	assert.True(t, s.Channels[1].Enabled)
	assert.False(t, s.Channels[0].Enabled)

	data, err := Get(root, "/channels/1/enabled", c)
	require.NoError(t, err)
	assert.Equal(t, "true", string(data))

	require.NoError(t, Set(root, "gain", c, []byte("0.5")))
	data, err = Get(root, "gain", c)
	require.NoError(t, err)
	assert.Equal(t, "0.5", string(data))
}

func TestResolveErrors(t *testing.T) {
	s := &settings{}
	root := buildTree(s, false)
	c := codec.JSON{}

	testCases := []struct {
		name string
		path string
		want error
	}{
		{name: "unknown field", path: "offset", want: ErrNotFound},
		{name: "index out of range", path: "channels/2/enabled", want: ErrNotFound},
		{name: "overflowing index", path: "channels/99999999999999999999/enabled", want: ErrNotFound},
		{name: "non-numeric index", path: "channels/left/enabled", want: ErrTypeMismatch},
		{name: "leading zero index", path: "channels/01/enabled", want: ErrTypeMismatch},
		{name: "signed index", path: "channels/+1/enabled", want: ErrTypeMismatch},
		{name: "descend past leaf", path: "gain/x", want: ErrNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Get(root, tc.path, c)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestInternalNodeWithoutSubtree(t *testing.T) {
	s := &settings{}
	root := buildTree(s, false)
	c := codec.JSON{}

	_, err := Get(root, "channels/1", c)
	assert.ErrorIs(t, err, ErrLeafExpected)

	err = Set(root, "channels/1", c, []byte(`{"enabled":true}`))
	assert.ErrorIs(t, err, ErrLeafExpected)
	assert.False(t, s.Channels[1].Enabled)
}

func TestFailedSetLeavesValueUnchanged(t *testing.T) {
	s := &settings{Gain: 2.5}
	root := buildTree(s, false)
	c := codec.JSON{}

	err := Set(root, "gain", c, []byte(`"loud"`))
	assert.ErrorIs(t, err, ErrDeserialize)
	assert.Equal(t, float32(2.5), s.Gain)
}

func TestSubtreeGetSet(t *testing.T) {
	s := &settings{}
	root := buildTree(s, true)
	c := codec.JSON{}

	require.NoError(t, Set(root, "channels/1", c, []byte(`{"enabled":true}`)))
	assert.True(t, s.Channels[1].Enabled)

	data, err := Get(root, "channels/1", c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"enabled":true}`, string(data))

	t.Run("unknown key rejected", func(t *testing.T) {
		err := Set(root, "channels/0", c, []byte(`{"volume":1}`))
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSubtreeSetAtomic(t *testing.T) {
	var cfg struct {
		A int
		B int
	}
	cfg.A, cfg.B = 1, 2
	root := NewGroup(
		Named("a", NewLeaf(&cfg.A)),
		Named("b", NewLeaf(&cfg.B)),
	).WithSubtree()
	c := codec.JSON{}

	// One assignable field, one type error. Whichever order the fields
	// apply in, the snapshot must roll both back.
	err := root.Set(c, []byte(`{"a":10,"b":"oops"}`))
	assert.ErrorIs(t, err, ErrDeserialize)
	assert.Equal(t, 1, cfg.A)
	assert.Equal(t, 2, cfg.B)
}

func TestSubtreeWithChildlessGroup(t *testing.T) {
	var gain float32
	root := NewGroup(
		Named("gain", NewLeaf(&gain)),
		Named("aux", NewGroup()),
	).WithSubtree()
	c := codec.JSON{}

	data, err := root.Get(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"gain":0,"aux":{}}`, string(data))

	require.NoError(t, root.Set(c, []byte(`{"gain":1.5,"aux":{}}`)))
	assert.Equal(t, float32(1.5), gain)
}

func TestSubtreeWithCBOR(t *testing.T) {
	s := &settings{}
	root := buildTree(s, true)
	c := codec.CBOR{}

	nested, err := c.Marshal(map[string]bool{"enabled": true})
	require.NoError(t, err)
	require.NoError(t, Set(root, "channels/0", c, nested))
	assert.True(t, s.Channels[0].Enabled)
}
