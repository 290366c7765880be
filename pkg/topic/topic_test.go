package topic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMapper(t *testing.T) {
	t.Run("rejects empty prefix", func(t *testing.T) {
		_, err := NewMapper("")
		assert.Error(t, err)
	})

	t.Run("rejects wildcards", func(t *testing.T) {
		_, err := NewMapper("dt/+/device")
		assert.Error(t, err)
	})

	t.Run("strips trailing slash", func(t *testing.T) {
		m, err := NewMapper("dt/example/device/")
		require.NoError(t, err)
		assert.Equal(t, "dt/example/device", m.Prefix())
	})
}

func TestTopicPathRoundTrip(t *testing.T) {
	m, err := NewMapper("dt/example/device")
	require.NoError(t, err)

	testCases := []struct {
		path  string
		topic string
	}{
		{path: "gain", topic: "dt/example/device/settings/gain"},
		{path: "channels/1/enabled", topic: "dt/example/device/settings/channels/1/enabled"},
		{path: "", topic: "dt/example/device/settings"},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.topic, m.Topic(tc.path))

			path, isError, err := m.Path(tc.topic)
			require.NoError(t, err)
			assert.False(t, isError)
			assert.Equal(t, tc.path, path)
		})
	}
}

func TestPathUnrecognized(t *testing.T) {
	m, err := NewMapper("dt/example/device")
	require.NoError(t, err)

	for _, topic := range []string{
		"other/device/settings/gain",
		"dt/example/device/telemetry/adc",
		"dt/example/device/settingsfoo/gain",
		"dt/example/device",
	} {
		_, _, err := m.Path(topic)
		assert.ErrorIs(t, err, ErrUnrecognizedTopic, "topic %q", topic)
	}
}

func TestErrorSibling(t *testing.T) {
	m, err := NewMapper("dt/example/device")
	require.NoError(t, err)

	assert.Equal(t, "dt/example/device/settings/gain/error", m.ErrorTopic("gain"))

	path, isError, err := m.Path("dt/example/device/settings/gain/error")
	require.NoError(t, err)
	assert.True(t, isError)
	assert.Equal(t, "gain", path)
}

func TestFixedTopics(t *testing.T) {
	m, err := NewMapper("dt/example/device")
	require.NoError(t, err)

	assert.Equal(t, "dt/example/device/settings/#", m.Filter())
	assert.Equal(t, "dt/example/device/alive", m.Alive())
}

func TestRootRelativePathAccepted(t *testing.T) {
	m, err := NewMapper("dt/example/device")
	require.NoError(t, err)

	// Leading separators in paths collapse to the same topic.
	assert.Equal(t, m.Topic("gain"), m.Topic("/gain"))
}
