// Package topic maps between MQTT topic names and settings paths. Every
// settings path sits behind a `<prefix>/settings/` topic prefix; the
// mapping is deterministic and reversible.
package topic

import (
	"errors"
	"fmt"
	"strings"
)

const (
	settingsMarker = "settings"
	errorMarker    = "error"
	aliveMarker    = "alive"
)

// ErrUnrecognizedTopic indicates a topic outside the mapper's prefix.
var ErrUnrecognizedTopic = errors.New("topic outside settings prefix")

// Mapper converts between external topic names and internal paths for
// one device prefix, e.g. prefix "dt/sinara/stabilizer" and path
// "adc/0/gain" map to "dt/sinara/stabilizer/settings/adc/0/gain".
//
// The segment "error" is reserved: each path's failure reports are
// published on its "error" sibling, so a setting named "error" could
// never be addressed. Named rejects the identifier at tree build time.
type Mapper struct {
	prefix         string
	settingsPrefix string
}

// NewMapper builds a mapper for the given device prefix. The prefix
// must be non-empty; a trailing slash is tolerated and stripped.
func NewMapper(prefix string) (*Mapper, error) {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return nil, errors.New("topic: empty device prefix")
	}
	if strings.ContainsAny(prefix, "#+") {
		return nil, fmt.Errorf("topic: prefix %q contains wildcard characters", prefix)
	}
	return &Mapper{
		prefix:         prefix,
		settingsPrefix: prefix + "/" + settingsMarker,
	}, nil
}

// Prefix returns the device prefix the mapper was built with.
func (m *Mapper) Prefix() string { return m.prefix }

// Filter returns the subscription filter covering every settings topic
// under the prefix.
func (m *Mapper) Filter() string { return m.settingsPrefix + "/#" }

// Alive returns the connection-status topic. The device publishes a
// retained "1" there on connect and arranges a "0" last will.
func (m *Mapper) Alive() string { return m.prefix + "/" + aliveMarker }

// Topic returns the settings topic for a path. Total: every valid path
// has a representable topic.
func (m *Mapper) Topic(path string) string {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return m.settingsPrefix
	}
	return m.settingsPrefix + "/" + path
}

// ErrorTopic returns the reserved error sibling for a path, where
// structured failure reports for that path are published.
func (m *Mapper) ErrorTopic(path string) string {
	return m.Topic(path) + "/" + errorMarker
}

// Path extracts the settings path from a topic. Topics outside the
// settings prefix fail with ErrUnrecognizedTopic. Topics on the error
// sibling are recognized but never commands, so the device does not
// interpret its own failure reports.
func (m *Mapper) Path(t string) (path string, isError bool, err error) {
	rest, ok := strings.CutPrefix(t, m.settingsPrefix)
	if !ok {
		return "", false, fmt.Errorf("%w: %q", ErrUnrecognizedTopic, t)
	}
	if rest != "" && !strings.HasPrefix(rest, "/") {
		// e.g. "<prefix>/settingsfoo" shares the string prefix only.
		return "", false, fmt.Errorf("%w: %q", ErrUnrecognizedTopic, t)
	}
	path = strings.TrimPrefix(rest, "/")
	if suffix, ok := strings.CutSuffix(path, "/"+errorMarker); ok {
		return suffix, true, nil
	}
	if path == errorMarker {
		return "", true, nil
	}
	return path, false, nil
}
