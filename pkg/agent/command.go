package agent

import (
	"bytes"

	"go.uber.org/zap"

	"github.com/edgeflare/treeconf/pkg/metrics"
	"github.com/edgeflare/treeconf/pkg/tree"
)

// Report is the structured payload published on a path's error topic
// when a command against that path fails.
type Report struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// drainCommands processes every queued inbound message in arrival
// order. Only the Idle state drains; elsewhere messages wait in the
// transport's bounded queue.
func (a *Agent) drainCommands() {
	for {
		msg, ok := a.transport.Next()
		if !ok {
			return
		}
		a.handleCommand(msg)
	}
}

// handleCommand routes one inbound message. An empty payload is a get,
// anything else a set. Failures are local to the command: reported on
// the error topic, never a session fault.
func (a *Agent) handleCommand(msg Message) {
	path, isError, err := a.mapper.Path(msg.Topic)
	if err != nil {
		// Not on a recognized control topic.
		a.logger.Debug("ignoring foreign topic", zap.String("topic", msg.Topic))
		return
	}
	if isError {
		// Our own failure reports echo back through the subscription.
		return
	}

	if len(msg.Payload) == 0 {
		a.handleGet(path)
		return
	}
	a.handleSet(path, msg.Payload)
}

func (a *Agent) handleGet(path string) {
	metrics.Commands.WithLabelValues("get").Inc()

	data, err := tree.Get(a.root, path, a.codec)
	if err != nil {
		a.reportError(path, err)
		return
	}
	if err := a.transport.Publish(a.mapper.Topic(path), data, true); err != nil {
		a.reset(err)
	}
}

func (a *Agent) handleSet(path string, payload []byte) {
	node, err := tree.Resolve(a.root, path)
	if err != nil {
		metrics.Commands.WithLabelValues("set").Inc()
		a.reportError(path, err)
		return
	}

	// Retained values we publish ourselves arrive back on the same
	// subscription. A payload matching the current value confirms
	// nothing new, so it is dropped without republishing; this also
	// breaks the echo loop.
	if current, err := node.Get(a.codec); err == nil && bytes.Equal(current, payload) {
		return
	}
	metrics.Commands.WithLabelValues("set").Inc()

	if err := node.Set(a.codec, payload); err != nil {
		a.reportError(path, err)
		return
	}
	a.logger.Info("setting updated", zap.String("path", path))
	if a.onUpdate != nil {
		a.onUpdate(path)
	}

	// Confirm with the canonical serialization of the new value so
	// late joiners observe it.
	data, err := node.Get(a.codec)
	if err != nil {
		a.reportError(path, err)
		return
	}
	if err := a.transport.Publish(a.mapper.Topic(path), data, true); err != nil {
		a.reset(err)
	}
}

func (a *Agent) reportError(path string, cause error) {
	kind := tree.Kind(cause)
	metrics.CommandErrors.WithLabelValues(kind).Inc()
	a.logger.Warn("command failed",
		zap.String("path", path),
		zap.String("kind", kind),
		zap.Error(cause))

	payload, err := a.codec.Marshal(Report{
		Path:    path,
		Kind:    kind,
		Message: cause.Error(),
	})
	if err != nil {
		a.logger.Error("failed to encode error report", zap.Error(err))
		return
	}
	if err := a.transport.Publish(a.mapper.ErrorTopic(path), payload, false); err != nil {
		a.reset(err)
	}
}
