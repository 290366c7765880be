// Package agent drives synchronization of a settings tree with an MQTT
// broker: it subscribes to the device's settings topics, republishes
// every leaf's current value after (re)connecting so late joiners
// converge, and serves per-path get/set commands from remote operators.
//
// The agent is single-threaded and cooperative. The host calls Tick
// repeatedly; no call blocks on the network beyond the transport's own
// bounded waits, and republishing proceeds one leaf per tick so a tick
// never monopolizes the device's execution context.
package agent

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/edgeflare/treeconf/pkg/codec"
	"github.com/edgeflare/treeconf/pkg/metrics"
	"github.com/edgeflare/treeconf/pkg/topic"
	"github.com/edgeflare/treeconf/pkg/tree"
)

// DefaultRepublishDelay is the settle time between subscribing and the
// start of a republish pass, leaving room for retained commands to be
// delivered first.
const DefaultRepublishDelay = 2 * time.Second

// Options configures an Agent. Transport, Root and Mapper are required.
type Options struct {
	Transport Transport
	Root      tree.Node
	Mapper    *topic.Mapper

	// Codec is the leaf wire format; JSON when nil.
	Codec codec.Codec

	Logger *zap.Logger

	// RepublishDelay overrides DefaultRepublishDelay. Negative disables
	// the settle wait entirely.
	RepublishDelay time.Duration

	// OnUpdate, when set, is called after every successful remote set
	// with the path that changed.
	OnUpdate func(path string)
}

// Agent owns the broker-session lifecycle for one settings tree. It is
// the tree's single writer; hosts needing concurrent reads must
// synchronize externally around the whole tree.
type Agent struct {
	transport Transport
	root      tree.Node
	mapper    *topic.Mapper
	codec     codec.Codec
	logger    *zap.Logger
	onUpdate  func(string)

	republishDelay time.Duration
	now            func() time.Time

	state       State
	walker      *tree.Walker
	settleUntil time.Time
	lastErr     error
}

// New validates opts and returns an agent in the Disconnected state.
func New(opts Options) (*Agent, error) {
	if opts.Transport == nil {
		return nil, errors.New("agent: nil transport")
	}
	if opts.Root == nil {
		return nil, errors.New("agent: nil settings root")
	}
	if opts.Mapper == nil {
		return nil, errors.New("agent: nil topic mapper")
	}

	c := opts.Codec
	if c == nil {
		c = codec.JSON{}
	}

	logger := opts.Logger
	if logger == nil {
		var err error
		logger, err = zap.NewProduction()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create default logger: %v\n", err)
			logger = zap.NewNop()
		}
	}

	delay := opts.RepublishDelay
	switch {
	case delay == 0:
		delay = DefaultRepublishDelay
	case delay < 0:
		delay = 0
	}

	return &Agent{
		transport:      opts.Transport,
		root:           opts.Root,
		mapper:         opts.Mapper,
		codec:          c,
		logger:         logger,
		onUpdate:       opts.OnUpdate,
		republishDelay: delay,
		now:            time.Now,
		state:          Disconnected,
		walker:         tree.NewWalker(opts.Root),
	}, nil
}

// State returns the current synchronization phase.
func (a *Agent) State() State { return a.state }

// Err returns the last error that forced a resync, if any.
func (a *Agent) Err() error { return a.lastErr }

// ForceRepublish restarts a full republish pass. Intended for hosts
// whose handling of one setting mutates another, so observers see the
// side effect. No-op unless the session is established.
func (a *Agent) ForceRepublish() {
	if a.state != Idle && a.state != Republishing {
		return
	}
	a.walker.Reset()
	a.settleUntil = time.Time{}
	a.apply(eventRepublishRequested)
}

// Tick advances the state machine one step. The host calls it
// repeatedly; each call does a bounded amount of work.
func (a *Agent) Tick() {
	// Connecting legitimately runs without a connection; every later
	// state losing one is a reset.
	if a.state != Disconnected && a.state != Connecting && !a.transport.IsConnected() {
		a.reset(errors.New("connection lost"))
		return
	}

	switch a.state {
	case Disconnected:
		if err := a.transport.Connect(); err != nil {
			// Transient; the transport backs off between attempts.
			a.lastErr = err
			a.logger.Warn("connect attempt failed", zap.Error(err))
			return
		}
		a.apply(eventConnectRequested)

	case Connecting:
		if !a.transport.IsConnected() {
			// Re-arm the transport's backoff-paced attempt; a no-op
			// while one is already in flight.
			if err := a.transport.Connect(); err != nil {
				a.reset(err)
			}
			return
		}
		// Announce liveness before subscribing so operators can gate
		// commands on the retained alive flag.
		if err := a.transport.Publish(a.mapper.Alive(), []byte("1"), true); err != nil {
			a.reset(err)
			return
		}
		a.apply(eventConnected)

	case Subscribing:
		if err := a.transport.Subscribe(a.mapper.Filter()); err != nil {
			a.reset(err)
			return
		}
		a.walker.Reset()
		a.settleUntil = a.now().Add(a.republishDelay)
		a.apply(eventSubscribed)

	case Republishing:
		if a.now().Before(a.settleUntil) {
			return
		}
		a.republishNext()

	case Idle:
		a.drainCommands()
	}
}

// republishNext publishes the current value of one leaf per tick.
// Exhausting the cursor completes the pass; a disconnect discards
// progress and the pass restarts from the beginning on reconnect,
// which is harmless since values are retained and idempotent.
func (a *Agent) republishNext() {
	path, ok, err := a.walker.Next()
	if err != nil {
		// Malformed bookkeeping; force a clean resync.
		a.logger.Error("republish cursor failed", zap.Error(err))
		a.reset(err)
		return
	}
	if !ok {
		a.logger.Info("republish complete")
		a.apply(eventRepublished)
		return
	}

	data, err := tree.Get(a.root, path, a.codec)
	if err != nil {
		// The cursor only yields enumerable leaves, so this is a codec
		// failure local to one value. Skip it; the rest still publish.
		a.logger.Error("republish serialize failed",
			zap.String("path", path), zap.Error(err))
		return
	}

	if err := a.transport.Publish(a.mapper.Topic(path), data, true); err != nil {
		a.reset(err)
		return
	}
	metrics.RepublishedLeaves.Inc()
}

func (a *Agent) reset(err error) {
	a.lastErr = err
	a.logger.Warn("session reset", zap.Error(err), zap.Stringer("state", a.state))
	a.walker.Reset()
	a.settleUntil = time.Time{}
	if a.state != Disconnected {
		metrics.Resyncs.Inc()
		a.apply(eventLost)
	}
}
