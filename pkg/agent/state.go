package agent

import "go.uber.org/zap"

// State is the synchronization phase of the agent. The machine cycles
// Disconnected → Connecting → Subscribing → Republishing → Idle and
// falls back to Disconnected on any connection loss, which forces a
// clean resync.
type State int

const (
	Disconnected State = iota
	Connecting
	Subscribing
	Republishing
	Idle
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Subscribing:
		return "subscribing"
	case Republishing:
		return "republishing"
	case Idle:
		return "idle"
	default:
		return "unknown"
	}
}

type event int

const (
	eventConnectRequested event = iota
	eventConnected
	eventSubscribed
	eventRepublished
	eventRepublishRequested
	eventLost
)

func (e event) String() string {
	switch e {
	case eventConnectRequested:
		return "connect_requested"
	case eventConnected:
		return "connected"
	case eventSubscribed:
		return "subscribed"
	case eventRepublished:
		return "republished"
	case eventRepublishRequested:
		return "republish_requested"
	case eventLost:
		return "lost"
	default:
		return "unknown"
	}
}

// transitions is the state × event table. An event absent from the
// current state's row is a protocol violation; apply resolves it by
// falling back to Disconnected rather than faulting the host.
var transitions = map[State]map[event]State{
	Disconnected: {
		eventConnectRequested: Connecting,
	},
	Connecting: {
		eventConnected: Subscribing,
		eventLost:      Disconnected,
	},
	Subscribing: {
		eventSubscribed: Republishing,
		eventLost:       Disconnected,
	},
	Republishing: {
		eventRepublished:        Idle,
		eventRepublishRequested: Republishing,
		eventLost:               Disconnected,
	},
	Idle: {
		eventRepublishRequested: Republishing,
		eventLost:               Disconnected,
	},
}

func (a *Agent) apply(ev event) {
	next, ok := transitions[a.state][ev]
	if !ok {
		a.logger.Error("invalid state transition, forcing resync",
			zap.Stringer("state", a.state),
			zap.Stringer("event", ev))
		next = Disconnected
	}
	if next != a.state {
		a.logger.Debug("state transition",
			zap.Stringer("from", a.state),
			zap.Stringer("to", next),
			zap.Stringer("event", ev))
	}
	a.state = next
}
