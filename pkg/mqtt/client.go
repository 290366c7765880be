package mqtt

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/edgeflare/treeconf/pkg/agent"
)

// Transport is the paho-backed broker connection handed to the agent.
// Connect attempts run on their own goroutine, paced by exponential
// backoff, so the agent's tick loop never blocks on the network;
// inbound publications queue on a bounded channel drained by Next.
type Transport struct {
	client     mqtt.Client
	logger     *zap.Logger
	inbound    chan agent.Message
	retry      *backoff.ExponentialBackOff
	connecting atomic.Bool
	qos        byte
	opTimeout  time.Duration
}

// init ensures that the logger is not nil
func (t *Transport) init() {
	if t.logger == nil {
		logger, err := zap.NewProduction()
		if err != nil {
			// If we can't create a production logger, fall back to a no-op logger
			fmt.Fprintf(os.Stderr, "Failed to create default logger: %v\n", err)
			t.logger = zap.NewNop()
		} else {
			t.logger = logger
		}
	}
}

// New creates a transport for the given broker configuration.
func New(cfg Config, logger ...*zap.Logger) (*Transport, error) {
	opts, err := convertToPahoOptions(&cfg)
	if err != nil {
		return nil, err
	}

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = cfg.initialBackoff()
	retry.MaxInterval = cfg.maxBackoff()
	retry.MaxElapsedTime = 0 // retry for as long as the device runs

	t := &Transport{
		client:    mqtt.NewClient(opts),
		inbound:   make(chan agent.Message, cfg.queueDepth()),
		retry:     retry,
		qos:       cfg.QoS,
		opTimeout: cfg.opTimeout(),
	}
	if len(logger) > 0 {
		t.logger = logger[0]
	}
	t.init()
	return t, nil
}

// Connect starts a connection attempt unless one is in flight or the
// client is already connected. Attempts are spaced by exponential
// backoff; the outcome is observed through IsConnected.
func (t *Transport) Connect() error {
	if t.client.IsConnected() {
		return nil
	}
	if !t.connecting.CompareAndSwap(false, true) {
		return nil
	}

	wait := t.retry.NextBackOff()
	go func() {
		defer t.connecting.Store(false)
		time.Sleep(wait)

		token := t.client.Connect()
		if !token.WaitTimeout(t.opTimeout) {
			t.logger.Warn("broker connect timed out")
			return
		}
		if err := token.Error(); err != nil {
			t.logger.Warn("broker connect failed", zap.Error(err))
			return
		}
		t.retry.Reset()
		t.logger.Info("connected to broker")
	}()
	return nil
}

// IsConnected reports whether the broker session is up.
func (t *Transport) IsConnected() bool {
	return t.client.IsConnected()
}

// Subscribe registers the settings filter. Messages are queued in
// arrival order; when the queue is full the oldest unprocessed traffic
// wins and the new message is dropped with a warning.
func (t *Transport) Subscribe(filter string) error {
	token := t.client.Subscribe(filter, t.qos, func(_ mqtt.Client, msg mqtt.Message) {
		m := agent.Message{Topic: msg.Topic(), Payload: msg.Payload()}
		select {
		case t.inbound <- m:
		default:
			t.logger.Warn("inbound queue full, dropping message", zap.String("topic", msg.Topic()))
		}
	})
	if !token.WaitTimeout(t.opTimeout) {
		return fmt.Errorf("subscribe to %s timed out", filter)
	}
	if err := token.Error(); err != nil {
		t.logger.Error("subscribe error", zap.Error(err), zap.String("filter", filter))
		return fmt.Errorf("subscribe error: %w", err)
	}
	t.logger.Debug("subscribed", zap.String("filter", filter))
	return nil
}

// Publish sends a message to the specified MQTT topic.
func (t *Transport) Publish(topic string, payload []byte, retain bool) error {
	token := t.client.Publish(topic, t.qos, retain, payload)
	if !token.WaitTimeout(t.opTimeout) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		t.logger.Error("publish error", zap.Error(err), zap.String("topic", topic))
		return err
	}
	t.logger.Debug("message published", zap.String("topic", topic))
	return nil
}

// Next pops the oldest queued inbound message.
func (t *Transport) Next() (agent.Message, bool) {
	select {
	case msg := <-t.inbound:
		return msg, true
	default:
		return agent.Message{}, false
	}
}

// Disconnect closes the connection to the MQTT broker.
func (t *Transport) Disconnect() {
	t.client.Disconnect(250)
	t.logger.Info("disconnected from MQTT broker")
}
