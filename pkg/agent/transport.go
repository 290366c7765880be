package agent

// Message is one inbound publication delivered by the transport, in
// arrival order.
type Message struct {
	Topic   string
	Payload []byte
}

// Transport is the broker connection collaborator. Calls are
// non-blocking requests: Connect starts a connection attempt whose
// outcome is observed through IsConnected on a later tick, and the
// transport owns retry backoff between attempts. Inbound publications
// queue until drained through Next.
type Transport interface {
	Connect() error
	IsConnected() bool
	Subscribe(filter string) error
	Publish(topic string, payload []byte, retain bool) error

	// Next pops the oldest queued inbound message; ok is false when the
	// queue is empty.
	Next() (msg Message, ok bool)

	Disconnect()
}
