package pubsub

import (
	"context"
)

// Message is the structure passed between components on the bus.
// It is intentionally simple to act as a wrapper for raw data.
type Message struct {
	// Topic identifies the channel the message belongs to (e.g., "chat.room.general").
	Topic string
	// Payload contains the raw message data (encoded broadcast envelope).
	Payload []byte
	// Metadata can contain arbitrary key-value pairs for context (e.g., author).
	Metadata map[string]string
}

// Handler defines the function signature for processing a received message.
type Handler func(ctx context.Context, msg Message) error

// Publisher defines the contract for sending messages to the Pub/Sub system.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Subscriber defines the contract for receiving messages from the Pub/Sub system.
// The in-process gochannel implementation is enough for a single-process
// deployment; a broker-backed implementation can be swapped in behind the
// same pair of interfaces for multi-process scaling.
type Subscriber interface {
	// Subscribe starts listening to the given topic, processing messages with
	// the handler. Messages on one topic are handled sequentially, in
	// publication order.
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}
