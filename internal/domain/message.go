package domain

import (
	"context"
	"time"
)

// MaxContentLength is the upper bound, in bytes, for the content of a single
// chat message. Payloads exceeding it are treated as malformed and dropped.
const MaxContentLength = 512

// Message represents one accepted chat message. Messages are immutable:
// once persisted they are never updated or deleted by this service.
type Message struct {
	ID        string    `json:"id,omitempty"`
	Room      string    `json:"room"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageStore defines the contract for durable message persistence.
// It lives in the domain because it's a requirement OF the domain, not
// of the database implementation.
type MessageStore interface {
	// Append persists a new message and returns it with its assigned
	// timestamp. It returns ErrStoreUnavailable (possibly wrapped) when the
	// persistence medium cannot be reached.
	Append(ctx context.Context, room, author, content string) (*Message, error)

	// ListAll returns every stored message in insertion order. It serves the
	// read-only reporting path, never the live broadcast path.
	ListAll(ctx context.Context) ([]*Message, error)

	// ListRoom returns the stored messages for a single room in insertion order.
	ListRoom(ctx context.Context, room string) ([]*Message, error)
}
