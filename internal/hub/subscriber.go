package hub

import (
	"github.com/google/uuid"
)

// sendBufferSize is the per-subscriber outbound buffer. A subscriber whose
// buffer is full cannot accept a delivery promptly and is treated as
// unreachable.
const sendBufferSize = 256

// Subscriber is the hub's non-owning delivery handle for one live session.
// The session itself (connection, pumps, lifecycle) is owned by the
// websocket layer; the hub only pushes encoded events into Send and, on a
// failed delivery, asks the owner to close via the evict callback.
type Subscriber struct {
	// ID uniquely identifies this session. A user with several connections
	// holds one Subscriber per connection.
	ID string

	// Identity is the username bound to the session, or empty for anonymous.
	Identity string

	// Room is the room this subscriber is joined to.
	Room string

	// Send is a buffered channel of outbound, already-encoded events. The
	// hub writes to it; the owning session drains it onto the wire.
	Send chan []byte

	evict func()
}

// NewSubscriber creates a delivery handle for a session in the given room.
// onEvict is invoked (at most once, asynchronously) when the hub decides the
// subscriber is unreachable; the owner must then run its normal close path.
func NewSubscriber(room, identity string, onEvict func()) *Subscriber {
	return &Subscriber{
		ID:       uuid.NewString(),
		Identity: identity,
		Room:     room,
		Send:     make(chan []byte, sendBufferSize),
		evict:    onEvict,
	}
}
