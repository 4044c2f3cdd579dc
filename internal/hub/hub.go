// Package hub routes chat messages from one session to every session joined
// to the same room. Durability comes first: a message is appended to the
// store before any subscriber sees it. Fan-out runs on one consumer per
// room, so every subscriber of a room observes the same delivery order.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nfrund/roomcast/internal/domain"
	"github.com/nfrund/roomcast/internal/pubsub"
	"github.com/nfrund/roomcast/internal/registry"
)

// Event is the envelope written to subscribers. The same shape carries the
// chat broadcast, the post-join acknowledgment, and author-only errors.
type Event struct {
	Type      string     `json:"type"`
	User      string     `json:"user,omitempty"`
	Message   string     `json:"message"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Event type tags on the wire.
const (
	EventChatMessage           = "chat_message"
	EventConnectionEstablished = "connection_established"
	EventError                 = "error"
)

// Topic returns the pub/sub topic carrying broadcasts for a room.
func Topic(room string) string {
	return "chat.room." + room
}

// roomTable is the delivery routing table for a single room. Its lock also
// covers the registry membership mutation for that room, which is what keeps
// subscriptions and memberships in lockstep.
type roomTable struct {
	room *registry.Room

	mu          sync.Mutex
	subscribers map[*Subscriber]bool
}

// Hub owns the per-room routing tables and the publish path.
type Hub struct {
	registry  *registry.Registry
	store     domain.MessageStore
	publisher pubsub.Publisher
	consumer  pubsub.Subscriber

	mu    sync.RWMutex
	rooms map[string]*roomTable

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Hub over the given registry, store, and pub/sub transport.
func New(reg *registry.Registry, store domain.MessageStore, pub pubsub.Publisher, sub pubsub.Subscriber) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		registry:  reg,
		store:     store,
		publisher: pub,
		consumer:  sub,
		rooms:     make(map[string]*roomTable),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Join registers a subscriber for delivery and records its membership in the
// room registry as one atomic step. The room is created lazily on first
// reference. A failure to wire up the room's fan-out consumer leaves no
// state behind and surfaces as domain.ErrRoomResolution.
func (h *Hub) Join(sub *Subscriber) error {
	table, err := h.ensureRoom(sub.Room)
	if err != nil {
		return err
	}

	table.mu.Lock()
	table.subscribers[sub] = true
	table.room.Join(sub.Identity)
	total := len(table.subscribers)
	table.mu.Unlock()

	slog.Info("Subscriber joined room", "room", sub.Room, "user", sub.Identity, "session_id", sub.ID, "subscribers", total)
	return nil
}

// Leave removes a subscriber's delivery registration and its registry
// membership, again as one atomic step. It is idempotent: leaving twice, or
// after an eviction, is a no-op.
func (h *Hub) Leave(sub *Subscriber) {
	h.mu.RLock()
	table := h.rooms[sub.Room]
	h.mu.RUnlock()
	if table == nil {
		return
	}

	table.mu.Lock()
	removed := false
	if table.subscribers[sub] {
		delete(table.subscribers, sub)
		table.room.Leave(sub.Identity)
		removed = true
	}
	total := len(table.subscribers)
	table.mu.Unlock()

	if removed {
		slog.Info("Subscriber left room", "room", sub.Room, "user", sub.Identity, "session_id", sub.ID, "subscribers", total)
	}
}

// Publish persists the message, then hands it to the room's fan-out
// consumer. When Append fails no subscriber receives anything; the error is
// the caller's (the author's session) to surface. Publishes to different
// rooms are independent.
func (h *Hub) Publish(ctx context.Context, room, identity, content string) (*domain.Message, error) {
	msg, err := h.store.Append(ctx, room, identity, content)
	if err != nil {
		return nil, fmt.Errorf("publish to %q aborted: %w", room, err)
	}

	ts := msg.Timestamp
	payload, err := json.Marshal(Event{
		Type:      EventChatMessage,
		User:      identity,
		Message:   content,
		Timestamp: &ts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode broadcast event: %w", err)
	}

	if err := h.publisher.Publish(ctx, pubsub.Message{
		Topic:    Topic(room),
		Payload:  payload,
		Metadata: map[string]string{"user": identity},
	}); err != nil {
		return nil, fmt.Errorf("failed to publish to %q: %w", room, err)
	}

	slog.Debug("Message published", "room", room, "user", identity)
	return msg, nil
}

// Close stops all room consumers. Subscribers are not closed; their owning
// sessions shut down through the server's connection teardown.
func (h *Hub) Close() error {
	h.cancel()
	return nil
}

// ensureRoom returns the routing table for a room, creating the table and
// its fan-out subscription on first reference.
func (h *Hub) ensureRoom(name string) (*roomTable, error) {
	h.mu.RLock()
	table, ok := h.rooms[name]
	h.mu.RUnlock()
	if ok {
		return table, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if table, ok := h.rooms[name]; ok {
		return table, nil
	}

	table = &roomTable{
		room:        h.registry.GetOrCreate(name),
		subscribers: make(map[*Subscriber]bool),
	}

	// One consumer per room topic: the bridge handles a topic's messages
	// sequentially, which serializes fan-out per room.
	err := h.consumer.Subscribe(h.ctx, Topic(name), func(ctx context.Context, msg pubsub.Message) error {
		h.fanOut(table, msg.Payload)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to room topic %q: %w: %v", name, domain.ErrRoomResolution, err)
	}

	h.rooms[name] = table
	return table, nil
}

// fanOut delivers one encoded event to every subscriber of a room,
// including the author's own session. A subscriber that cannot accept the
// delivery promptly is unreachable: it is unregistered here (membership
// included, under the same lock) and its owner is told to close
// asynchronously. One dead recipient never blocks the rest.
func (h *Hub) fanOut(table *roomTable, payload []byte) {
	table.mu.Lock()
	defer table.mu.Unlock()

	for sub := range table.subscribers {
		select {
		case sub.Send <- payload:
		default:
			delete(table.subscribers, sub)
			table.room.Leave(sub.Identity)
			slog.Warn("Unregistering unreachable subscriber", "room", sub.Room, "user", sub.Identity, "session_id", sub.ID)
			if sub.evict != nil {
				go sub.evict()
			}
		}
	}
}
