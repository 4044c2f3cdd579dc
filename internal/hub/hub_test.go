package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/roomcast/internal/database"
	"github.com/nfrund/roomcast/internal/domain"
	"github.com/nfrund/roomcast/internal/pubsub"
	"github.com/nfrund/roomcast/internal/registry"
)

func newTestHub(t *testing.T, store domain.MessageStore) (*Hub, *registry.Registry) {
	t.Helper()

	reg := registry.New()
	bridge := pubsub.NewWatermillBridge()
	h := New(reg, store, bridge, bridge)
	t.Cleanup(func() {
		h.Close()
		bridge.Close()
	})
	return h, reg
}

// receiveEvent waits for one event on a subscriber's channel.
func receiveEvent(t *testing.T, sub *Subscriber) Event {
	t.Helper()

	select {
	case payload := <-sub.Send:
		var ev Event
		require.NoError(t, json.Unmarshal(payload, &ev))
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, sub *Subscriber) {
	t.Helper()

	select {
	case payload := <-sub.Send:
		t.Fatalf("unexpected event delivered: %s", payload)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPublishFansOutToRoom(t *testing.T) {
	h, _ := newTestHub(t, database.NewMemoryMessageStore())

	alice := NewSubscriber("general", "alice", nil)
	bob := NewSubscriber("general", "bob", nil)
	carol := NewSubscriber("random", "carol", nil)
	require.NoError(t, h.Join(alice))
	require.NoError(t, h.Join(bob))
	require.NoError(t, h.Join(carol))

	msg, err := h.Publish(context.Background(), "general", "alice", "hi")
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "general", msg.Room)
	assert.False(t, msg.Timestamp.IsZero())

	// Everyone in the room receives the event, the author included.
	for _, sub := range []*Subscriber{alice, bob} {
		ev := receiveEvent(t, sub)
		assert.Equal(t, EventChatMessage, ev.Type)
		assert.Equal(t, "alice", ev.User)
		assert.Equal(t, "hi", ev.Message)
		require.NotNil(t, ev.Timestamp)
	}

	// A subscriber of a different room receives nothing.
	assertNoEvent(t, carol)
}

func TestPublishPreservesRoomOrder(t *testing.T) {
	h, _ := newTestHub(t, database.NewMemoryMessageStore())

	alice := NewSubscriber("general", "alice", nil)
	bob := NewSubscriber("general", "bob", nil)
	require.NoError(t, h.Join(alice))
	require.NoError(t, h.Join(bob))

	const n = 20
	for i := 0; i < n; i++ {
		_, err := h.Publish(context.Background(), "general", "alice", string(rune('a'+i)))
		require.NoError(t, err)
	}

	for _, sub := range []*Subscriber{alice, bob} {
		for i := 0; i < n; i++ {
			ev := receiveEvent(t, sub)
			assert.Equal(t, string(rune('a'+i)), ev.Message, "subscriber observed out-of-order delivery")
		}
	}
}

func TestPublishAbortsWhenStoreFails(t *testing.T) {
	h, _ := newTestHub(t, &failingStore{})

	alice := NewSubscriber("general", "alice", nil)
	require.NoError(t, h.Join(alice))

	_, err := h.Publish(context.Background(), "general", "alice", "hi")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	// Durability precedes delivery: nothing was fanned out.
	assertNoEvent(t, alice)
}

func TestFanOutIsolatesUnreachableSubscribers(t *testing.T) {
	h, reg := newTestHub(t, database.NewMemoryMessageStore())

	evicted := make(chan struct{})
	// A subscriber with a full, tiny buffer that can never be drained.
	stuck := &Subscriber{
		ID:       "stuck",
		Identity: "mallory",
		Room:     "general",
		Send:     make(chan []byte),
		evict:    func() { close(evicted) },
	}
	alice := NewSubscriber("general", "alice", nil)
	require.NoError(t, h.Join(stuck))
	require.NoError(t, h.Join(alice))
	require.Equal(t, 2, reg.MemberCount("general"))

	_, err := h.Publish(context.Background(), "general", "alice", "hi")
	require.NoError(t, err)

	// The healthy subscriber still receives the message.
	ev := receiveEvent(t, alice)
	assert.Equal(t, "hi", ev.Message)

	// The unreachable one is evicted and its membership cleared.
	select {
	case <-evicted:
	case <-time.After(2 * time.Second):
		t.Fatal("unreachable subscriber was not evicted")
	}
	assert.Equal(t, 1, reg.MemberCount("general"))
}

func TestJoinLeaveKeepRegistryInLockstep(t *testing.T) {
	h, reg := newTestHub(t, database.NewMemoryMessageStore())

	sub := NewSubscriber("general", "alice", nil)
	require.NoError(t, h.Join(sub))
	assert.Equal(t, 1, reg.MemberCount("general"))

	h.Leave(sub)
	assert.Equal(t, 0, reg.MemberCount("general"))

	// Leaving again is a no-op, not a double-decrement.
	h.Leave(sub)
	assert.Equal(t, 0, reg.MemberCount("general"))
}

func TestLeaveLogsOnlyActualDepartures(t *testing.T) {
	recorder := &logRecorder{}
	prev := slog.Default()
	slog.SetDefault(slog.New(recorder))
	t.Cleanup(func() { slog.SetDefault(prev) })

	h, _ := newTestHub(t, database.NewMemoryMessageStore())

	sub := NewSubscriber("general", "alice", nil)
	require.NoError(t, h.Join(sub))

	h.Leave(sub)
	h.Leave(sub)

	assert.Equal(t, 1, recorder.count("Subscriber left room"),
		"a repeated leave must not report a departure")
}

func TestLeaveUnknownRoomIsNoOp(t *testing.T) {
	h, _ := newTestHub(t, database.NewMemoryMessageStore())

	h.Leave(NewSubscriber("nowhere", "alice", nil))
}

// logRecorder is a slog.Handler that captures record messages.
type logRecorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *logRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *logRecorder) Handle(_ context.Context, rec slog.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, rec.Message)
	return nil
}

func (r *logRecorder) WithAttrs([]slog.Attr) slog.Handler { return r }

func (r *logRecorder) WithGroup(string) slog.Handler { return r }

func (r *logRecorder) count(msg string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, m := range r.msgs {
		if m == msg {
			n++
		}
	}
	return n
}

// failingStore simulates an unreachable persistence medium.
type failingStore struct{}

func (f *failingStore) Append(ctx context.Context, room, author, content string) (*domain.Message, error) {
	return nil, domain.ErrStoreUnavailable
}

func (f *failingStore) ListAll(ctx context.Context) ([]*domain.Message, error) {
	return nil, domain.ErrStoreUnavailable
}

func (f *failingStore) ListRoom(ctx context.Context, room string) ([]*domain.Message, error) {
	return nil, domain.ErrStoreUnavailable
}
