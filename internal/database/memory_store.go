package database

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nfrund/roomcast/internal/domain"
)

// MemoryMessageStore is an in-process domain.MessageStore used for
// development and tests. It keeps messages in insertion order and is safe
// for concurrent use.
type MemoryMessageStore struct {
	mu       sync.RWMutex
	messages []domain.Message
}

// NewMemoryMessageStore creates an empty in-memory store.
func NewMemoryMessageStore() *MemoryMessageStore {
	return &MemoryMessageStore{}
}

// Append records a new message with the current time as its timestamp.
func (s *MemoryMessageStore) Append(ctx context.Context, room, author, content string) (*domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	msg := domain.Message{
		ID:        "message:" + uuid.NewString(),
		Room:      room,
		Author:    author,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()

	return &msg, nil
}

// ListAll returns all stored messages in insertion order.
func (s *MemoryMessageStore) ListAll(ctx context.Context) ([]*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Message, 0, len(s.messages))
	for i := range s.messages {
		m := s.messages[i]
		out = append(out, &m)
	}
	return out, nil
}

// ListRoom returns the messages stored for one room in insertion order.
func (s *MemoryMessageStore) ListRoom(ctx context.Context, room string) ([]*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Message
	for i := range s.messages {
		if s.messages[i].Room != room {
			continue
		}
		m := s.messages[i]
		out = append(out, &m)
	}
	return out, nil
}
