package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nfrund/roomcast/internal/domain"
	"github.com/surrealdb/surrealdb.go"
)

// MessageStore persists chat messages in SurrealDB. It implements
// domain.MessageStore and is the durable backend for the broadcast core.
type MessageStore struct {
	db      *surrealdb.DB
	timeout time.Duration
}

// NewMessageStore creates a new MessageStore instance.
func NewMessageStore(db *surrealdb.DB, queryTimeout time.Duration) *MessageStore {
	return &MessageStore{
		db:      db,
		timeout: queryTimeout,
	}
}

// Append saves a new message and returns it with its server-assigned
// timestamp. Persistence failures are reported as domain.ErrStoreUnavailable
// so callers can abort fan-out before any subscriber sees the message.
func (s *MessageStore) Append(ctx context.Context, room, author, content string) (*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := "CREATE message SET room = $room, author = $author, content = $content, timestamp = time::now() RETURN AFTER"
	params := map[string]any{
		"room":    room,
		"author":  author,
		"content": content,
	}

	created, err := QueryOne[domain.Message](ctx, s.db, query, params)
	if err != nil {
		return nil, storeErr("failed to create message", err)
	}
	if created == nil {
		return nil, fmt.Errorf("message was not created: %w", domain.ErrStoreUnavailable)
	}

	return created, nil
}

// ListAll retrieves every stored message in insertion order. This serves the
// reporting read path only.
func (s *MessageStore) ListAll(ctx context.Context) ([]*domain.Message, error) {
	return s.list(ctx, "SELECT * FROM message ORDER BY timestamp ASC", nil)
}

// ListRoom retrieves the stored messages for one room in insertion order.
func (s *MessageStore) ListRoom(ctx context.Context, room string) ([]*domain.Message, error) {
	query := "SELECT * FROM message WHERE room = $room ORDER BY timestamp ASC"
	return s.list(ctx, query, map[string]any{"room": room})
}

func (s *MessageStore) list(ctx context.Context, query string, params map[string]any) ([]*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := Query[domain.Message](ctx, s.db, query, params)
	if err != nil {
		return nil, storeErr("failed to fetch messages", err)
	}

	messages := make([]*domain.Message, len(result))
	for i := range result {
		messages[i] = &result[i]
	}
	return messages, nil
}

// storeErr wraps a driver error, tagging likely connection-level failures
// with domain.ErrStoreUnavailable so they stay checkable with errors.Is.
func storeErr(msg string, err error) error {
	if isConnectionError(err) {
		return fmt.Errorf("%s: %w: %v", msg, domain.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// isConnectionError checks if an error is likely due to a lost or failed
// connection, as opposed to an application-level query error.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	// Not exhaustive, but covers the common transport failures.
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "broken pipe") ||
		strings.Contains(errMsg, "connection closed") ||
		strings.Contains(errMsg, "unexpected eof")
}
