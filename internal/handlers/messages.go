package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/roomcast/internal/domain"
	"github.com/nfrund/roomcast/internal/middleware"
)

// MessageHandler serves the read-only message history. This is the reporting
// path; it never touches the live broadcast path.
type MessageHandler struct {
	store domain.MessageStore
}

// NewMessageHandler creates a new message history handler.
func NewMessageHandler(store domain.MessageStore) *MessageHandler {
	return &MessageHandler{store: store}
}

// ListMessages returns stored messages in insertion order. An optional
// ?room= query parameter narrows the history to a single room.
func (h *MessageHandler) ListMessages(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)

	var (
		messages []*domain.Message
		err      error
	)
	if room := c.QueryParam("room"); room != "" {
		messages, err = h.store.ListRoom(ctx, room)
	} else {
		messages, err = h.store.ListAll(ctx)
	}
	if err != nil {
		logger.Error("Failed to list messages", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"error": "message history unavailable",
		})
	}

	if messages == nil {
		messages = []*domain.Message{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"messages": messages,
		"count":    len(messages),
	})
}
