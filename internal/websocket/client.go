package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/coder/websocket"
	"github.com/nfrund/roomcast/internal/domain"
	"github.com/nfrund/roomcast/internal/hub"
)

// Client is the middleman between one WebSocket connection and the hub: a
// session in the Joined state. It owns the connection and its lifecycle; the
// hub only holds the subscriber handle for delivery.
type Client struct {
	conn       *websocket.Conn
	hub        *hub.Hub
	subscriber *hub.Subscriber
	identity   domain.Identity

	done      chan struct{}
	closeOnce sync.Once
}

// newClient wraps an accepted connection that has already joined its room.
func newClient(conn *websocket.Conn, h *hub.Hub, sub *hub.Subscriber, identity domain.Identity) *Client {
	return &Client{
		conn:       conn,
		hub:        h,
		subscriber: sub,
		identity:   identity,
		done:       make(chan struct{}),
	}
}

// Close runs the Joined -> Closed transition: unregister from the hub (which
// also clears the registry membership) and tear down the connection. Cleanup
// is unconditional; a peer that is already gone never prevents it. Safe to
// call from any goroutine, any number of times.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.hub.Leave(c.subscriber)
		close(c.done)
		c.conn.Close(websocket.StatusNormalClosure, "")
		slog.Info("Session closed", "room", c.subscriber.Room, "user", c.subscriber.Identity, "session_id", c.subscriber.ID)
	})
}

// readPump pumps inbound frames from the WebSocket to the hub.
//
// The application runs one readPump per connection; all reads happen on this
// goroutine. It returns, closing the session, when the connection dies.
func (c *Client) readPump() {
	defer c.Close()

	for {
		_, msgBytes, err := c.conn.Read(context.Background())
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				slog.Debug("WebSocket closed by peer", "session_id", c.subscriber.ID, "close_code", status)
			} else {
				slog.Debug("readPump terminated", "session_id", c.subscriber.ID, "error", err)
			}
			return
		}

		c.receive(msgBytes)
	}
}

// receive handles one inbound frame. Malformed payloads and sends from
// unauthenticated sessions are dropped silently; the connection stays open
// either way.
func (c *Client) receive(raw []byte) {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		slog.Debug("Dropping malformed payload", "session_id", c.subscriber.ID, "error", err)
		return
	}
	if envelope.Message == "" || len(envelope.Message) > domain.MaxContentLength {
		slog.Debug("Dropping payload with invalid content length", "session_id", c.subscriber.ID, "length", len(envelope.Message))
		return
	}

	if !c.identity.Authenticated {
		slog.Debug("Dropping message from unauthenticated session", "session_id", c.subscriber.ID)
		return
	}

	_, err := c.hub.Publish(context.Background(), c.subscriber.Room, c.subscriber.Identity, envelope.Message)
	if err != nil {
		slog.Error("Failed to publish message", "room", c.subscriber.Room, "user", c.subscriber.Identity, "error", err)
		if errors.Is(err, domain.ErrStoreUnavailable) {
			// Failed-send indication goes to the author only; nobody else
			// ever saw this message.
			c.notifyError("message could not be saved")
		}
		return
	}
}

// notifyError enqueues an author-only error envelope. Best effort: a full
// buffer means the session is on its way out anyway.
func (c *Client) notifyError(msg string) {
	payload, err := json.Marshal(hub.Event{Type: hub.EventError, Message: msg})
	if err != nil {
		return
	}
	select {
	case c.subscriber.Send <- payload:
	default:
	}
}

// writePump pumps events from the hub to the WebSocket connection.
//
// One writePump runs per connection; all writes happen on this goroutine. It
// exits when the session closes or a write fails.
func (c *Client) writePump() {
	defer c.Close()

	for {
		select {
		case <-c.done:
			return
		case payload := <-c.subscriber.Send:
			if err := c.conn.Write(context.Background(), websocket.MessageText, payload); err != nil {
				slog.Debug("writePump terminated", "session_id", c.subscriber.ID, "error", err)
				return
			}
		}
	}
}
