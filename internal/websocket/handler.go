package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/roomcast/internal/hub"
	"github.com/nfrund/roomcast/internal/middleware"
)

// AnonymousName is the membership identity recorded for sessions without an
// authenticated user. Such sessions receive broadcasts but cannot send.
const AnonymousName = "anonymous"

// Handler upgrades chat connections and drives the session lifecycle.
type Handler struct {
	hub *hub.Hub
}

// NewHandler creates a websocket handler bound to the given hub.
func NewHandler(h *hub.Hub) *Handler {
	return &Handler{hub: h}
}

// ServeWS handles a connection request for /ws/:room.
//
// The session lifecycle follows Connecting -> Joined -> Closed: resolve the
// room, accept the connection, join registry and hub as one unit, then
// acknowledge. Any failure before the join leaves no state behind and the
// connection is simply not accepted.
func (h *Handler) ServeWS(c echo.Context) error {
	roomName := c.Param("room")
	if roomName == "" {
		return c.String(http.StatusBadRequest, "room name is required")
	}

	identity := middleware.IdentityFromEcho(c)
	name := identity.Username
	if !identity.Authenticated {
		name = AnonymousName
	}

	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		// Origin checking is delegated to the deployment's proxy layer.
		InsecureSkipVerify: true,
	})
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "room", roomName, "error", err)
		return c.String(http.StatusInternalServerError, "Failed to upgrade to WebSocket")
	}

	client := newClient(conn, h.hub, nil, identity)
	sub := hub.NewSubscriber(roomName, name, client.Close)
	client.subscriber = sub

	if err := h.hub.Join(sub); err != nil {
		slog.Error("Room resolution failed", "room", roomName, "error", err)
		conn.Close(websocket.StatusInternalError, "room unavailable")
		return nil
	}

	// Acknowledge only once the join has completed: a client holding the ack
	// is already a visible member. Broadcasts delivered in the meantime sit
	// in the subscriber buffer until the pumps start, so the ack is still the
	// first frame on the wire.
	ack, _ := json.Marshal(hub.Event{
		Type:    hub.EventConnectionEstablished,
		Message: "You are now connected",
	})
	if err := conn.Write(c.Request().Context(), websocket.MessageText, ack); err != nil {
		slog.Warn("Connection lost before acknowledgment", "room", roomName, "error", err)
		client.Close()
		return nil
	}

	slog.Info("Session joined", "room", roomName, "user", name, "session_id", sub.ID, "authenticated", identity.Authenticated)

	go client.writePump()
	go client.readPump()

	return nil
}
