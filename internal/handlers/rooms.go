package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/roomcast/internal/registry"
)

// RoomHandler serves room listings and presence counts.
type RoomHandler struct {
	registry *registry.Registry
}

// NewRoomHandler creates a new room handler.
func NewRoomHandler(reg *registry.Registry) *RoomHandler {
	return &RoomHandler{registry: reg}
}

// ListRooms returns every known room with its current member count.
func (h *RoomHandler) ListRooms(c echo.Context) error {
	rooms := h.registry.Rooms()

	out := make([]map[string]interface{}, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, map[string]interface{}{
			"name":   room.Name(),
			"online": room.MemberCount(),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"rooms": out,
		"count": len(out),
	})
}

// GetPresence returns the member count for one room. Rooms are created
// lazily on connect, so an unknown name simply reports zero.
func (h *RoomHandler) GetPresence(c echo.Context) error {
	name := c.Param("name")
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "room name required",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"room":   name,
		"online": h.registry.MemberCount(name),
	})
}
