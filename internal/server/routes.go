package server

import (
	"github.com/nfrund/roomcast/internal/middleware"
)

// RegisterRoutes declares all HTTP routes for the service.
func (s *Server) RegisterRoutes() {
	// Live chat connection; room name comes from the URL. Connection
	// attempts are rate limited per client IP.
	s.E.GET("/ws/:room", s.wsHandler.ServeWS, middleware.RateLimiter(10))

	// Read-only reporting and presence API.
	api := s.E.Group("/api/v1", middleware.RateLimiter(10))
	api.GET("/messages", s.messageHandler.ListMessages)
	api.GET("/rooms", s.roomHandler.ListRooms)
	api.GET("/rooms/:name/presence", s.roomHandler.GetPresence)
}
