package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Start runs the HTTP server and blocks until shutdown completes.
func (s *Server) Start() {
	go func() {
		if err := s.E.Start(s.Cfg.GetBindAddr()); err != nil && err != http.ErrServerClosed {
			s.E.Logger.Fatalf("shutting down the server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down with a timeout.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.Shutdown(ctx)
}

// Shutdown stops the HTTP listener, the hub's room consumers, the pub/sub
// bridge, and the database connection, in that order.
func (s *Server) Shutdown(ctx context.Context) {
	if err := s.E.Shutdown(ctx); err != nil {
		s.E.Logger.Error(err)
	}
	s.Hub.Close()
	if err := s.PubSub.Close(); err != nil {
		s.E.Logger.Error(err)
	}
	if s.db != nil {
		s.db.Close(ctx)
	}
}
