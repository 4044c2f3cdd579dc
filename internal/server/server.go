package server

import (
	"context"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/roomcast/internal/config"
	"github.com/nfrund/roomcast/internal/database"
	"github.com/nfrund/roomcast/internal/domain"
	"github.com/nfrund/roomcast/internal/handlers"
	"github.com/nfrund/roomcast/internal/hub"
	"github.com/nfrund/roomcast/internal/identity"
	"github.com/nfrund/roomcast/internal/logging"
	"github.com/nfrund/roomcast/internal/middleware"
	"github.com/nfrund/roomcast/internal/pubsub"
	"github.com/nfrund/roomcast/internal/registry"
	"github.com/nfrund/roomcast/internal/websocket"
	"github.com/surrealdb/surrealdb.go"
)

// Server holds the dependencies for the chat service.
type Server struct {
	E        *echo.Echo
	Cfg      config.Provider
	Hub      *hub.Hub
	Registry *registry.Registry
	Store    domain.MessageStore
	PubSub   *pubsub.WatermillBridge

	db             *surrealdb.DB
	wsHandler      *websocket.Handler
	messageHandler *handlers.MessageHandler
	roomHandler    *handlers.RoomHandler
}

// New creates a fully wired Server from the environment: configuration,
// message store backend, identity provider, hub, and HTTP layer.
func New() *Server {
	// config.New loads the .env file, so it has to run before the logger
	// reads LOG_FORMAT.
	cfg := config.New()
	logging.New()

	var (
		store domain.MessageStore
		db    *surrealdb.DB
	)
	switch cfg.GetStoreDriver() {
	case "memory":
		slog.Warn("Using in-memory message store; messages will not survive a restart")
		store = database.NewMemoryMessageStore()
	default:
		conn, err := database.NewDB(context.Background(), cfg)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		db = conn
		store = database.NewMessageStore(conn, cfg.GetDBQueryTimeout())
	}

	s := NewWithDeps(cfg, store, identityProvider(cfg))
	s.db = db
	return s
}

// NewWithDeps wires a Server from explicit dependencies. Tests use it to
// inject an in-memory store and a fake identity provider.
func NewWithDeps(cfg config.Provider, store domain.MessageStore, provider domain.IdentityProvider) *Server {
	reg := registry.New()
	bridge := pubsub.NewWatermillBridge()
	h := hub.New(reg, store, bridge, bridge)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(middleware.Logger)
	e.Use(middleware.Identity(provider))

	return &Server{
		E:              e,
		Cfg:            cfg,
		Hub:            h,
		Registry:       reg,
		Store:          store,
		PubSub:         bridge,
		wsHandler:      websocket.NewHandler(h),
		messageHandler: handlers.NewMessageHandler(store),
		roomHandler:    handlers.NewRoomHandler(reg),
	}
}

// identityProvider picks the identity backend: the external service when
// configured, a static dev map otherwise, or nil (anonymous only).
func identityProvider(cfg config.Provider) domain.IdentityProvider {
	if url := cfg.GetIdentityURL(); url != "" {
		return identity.NewHTTPProvider(url)
	}
	if tokens := cfg.GetIdentityTokens(); tokens != "" {
		slog.Warn("Using static identity tokens; this is a development configuration")
		return identity.NewStaticProvider(tokens)
	}
	slog.Warn("No identity provider configured; all sessions will be anonymous")
	return nil
}
