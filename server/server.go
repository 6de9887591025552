// Package server exposes a read-only debug HTTP surface over a running World and streams its events
// over a websocket.
package server

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pkg.world.dev/world-engine/nucleus/events"
	"pkg.world.dev/world-engine/nucleus/server/handler"
)

const (
	DefaultPort     = "4040"
	shutdownTimeout = 5 * time.Second
)

type Server[C any] struct {
	app      *fiber.App
	provider handler.Provider[C]
	names    handler.Names
	hub      *events.Hub
	port     string
	logger   zerolog.Logger
}

// New returns a debug server over provider. Component names in responses and queries are resolved
// through names. The /events route is only served when a hub is given.
func New[C any](provider handler.Provider[C], names handler.Names, opts ...Option) (*Server[C], error) {
	if provider == nil || names == nil {
		return nil, eris.New("server requires a non-nil provider and component names")
	}

	app := fiber.New(fiber.Config{
		Network:               "tcp", // Enable server listening on both ipv4 & ipv6 (default: ipv4 only)
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
	})

	cfg := config{port: DefaultPort, logger: log.Logger}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.withCORS {
		app.Use(cors.New())
	}

	s := &Server[C]{
		app:      app,
		provider: provider,
		names:    names,
		hub:      cfg.hub,
		port:     cfg.port,
		logger:   cfg.logger.With().Str("component", "server").Logger(),
	}
	s.setupRoutes()
	return s, nil
}

// App returns the underlying fiber app, mostly for use with fiber's App.Test.
func (s *Server[C]) App() *fiber.App {
	return s.app
}

// Serve serves the application, blocking the calling thread until ctx is done or the listener fails.
func (s *Server[C]) Serve(ctx context.Context) error {
	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info().Msgf("Starting HTTP server at port %s", s.port)
		if err := s.app.Listen(":" + s.port); err != nil {
			serverErr <- eris.Wrap(err, "error starting http server")
		}
	}()

	select {
	case err := <-serverErr:
		return eris.Wrap(err, "server encountered an error")
	case <-ctx.Done():
		if err := s.Shutdown(); err != nil {
			return eris.Wrap(err, "error shutting down server")
		}
	}
	return nil
}

// Shutdown closes all websocket connections and gracefully stops the fiber app.
func (s *Server[C]) Shutdown() error {
	s.logger.Info().Msg("Shutting down server")
	if s.hub != nil {
		s.hub.Shutdown()
	}
	if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return eris.Wrap(err, "error shutting down server")
	}
	s.logger.Info().Msg("Successfully shut down server")
	return nil
}

func (s *Server[C]) setupRoutes() {
	if s.hub != nil {
		// Route: /events
		s.app.Use("/events", handler.WebSocketUpgrader)
		s.app.Get("/events", handler.WebSocketEvents(s.hub))
	}

	// Route: /health
	s.app.Get("/health", handler.GetHealth(s.provider))

	// Route: /debug/...
	debug := s.app.Group("/debug")
	debug.Get("/world", handler.GetWorld(s.provider))
	debug.Get("/entities/:id", handler.GetEntity(s.provider, s.names))
	debug.Get("/search", handler.GetSearch(s.provider, s.names))
}
