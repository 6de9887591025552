package server

import (
	"github.com/rs/zerolog"

	"pkg.world.dev/world-engine/nucleus/events"
)

type config struct {
	port     string
	withCORS bool
	hub      *events.Hub
	logger   zerolog.Logger
}

type Option func(*config)

func WithPort(port string) Option {
	return func(c *config) {
		if port != "" {
			c.port = port
		}
	}
}

func WithCORS() Option {
	return func(c *config) {
		c.withCORS = true
	}
}

// WithEventHub serves the hub's websocket stream on /events.
func WithEventHub(hub *events.Hub) Option {
	return func(c *config) {
		c.hub = hub
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
