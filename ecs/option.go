package ecs

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Option represents an option that can be used to augment how a World is created.
type Option func(*worldOptions)

type worldOptions struct {
	logger zerolog.Logger
}

func defaultOptions() worldOptions {
	return worldOptions{
		logger: log.Logger,
	}
}

// WithLogger sets the logger used by the World and its EventManager. The global zerolog logger is used
// otherwise.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *worldOptions) {
		o.logger = logger
	}
}

// WithPrettyLog writes human readable logs to stderr.
func WithPrettyLog() Option {
	return func(o *worldOptions) {
		o.logger = o.logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
