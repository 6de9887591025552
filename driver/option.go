package driver

import (
	"time"

	"github.com/rs/zerolog"
)

const DefaultTickInterval = time.Second

type Option func(*options)

type options struct {
	tickChannel <-chan time.Time
	tickDone    chan<- uint64
	interval    time.Duration
	logger      *zerolog.Logger
}

// WithTickChannel sets the channel that decides when a tick is executed. When unset, a ticker with the
// configured interval is used. Tests can pass a channel they control for fine-grained control over ticks.
func WithTickChannel(ch <-chan time.Time) Option {
	return func(o *options) {
		o.tickChannel = ch
	}
}

// WithTickDoneChannel sets a channel that receives the number of every completed tick. The loop closes
// the channel when it exits.
func WithTickDoneChannel(ch chan<- uint64) Option {
	return func(o *options) {
		o.tickDone = ch
	}
}

// WithTickInterval sets the interval of the default ticker. It is ignored when WithTickChannel is used.
func WithTickInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}
