// Package driver runs the tick loop of a World.
//
// A World must only be touched by one goroutine at a time. The Loop owns its World while it runs: ticks
// happen on the goroutine calling Run, and every other goroutine reaches the World through Do, which
// serializes with the ticks.
package driver

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"pkg.world.dev/world-engine/nucleus/ecs"
	"pkg.world.dev/world-engine/nucleus/statsd"
	"pkg.world.dev/world-engine/nucleus/worldstage"
)

var (
	ErrAlreadyStarted   = eris.New("game loop has already been started")
	ErrNotStarted       = eris.New("shutdown attempted before the game loop was started")
	ErrTickChannelClose = eris.New("tick channel has been closed")
)

// ContextFactory builds the per-tick context handed to the World's systems.
type ContextFactory[C any] func(ctx context.Context, tick uint64) C

type Loop[C any] struct {
	world      *ecs.World[C]
	newContext ContextFactory[C]
	opts       options
	logger     zerolog.Logger

	mu    sync.Mutex
	stage *worldstage.Manager
}

// New creates a loop driving w. The loop does not tick until Run is called.
func New[C any](w *ecs.World[C], newContext ContextFactory[C], opts ...Option) *Loop[C] {
	o := options{interval: DefaultTickInterval}
	for _, opt := range opts {
		opt(&o)
	}
	logger := log.Logger
	if o.logger != nil {
		logger = *o.logger
	}
	return &Loop[C]{
		world:      w,
		newContext: newContext,
		opts:       o,
		logger:     logger.With().Str("component", "driver").Logger(),
		stage:      worldstage.NewManager(),
	}
}

// Run ticks the World until ctx is done, Shutdown is called or a tick fails. The error of the failed
// tick is returned; stopping for any other reason returns nil.
func (l *Loop[C]) Run(ctx context.Context) error {
	if !l.stage.CompareAndSwap(worldstage.Init, worldstage.Running) {
		return ErrAlreadyStarted
	}
	defer l.stage.Store(worldstage.ShutDown)
	if l.opts.tickDone != nil {
		defer close(l.opts.tickDone)
	}

	tickCh := l.opts.tickChannel
	if tickCh == nil {
		ticker := time.NewTicker(l.opts.interval)
		defer ticker.Stop()
		tickCh = ticker.C
	}

	shuttingDown := l.stage.NotifyOnStage(worldstage.ShuttingDown)
	l.logger.Info().Msg("Game loop started")
	for {
		select {
		case <-ctx.Done():
			l.stage.Store(worldstage.ShuttingDown)
			l.logger.Info().Msg("Game loop stopped: context done")
			return nil
		case <-shuttingDown:
			l.logger.Info().Msg("Game loop stopped: shutdown requested")
			return nil
		case _, ok := <-tickCh:
			if !ok {
				l.stage.Store(worldstage.ShuttingDown)
				return ErrTickChannelClose
			}
			tick, err := l.tick(ctx)
			if err != nil {
				l.stage.Store(worldstage.ShuttingDown)
				l.logTickError(err)
				return err
			}
			if l.opts.tickDone != nil {
				l.opts.tickDone <- tick
			}
		}
	}
}

func (l *Loop[C]) tick(ctx context.Context) (tick uint64, err error) {
	var span tracer.Span
	span, ctx = tracer.StartSpanFromContext(ctx, "nucleus.span.tick")
	defer func() {
		span.Finish(tracer.WithError(err))
	}()

	l.mu.Lock()
	defer l.mu.Unlock()

	start := time.Now()
	tick = l.world.CurrentTick()
	span.SetTag("tick", tick)
	if err := l.world.Update(l.newContext(ctx, tick)); err != nil {
		return tick, eris.Wrapf(err, "tick %d failed", tick)
	}
	statsd.LoopTicked(start)
	return tick, nil
}

func (l *Loop[C]) logTickError(err error) {
	bz, errMarshal := json.Marshal(eris.ToJSON(err, true))
	if errMarshal != nil {
		l.logger.Error().Err(err).Msg("Tick failed")
		return
	}
	l.logger.Error().RawJSON("error", bz).Msg("Tick failed")
}

// Shutdown stops a running loop and blocks until it has exited.
func (l *Loop[C]) Shutdown() error {
	if l.stage.Current() == worldstage.Init {
		return ErrNotStarted
	}
	l.stage.CompareAndSwap(worldstage.Running, worldstage.ShuttingDown)
	<-l.stage.NotifyOnStage(worldstage.ShutDown)
	l.logger.Info().Msg("Successfully shut down game loop.")
	return nil
}

// Do runs fn with exclusive access to the World, between two ticks.
func (l *Loop[C]) Do(fn func(w *ecs.World[C]) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.world)
}

// View runs fn with the World between two ticks. fn must not mutate the World.
func (l *Loop[C]) View(fn func(w *ecs.World[C])) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.world)
}

func (l *Loop[C]) Stage() worldstage.Stage {
	return l.stage.Current()
}

func (l *Loop[C]) IsGameLoopRunning() bool {
	return l.stage.Current() == worldstage.Running
}

func (l *Loop[C]) CurrentTick() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.world.CurrentTick()
}

// Summary describes the World between two ticks.
func (l *Loop[C]) Summary() ecs.Summary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.world.Summary()
}
