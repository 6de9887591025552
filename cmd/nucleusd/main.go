// Command nucleusd runs a World on a fixed tick, with an optional debug HTTP server and event stream.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/profile"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"pkg.world.dev/world-engine/nucleus/components"
	"pkg.world.dev/world-engine/nucleus/config"
	"pkg.world.dev/world-engine/nucleus/driver"
	"pkg.world.dev/world-engine/nucleus/ecs"
	"pkg.world.dev/world-engine/nucleus/events"
	nlog "pkg.world.dev/world-engine/nucleus/log"
	"pkg.world.dev/world-engine/nucleus/server"
	"pkg.world.dev/world-engine/nucleus/statsd"
)

const serviceName = "nucleusd"

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg(eris.ToString(err, true))
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	zerolog.SetGlobalLevel(cfg.Level())
	worldOpts := []ecs.Option{ecs.WithLogger(log.With().Str("world", cfg.WorldName).Logger())}
	if cfg.LogPretty {
		worldOpts = append(worldOpts, ecs.WithPrettyLog())
	}
	world := ecs.NewWorld[*Frame](worldOpts...)
	logger := world.RootLogger()

	if cfg.StatsdAddress != "" {
		if err := statsd.Start(cfg.StatsdAddress, cfg.Tags()); err != nil {
			return eris.Wrap(err, "failed to start statsd client")
		}
		defer func() {
			if err := statsd.Close(); err != nil {
				logger.Warn().Err(err).Msg("failed to close statsd client")
			}
		}()
	}
	if cfg.TraceEnabled {
		tracer.Start(tracer.WithService(serviceName), tracer.WithGlobalTag("world", cfg.WorldName))
		defer tracer.Stop()
	}
	if mode := profileMode(cfg.ProfileMode); mode != nil {
		defer profile.Start(mode, profile.ProfilePath(cfg.ProfilePath), profile.NoShutdownHook).Stop()
	}

	if err := world.RegisterSystems(NewMovementSystem(), &GeometrySystem{}); err != nil {
		return err
	}
	if err := spawn(world); err != nil {
		return err
	}

	hub := events.NewHub(logger)
	if _, err := events.Forward(hub, world.Events(), MovedEvent, CameraUpdatedEvent); err != nil {
		return err
	}
	nlog.World(&logger, world, zerolog.InfoLevel)

	tickDone := make(chan uint64)
	loop := driver.New(world, newFrameFactory(world, cfg.TickInterval()),
		driver.WithTickInterval(cfg.TickInterval()),
		driver.WithTickDoneChannel(tickDone),
		driver.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		for range tickDone {
			hub.Flush()
		}
		return nil
	})
	if cfg.DebugPort != "" {
		serverOpts := []server.Option{
			server.WithPort(cfg.DebugPort),
			server.WithEventHub(hub),
			server.WithLogger(logger),
		}
		if cfg.DebugCORS {
			serverOpts = append(serverOpts, server.WithCORS())
		}
		srv, err := server.New[*Frame](loop, components.Registry, serverOpts...)
		if err != nil {
			return err
		}
		eg.Go(func() error {
			return srv.Serve(ctx)
		})
	}
	eg.Go(func() error {
		return loop.Run(ctx)
	})
	return eg.Wait()
}

// spawn populates the world with a camera looking down the z axis and a few moving probes.
func spawn(w *ecs.World[*Frame]) error {
	cameraTransform := components.NewTransform(mgl64.Vec3{0, 0, 10})
	if _, err := w.CreateEntity(ecs.NewEntityID(), components.DefaultCamera(), &cameraTransform); err != nil {
		return err
	}
	velocities := []components.Velocity{{1, 0, 0}, {0, 1, 0}, {-1, 0, -0.5}}
	for _, v := range velocities {
		t := components.NewTransform(mgl64.Vec3{})
		if _, err := w.CreateEntity(ecs.NewEntityID(), &t, v); err != nil {
			return err
		}
	}
	return nil
}

func profileMode(mode string) func(*profile.Profile) {
	switch mode {
	case "cpu":
		return profile.CPUProfile
	case "mem":
		return profile.MemProfile
	case "trace":
		return profile.TraceProfile
	default:
		return nil
	}
}
