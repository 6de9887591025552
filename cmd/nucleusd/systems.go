package main

import (
	"context"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"pkg.world.dev/world-engine/nucleus/components"
	"pkg.world.dev/world-engine/nucleus/driver"
	"pkg.world.dev/world-engine/nucleus/ecs"
)

const (
	MovedEvent         ecs.EventKind = "moved"
	CameraUpdatedEvent ecs.EventKind = "camera_updated"

	movementPriority ecs.Priority = 10
	geometryPriority ecs.Priority = 20
)

// Frame is the per-tick context of the daemon's systems.
type Frame struct {
	Context context.Context
	Tick    uint64
	Delta   time.Duration
	Events  *ecs.EventManager[*Frame]

	world *ecs.World[*Frame]
}

// Logger returns the logger of the system being run.
func (f *Frame) Logger() *zerolog.Logger {
	return f.world.SystemLogger()
}

func newFrameFactory(w *ecs.World[*Frame], delta time.Duration) driver.ContextFactory[*Frame] {
	return func(ctx context.Context, tick uint64) *Frame {
		return &Frame{Context: ctx, Tick: tick, Delta: delta, Events: w.Events(), world: w}
	}
}

type Moved struct {
	Entity   ecs.EntityID `json:"entity"`
	Position mgl64.Vec3   `json:"position"`
	Tick     uint64       `json:"tick"`
}

func (Moved) Kind() ecs.EventKind { return MovedEvent }

type CameraUpdated struct {
	Entity     ecs.EntityID `json:"entity"`
	Model      mgl64.Mat4   `json:"model"`
	Projection mgl64.Mat4   `json:"projection"`
	Tick       uint64       `json:"tick"`
}

func (CameraUpdated) Kind() ecs.EventKind { return CameraUpdatedEvent }

// transformOf returns the transform of e. Transforms are held by pointer so systems can move them in place.
func transformOf(e *ecs.Entity) (*components.Transform, error) {
	t, ok := ecs.Get[*components.Transform](e)
	if !ok {
		c, _ := e.Component(components.TransformID)
		return nil, eris.Errorf("entity %q: transform must be held as *components.Transform, got %T", e.ID(), c)
	}
	return t, nil
}

func velocityOf(e *ecs.Entity) (components.Velocity, error) {
	if v, ok := ecs.Get[components.Velocity](e); ok {
		return v, nil
	}
	if v, ok := ecs.Get[*components.Velocity](e); ok {
		return *v, nil
	}
	c, _ := e.Component(components.VelocityID)
	return components.Velocity{}, eris.Errorf("entity %q: unexpected velocity type %T", e.ID(), c)
}

// NewMovementSystem moves every entity with a velocity and publishes where it went.
func NewMovementSystem() ecs.System[*Frame] {
	traits := ecs.TraitsOf(components.Transform{}, components.Velocity{})
	return ecs.ForEach(movementPriority, traits, func(f *Frame, e *ecs.Entity) error {
		t, err := transformOf(e)
		if err != nil {
			return err
		}
		v, err := velocityOf(e)
		if err != nil {
			return err
		}
		if v == (components.Velocity{}) {
			return nil
		}
		t.Position = t.Position.Add(v.Vec3().Mul(f.Delta.Seconds()))
		return f.Events.Publish(f, Moved{Entity: e.ID(), Position: t.Position, Tick: f.Tick})
	})
}

// GeometrySystem recomputes the matrices of every camera.
type GeometrySystem struct{}

func (*GeometrySystem) Name() string { return "GeometrySystem" }

func (*GeometrySystem) Priority() ecs.Priority { return geometryPriority }

func (*GeometrySystem) Traits() []ecs.ComponentID {
	return []ecs.ComponentID{components.CameraID, components.TransformID}
}

func (*GeometrySystem) Update(f *Frame, entities []*ecs.Entity) error {
	for _, e := range entities {
		cam, ok := ecs.Get[components.Camera](e)
		if !ok {
			return eris.Errorf("entity %q: camera must be held as components.Camera", e.ID())
		}
		t, err := transformOf(e)
		if err != nil {
			return err
		}
		f.Logger().Trace().Str("camera", string(e.ID())).Interface("position", t.Position).Msg("camera updated")
		err = f.Events.Publish(f, CameraUpdated{
			Entity:     e.ID(),
			Model:      t.Matrix(),
			Projection: cam.Projection(),
			Tick:       f.Tick,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
