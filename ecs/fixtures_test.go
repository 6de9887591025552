package ecs_test

import (
	"github.com/rs/zerolog"

	"pkg.world.dev/world-engine/nucleus/ecs"
	"pkg.world.dev/world-engine/nucleus/tag"
)

type Alpha struct{ Value int }

func (Alpha) ID() ecs.ComponentID { return tag.Of("Alpha") }

type Beta struct{ Value string }

func (Beta) ID() ecs.ComponentID { return tag.Of("Beta") }

type Gamma struct{}

func (Gamma) ID() ecs.ComponentID { return tag.Of("Gamma") }

// Delta is held by pointer in tests that mutate components in place.
type Delta struct{ Value int }

func (Delta) ID() ecs.ComponentID { return tag.Of("Delta") }

type tickContext struct {
	calls []string
}

func newTestWorld() *ecs.World[*tickContext] {
	return ecs.NewWorld[*tickContext](ecs.WithLogger(zerolog.Nop()))
}

// recordingSystem records every entity it was handed, per tick.
type recordingSystem struct {
	name     string
	priority ecs.Priority
	traits   []ecs.ComponentID
	seen     [][]ecs.EntityID
}

func newRecordingSystem(name string, priority ecs.Priority, traits ...ecs.ComponentID) *recordingSystem {
	return &recordingSystem{name: name, priority: priority, traits: traits}
}

func (s *recordingSystem) Name() string { return s.name }
func (s *recordingSystem) Priority() ecs.Priority { return s.priority }
func (s *recordingSystem) Traits() []ecs.ComponentID { return s.traits }
func (s *recordingSystem) Update(ctx *tickContext, entities []*ecs.Entity) error {
	ctx.calls = append(ctx.calls, s.name)
	ids := make([]ecs.EntityID, 0, len(entities))
	for _, e := range entities {
		ids = append(ids, e.ID())
	}
	s.seen = append(s.seen, ids)
	return nil
}

func (s *recordingSystem) last() []ecs.EntityID {
	if len(s.seen) == 0 {
		return nil
	}
	return s.seen[len(s.seen)-1]
}
