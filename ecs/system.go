package ecs

import (
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"
	"slices"

	"github.com/rotisserie/eris"

	"pkg.world.dev/world-engine/nucleus/ecs/filter"
)

// Priority orders systems within a tick, lower runs first. It is also the key of a system in its World,
// so no two systems of one World may share a priority.
type Priority int

// System is a unit of per-tick logic. Every tick the World calls Update with the entities that hold all of
// the component kinds returned by Traits. The trait signature must not change after registration.
//
// The entities slice is a copy owned by the system for the duration of the call: reordering or clearing it
// does not affect the World. The entities themselves are shared.
type System[C any] interface {
	Priority() Priority
	Traits() []ComponentID
	Update(ctx C, entities []*Entity) error
}

// Named can be implemented by systems to control the name used in logs and metrics.
type Named interface {
	Name() string
}

// Matches reports whether e holds every component kind in traits. An empty trait list matches every entity.
func Matches(traits []ComponentID, e *Entity) bool {
	return filter.Contains(traits...).MatchesTraits(e)
}

type funcSystem[C any] struct {
	name     string
	priority Priority
	traits   []ComponentID
	fn       func(ctx C, entities []*Entity) error
}

// NewSystem creates a system that receives all matching entities at once. The system is named after fn.
func NewSystem[C any](priority Priority, traits []ComponentID, fn func(ctx C, entities []*Entity) error) System[C] {
	return &funcSystem[C]{
		name:     funcName(fn),
		priority: priority,
		traits:   slices.Clone(traits),
		fn:       fn,
	}
}

// ForEach creates a system that invokes fn once per matching entity. The first error stops the iteration.
func ForEach[C any](priority Priority, traits []ComponentID, fn func(ctx C, entity *Entity) error) System[C] {
	return &funcSystem[C]{
		name:     funcName(fn),
		priority: priority,
		traits:   slices.Clone(traits),
		fn: func(ctx C, entities []*Entity) error {
			for _, e := range entities {
				if err := fn(ctx, e); err != nil {
					return eris.Wrapf(err, "entity %q", e.ID())
				}
			}
			return nil
		},
	}
}

func (s *funcSystem[C]) Name() string {
	return s.name
}

func (s *funcSystem[C]) Priority() Priority {
	return s.priority
}

func (s *funcSystem[C]) Traits() []ComponentID {
	return s.traits
}

func (s *funcSystem[C]) Update(ctx C, entities []*Entity) error {
	return s.fn(ctx, entities)
}

func funcName(fn any) string {
	return filepath.Base(runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name())
}

func systemName[C any](s System[C]) string {
	if n, ok := s.(Named); ok && n.Name() != "" {
		return n.Name()
	}
	return fmt.Sprintf("%T", s)
}
