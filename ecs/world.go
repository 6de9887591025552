package ecs

import (
	"slices"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"pkg.world.dev/world-engine/nucleus/ecs/filter"
	"pkg.world.dev/world-engine/nucleus/statsd"
)

// World owns the systems, the entities and the event bus of one simulation, and runs ticks over them. C
// is the caller's per-tick context type; it is passed through to systems untouched.
//
// A World is not safe for concurrent use. All calls, including those made by systems and event handlers,
// must come from the goroutine driving the ticks.
type World[C any] struct {
	systems map[Priority]*systemEntry[C]
	// order holds registered priorities in ascending order.
	order []Priority

	entities map[EntityID]*Entity
	nextSeq  uint64

	events *EventManager[C]
	root   zerolog.Logger
	logger zerolog.Logger

	tick          uint64
	currentSystem *systemEntry[C]
}

type systemEntry[C any] struct {
	system   System[C]
	name     string
	priority Priority
	traits   []ComponentID
	// matched is replaced, never modified in place, so that a slice handed to a running system stays intact.
	matched []*Entity
	logger  zerolog.Logger
}

// NewWorld creates an empty World.
func NewWorld[C any](opts ...Option) *World[C] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With().Str("component", "world").Logger()
	return &World[C]{
		systems:  make(map[Priority]*systemEntry[C]),
		entities: make(map[EntityID]*Entity),
		events:   NewEventManager[C](o.logger.With().Str("component", "events").Logger()),
		root:     o.logger,
		logger:   logger,
	}
}

// Events returns the World's event bus.
func (w *World[C]) Events() *EventManager[C] {
	return w.events
}

// Logger returns the logger the World writes its own records to. It carries a component=world field.
func (w *World[C]) Logger() *zerolog.Logger {
	return &w.logger
}

// RootLogger returns the logger the World was configured with, before any field of its own was added.
// Services running next to the World derive their loggers from it.
func (w *World[C]) RootLogger() zerolog.Logger {
	return w.root
}

// RegisterSystem adds s to the World. Its match set is computed right away against the registered entities.
func (w *World[C]) RegisterSystem(s System[C]) error {
	if s == nil {
		return ErrNilSystem
	}
	priority := s.Priority()
	if existing, ok := w.systems[priority]; ok {
		return eris.Wrapf(ErrDuplicatePriority, "priority %d is held by %s", priority, existing.name)
	}
	entry := &systemEntry[C]{
		system:   s,
		name:     systemName(s),
		priority: priority,
		traits:   slices.Clone(s.Traits()),
	}
	entry.matched = w.match(entry.traits)
	entry.logger = w.logger.With().Str("system", entry.name).Int("priority", int(priority)).Logger()
	w.systems[priority] = entry

	i, _ := slices.BinarySearch(w.order, priority)
	w.order = slices.Insert(w.order, i, priority)

	w.logger.Debug().
		Str("system", entry.name).
		Int("priority", int(priority)).
		Int("matched", len(entry.matched)).
		Msg("system registered")
	return nil
}

// RegisterSystems registers each system in turn. If one fails, the ones before it stay registered.
func (w *World[C]) RegisterSystems(systems ...System[C]) error {
	for _, s := range systems {
		if err := w.RegisterSystem(s); err != nil {
			return err
		}
	}
	return nil
}

// UnregisterSystem removes the system registered under s's priority.
func (w *World[C]) UnregisterSystem(s System[C]) error {
	if s == nil {
		return ErrNilSystem
	}
	priority := s.Priority()
	entry, ok := w.systems[priority]
	if !ok {
		return eris.Wrapf(ErrUnknownSystem, "priority %d", priority)
	}
	delete(w.systems, priority)
	if i, found := slices.BinarySearch(w.order, priority); found {
		w.order = slices.Delete(slices.Clone(w.order), i, i+1)
	}
	w.logger.Debug().Str("system", entry.name).Int("priority", int(priority)).Msg("system unregistered")
	return nil
}

// CreateEntity builds an entity and registers it. Nothing is registered if either step fails.
func (w *World[C]) CreateEntity(id EntityID, components ...Component) (*Entity, error) {
	e, err := NewEntity(id, components...)
	if err != nil {
		return nil, err
	}
	if err := w.RegisterEntity(e); err != nil {
		return nil, err
	}
	return e, nil
}

// RegisterEntity adds e to the World and to the match set of every system it satisfies.
func (w *World[C]) RegisterEntity(e *Entity) error {
	if e == nil {
		return ErrInvalidEntityID
	}
	if _, ok := w.entities[e.id]; ok {
		return eris.Wrapf(ErrDuplicateEntity, "entity %q", e.id)
	}
	if e.owner != nil {
		return eris.Wrapf(ErrEntityInOtherWorld, "entity %q", e.id)
	}
	w.nextSeq++
	e.seq = w.nextSeq
	e.owner = w
	w.entities[e.id] = e

	for _, entry := range w.systems {
		if Matches(entry.traits, e) {
			matched := make([]*Entity, len(entry.matched), len(entry.matched)+1)
			copy(matched, entry.matched)
			entry.matched = append(matched, e)
		}
	}
	w.logger.Trace().Str("entity", string(e.id)).Int("components", e.Len()).Msg("entity registered")
	return nil
}

// UnregisterEntity removes the entity with e's id from the World and from every system's match set.
func (w *World[C]) UnregisterEntity(e *Entity) error {
	if e == nil {
		return ErrInvalidEntityID
	}
	registered, ok := w.entities[e.id]
	if !ok {
		return eris.Wrapf(ErrUnknownEntity, "entity %q", e.id)
	}
	delete(w.entities, e.id)
	for _, entry := range w.systems {
		if !slices.Contains(entry.matched, registered) {
			continue
		}
		entry.matched = slices.DeleteFunc(slices.Clone(entry.matched), func(other *Entity) bool {
			return other == registered
		})
	}
	registered.owner = nil
	registered.seq = 0
	w.logger.Trace().Str("entity", string(e.id)).Msg("entity unregistered")
	return nil
}

// Update runs one tick: every system, in ascending priority order, receives its current match set along
// with ctx. The first system error aborts the tick and is returned.
//
// Systems registered while the tick runs are first run on the next tick. Systems unregistered while the
// tick runs are skipped if they have not run yet.
func (w *World[C]) Update(ctx C) error {
	defer w.handleTickPanic()

	tickStart := time.Now()
	w.logger.Debug().Uint64("tick", w.tick).Msg("tick started")

	entries := make([]*systemEntry[C], 0, len(w.order))
	for _, priority := range w.order {
		entries = append(entries, w.systems[priority])
	}

	for _, entry := range entries {
		if w.systems[entry.priority] != entry {
			continue
		}
		w.currentSystem = entry

		systemStart := time.Now()
		if err := entry.system.Update(ctx, slices.Clone(entry.matched)); err != nil {
			entry.logger.Debug().Err(err).Uint64("tick", w.tick).Msg("system failed")
			w.currentSystem = nil
			return eris.Wrapf(err, "system %s (priority %d) generated an error", entry.name, entry.priority)
		}
		statsd.SystemRan(entry.name, systemStart, len(entry.matched))
	}
	w.currentSystem = nil

	statsd.WorldTicked(tickStart)
	w.logger.Debug().
		Uint64("tick", w.tick).
		Dur("duration", time.Since(tickStart)).
		Msg("tick completed")
	w.tick++
	return nil
}

func (w *World[C]) handleTickPanic() {
	if r := recover(); r != nil {
		w.logger.Error().Msgf("Tick: %d, Current running system: %s", w.tick, w.CurrentSystem())
		w.currentSystem = nil
		panic(r)
	}
}

// CurrentTick returns the number of ticks completed so far.
func (w *World[C]) CurrentTick() uint64 {
	return w.tick
}

// CurrentSystem returns the name of the system being run, or "no_system" outside a tick.
func (w *World[C]) CurrentSystem() string {
	if w.currentSystem == nil {
		return "no_system"
	}
	return w.currentSystem.name
}

// SystemLogger returns the logger of the running system, tagged with its name and priority. Outside a tick
// it returns the World logger.
func (w *World[C]) SystemLogger() *zerolog.Logger {
	if w.currentSystem == nil {
		return &w.logger
	}
	return &w.currentSystem.logger
}

// Entity returns the registered entity with the given id.
func (w *World[C]) Entity(id EntityID) (*Entity, bool) {
	e, ok := w.entities[id]
	return e, ok
}

// Entities returns the registered entities in registration order.
func (w *World[C]) Entities() []*Entity {
	return w.Search(filter.All())
}

// EntityCount returns the number of registered entities.
func (w *World[C]) EntityCount() int {
	return len(w.entities)
}

// Search returns the registered entities matching f, in registration order.
func (w *World[C]) Search(f filter.ComponentFilter) []*Entity {
	out := make([]*Entity, 0)
	for _, e := range w.entities {
		if f.MatchesTraits(e) {
			out = append(out, e)
		}
	}
	sortBySeq(out)
	return out
}

// Systems returns the registered systems in the order they run.
func (w *World[C]) Systems() []System[C] {
	out := make([]System[C], 0, len(w.order))
	for _, priority := range w.order {
		out = append(out, w.systems[priority].system)
	}
	return out
}

// Matched returns the entities the system registered under priority would receive on the next tick.
func (w *World[C]) Matched(priority Priority) ([]*Entity, error) {
	entry, ok := w.systems[priority]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownSystem, "priority %d", priority)
	}
	return slices.Clone(entry.matched), nil
}

func (w *World[C]) match(traits []ComponentID) []*Entity {
	return w.Search(filter.Contains(traits...))
}

func sortBySeq(entities []*Entity) {
	sort.Slice(entities, func(i, j int) bool {
		return entities[i].seq < entities[j].seq
	})
}
