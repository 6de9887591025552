package ecs

import (
	"reflect"
	"slices"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"pkg.world.dev/world-engine/nucleus/statsd"
)

// EventKind identifies a kind of event on the bus.
type EventKind string

// Event is a notification published through an EventManager.
type Event interface {
	Kind() EventKind
}

// Handler receives events it is subscribed to. Handlers are identified by interface equality, so the
// dynamic type of a Handler must be comparable; pointer types always are.
type Handler[C any] interface {
	HandleEvent(ctx C, event Event) error
}

// Listener adapts a function to a Handler. Each Listener is a distinct subscriber.
type Listener[C any] struct {
	fn func(ctx C, event Event) error
}

// Listen wraps fn in a new Listener. Keep the returned pointer around to unsubscribe later.
func Listen[C any](fn func(ctx C, event Event) error) *Listener[C] {
	return &Listener[C]{fn: fn}
}

// On wraps a function taking a concrete event type in a new Listener. Events of any other type fail
// with ErrEventTypeMismatch.
func On[C any, E Event](fn func(ctx C, event E) error) *Listener[C] {
	return Listen(func(ctx C, event Event) error {
		e, ok := event.(E)
		if !ok {
			var want E
			return eris.Wrapf(ErrEventTypeMismatch, "want %T, got %T", want, event)
		}
		return fn(ctx, e)
	})
}

func (l *Listener[C]) HandleEvent(ctx C, event Event) error {
	return l.fn(ctx, event)
}

type subscriberSet[C any] struct {
	members map[Handler[C]]struct{}
	order   []Handler[C]
}

// EventManager is a synchronous publish/subscribe hub keyed by event kind. It is not safe for concurrent use.
type EventManager[C any] struct {
	subscribers map[EventKind]*subscriberSet[C]
	logger      zerolog.Logger
}

func NewEventManager[C any](logger zerolog.Logger) *EventManager[C] {
	return &EventManager[C]{
		subscribers: make(map[EventKind]*subscriberSet[C]),
		logger:      logger,
	}
}

// Subscribe registers h for events of the given kind. Subscribing the same handler twice is a no-op.
func (m *EventManager[C]) Subscribe(kind EventKind, h Handler[C]) error {
	if h == nil {
		return ErrNilHandler
	}
	if !reflect.ValueOf(h).Comparable() {
		return eris.Wrapf(ErrUncomparableHandler, "%T", h)
	}
	set, ok := m.subscribers[kind]
	if !ok {
		set = &subscriberSet[C]{members: make(map[Handler[C]]struct{})}
		m.subscribers[kind] = set
	}
	if _, ok := set.members[h]; ok {
		return nil
	}
	set.members[h] = struct{}{}
	set.order = append(set.order, h)
	m.logger.Trace().Str("event_kind", string(kind)).Int("subscribers", len(set.order)).Msg("subscribed")
	return nil
}

// Unsubscribe removes h from the subscribers of kind. It fails with ErrNoSubscribers when kind has no
// subscribers at all, whether or not h was ever subscribed; removing a handler that is not subscribed to a
// kind that has other subscribers is a no-op.
func (m *EventManager[C]) Unsubscribe(kind EventKind, h Handler[C]) error {
	set, ok := m.subscribers[kind]
	if !ok {
		return eris.Wrapf(ErrNoSubscribers, "event kind %q", kind)
	}
	if h == nil || !reflect.ValueOf(h).Comparable() {
		return nil
	}
	if _, ok := set.members[h]; !ok {
		return nil
	}
	delete(set.members, h)
	// Publish may be iterating the old slice, so build a new one.
	set.order = slices.DeleteFunc(slices.Clone(set.order), func(other Handler[C]) bool {
		return other == h
	})
	if len(set.order) == 0 {
		delete(m.subscribers, kind)
	}
	return nil
}

// Publish calls every handler subscribed to the event's kind, synchronously, in subscription order. The
// first handler error aborts the dispatch. Handlers subscribed or unsubscribed during the dispatch do
// not affect it.
func (m *EventManager[C]) Publish(ctx C, event Event) error {
	kind := event.Kind()
	set, ok := m.subscribers[kind]
	if !ok {
		statsd.EventPublished(string(kind), 0)
		return nil
	}
	statsd.EventPublished(string(kind), len(set.order))
	for _, h := range set.order {
		if err := h.HandleEvent(ctx, event); err != nil {
			return eris.Wrapf(err, "handler %T failed on event kind %q", h, kind)
		}
	}
	return nil
}

// Subscribers returns the number of handlers subscribed to kind.
func (m *EventManager[C]) Subscribers(kind EventKind) int {
	set, ok := m.subscribers[kind]
	if !ok {
		return 0
	}
	return len(set.order)
}

// Kinds returns every event kind with at least one subscriber, sorted.
func (m *EventManager[C]) Kinds() []EventKind {
	kinds := make([]EventKind, 0, len(m.subscribers))
	for kind := range m.subscribers {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool {
		return kinds[i] < kinds[j]
	})
	return kinds
}
