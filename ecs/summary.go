package ecs

// Summary is a point-in-time description of a World, suitable for logging and debug endpoints.
type Summary struct {
	Tick     uint64          `json:"tick"`
	Systems  []SystemSummary `json:"systems"`
	Entities []EntitySummary `json:"entities"`
	Events   []EventSummary  `json:"events"`
}

type SystemSummary struct {
	Name     string        `json:"name"`
	Priority Priority      `json:"priority"`
	Traits   []ComponentID `json:"traits"`
	Matched  []EntityID    `json:"matched"`
}

type EntitySummary struct {
	ID     EntityID      `json:"id"`
	Traits []ComponentID `json:"traits"`
}

type EventSummary struct {
	Kind        EventKind `json:"kind"`
	Subscribers int       `json:"subscribers"`
}

// Summary describes the World's current systems, entities and event subscriptions.
func (w *World[C]) Summary() Summary {
	s := Summary{
		Tick:     w.tick,
		Systems:  w.SystemSummaries(),
		Entities: make([]EntitySummary, 0, len(w.entities)),
		Events:   make([]EventSummary, 0),
	}
	for _, e := range w.Entities() {
		s.Entities = append(s.Entities, e.Summary())
	}
	for _, kind := range w.events.Kinds() {
		s.Events = append(s.Events, EventSummary{Kind: kind, Subscribers: w.events.Subscribers(kind)})
	}
	return s
}

// SystemSummaries describes the registered systems in the order they run.
func (w *World[C]) SystemSummaries() []SystemSummary {
	out := make([]SystemSummary, 0, len(w.order))
	for _, priority := range w.order {
		entry := w.systems[priority]
		matched := make([]EntityID, 0, len(entry.matched))
		for _, e := range entry.matched {
			matched = append(matched, e.id)
		}
		out = append(out, SystemSummary{
			Name:     entry.name,
			Priority: entry.priority,
			Traits:   append([]ComponentID{}, entry.traits...),
			Matched:  matched,
		})
	}
	return out
}

func (e *Entity) Summary() EntitySummary {
	return EntitySummary{ID: e.id, Traits: e.Traits()}
}
