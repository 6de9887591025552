package ecs

import (
	"slices"

	"github.com/rotisserie/eris"
)

// Archetype declares the exact component set of a family of entities, the way a typed entity declaration
// would. Entities built through an archetype are rejected when the provided components differ from it.
type Archetype struct {
	traits []ComponentID
}

// NewArchetype declares a component set. Duplicate kinds are collapsed.
func NewArchetype(ids ...ComponentID) Archetype {
	traits := slices.Clone(ids)
	slices.Sort(traits)
	return Archetype{traits: slices.Compact(traits)}
}

// Traits returns the declared component kinds in ascending order.
func (a Archetype) Traits() []ComponentID {
	return slices.Clone(a.traits)
}

// New builds an unregistered entity, failing with ErrComponentSetMismatch unless the components cover the
// declared set exactly.
func (a Archetype) New(id EntityID, components ...Component) (*Entity, error) {
	e, err := NewEntity(id, components...)
	if err != nil {
		return nil, err
	}
	if !slices.Equal(a.traits, e.traits) {
		return nil, eris.Wrapf(ErrComponentSetMismatch, "entity %q holds %v, declared %v", id, e.traits, a.traits)
	}
	return e, nil
}

// Create builds an entity through the archetype and registers it in w.
func Create[C any](w *World[C], a Archetype, id EntityID, components ...Component) (*Entity, error) {
	e, err := a.New(id, components...)
	if err != nil {
		return nil, err
	}
	if err := w.RegisterEntity(e); err != nil {
		return nil, err
	}
	return e, nil
}
