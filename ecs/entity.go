package ecs

import (
	"slices"

	"github.com/rotisserie/eris"
)

// Entity is a uniquely identified, fixed bag of components. The component set is established when the
// entity is built and can not be changed afterward.
type Entity struct {
	id         EntityID
	components map[ComponentID]Component
	traits     []ComponentID

	// owner and seq are set while the entity is registered in a World. seq records registration order.
	owner any
	seq   uint64
}

// NewEntity builds an entity that is not yet registered in any World. Every component must be of a
// different kind.
func NewEntity(id EntityID, components ...Component) (*Entity, error) {
	if id == "" {
		return nil, ErrInvalidEntityID
	}
	e := &Entity{
		id:         id,
		components: make(map[ComponentID]Component, len(components)),
		traits:     make([]ComponentID, 0, len(components)),
	}
	for _, c := range components {
		if c == nil {
			return nil, eris.Errorf("entity %q: component must not be nil", id)
		}
		kind := c.ID()
		if _, ok := e.components[kind]; ok {
			return nil, eris.Wrapf(ErrDuplicateComponent, "entity %q, component kind %s", id, kind)
		}
		e.components[kind] = c
		e.traits = append(e.traits, kind)
	}
	slices.Sort(e.traits)
	return e, nil
}

// ID returns the identifier the entity was created with. It never changes.
func (e *Entity) ID() EntityID {
	return e.id
}

// Traits returns the component kinds held by the entity in ascending order.
func (e *Entity) Traits() []ComponentID {
	return slices.Clone(e.traits)
}

// Has reports whether the entity holds a component of the given kind.
func (e *Entity) Has(id ComponentID) bool {
	_, ok := e.components[id]
	return ok
}

// Len returns the number of components held by the entity.
func (e *Entity) Len() int {
	return len(e.components)
}

// Component returns the component of the given kind.
func (e *Entity) Component(id ComponentID) (Component, bool) {
	c, ok := e.components[id]
	return c, ok
}

// Components returns the entity's components ordered by kind.
func (e *Entity) Components() []Component {
	out := make([]Component, 0, len(e.traits))
	for _, id := range e.traits {
		out = append(out, e.components[id])
	}
	return out
}

// Get returns the component of type T held by e.
func Get[T Component](e *Entity) (T, bool) {
	c, ok := e.components[IDOf[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := c.(T)
	return t, ok
}
