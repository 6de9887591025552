package ecs

import (
	"reflect"

	"github.com/google/uuid"

	"pkg.world.dev/world-engine/nucleus/tag"
)

// ComponentID is the component-kind identifier of a component type.
type ComponentID = tag.Tag

// Component is a data-only value tagged with the identifier of its type. ID must be declared on the value
// receiver and must not depend on the component's fields: it is read from zero values to derive the
// identifier of a type.
type Component interface {
	ID() ComponentID
}

// IDOf returns the identifier of component type T. T may be a pointer to a component type, in which
// case ID is called on a fresh value rather than on a nil pointer.
func IDOf[T Component]() ComponentID {
	var zero T
	rt := reflect.TypeOf(&zero).Elem()
	if rt.Kind() == reflect.Pointer {
		return reflect.New(rt.Elem()).Interface().(Component).ID()
	}
	return zero.ID()
}

// TraitsOf returns the identifiers of the given components, in order. Zero values are typically passed:
//
//	ecs.TraitsOf(Camera{}, Transform{})
func TraitsOf(components ...Component) []ComponentID {
	ids := make([]ComponentID, 0, len(components))
	for _, c := range components {
		ids = append(ids, c.ID())
	}
	return ids
}

// EntityID is the caller supplied unique id of an entity.
type EntityID string

// NewEntityID generates a random entity id for callers that have no natural key of their own.
func NewEntityID() EntityID {
	return EntityID(uuid.NewString())
}
