package ecs

import "github.com/rotisserie/eris"

var (
	ErrDuplicatePriority = eris.New("system priority is already registered")
	ErrUnknownSystem     = eris.New("system is not registered")
	ErrNilSystem         = eris.New("system must not be nil")

	ErrDuplicateEntity      = eris.New("entity is already registered")
	ErrUnknownEntity        = eris.New("entity is not registered")
	ErrEntityInOtherWorld   = eris.New("entity is registered in another world")
	ErrInvalidEntityID      = eris.New("entity id must not be empty")
	ErrDuplicateComponent   = eris.New("entity holds more than one component of the same kind")
	ErrComponentSetMismatch = eris.New("components do not match the declared component set")

	ErrNoSubscribers       = eris.New("no subscribers for event kind")
	ErrNilHandler          = eris.New("event handler must not be nil")
	ErrUncomparableHandler = eris.New("event handler type is not comparable")
	ErrEventTypeMismatch   = eris.New("event does not have the type expected by the listener")
)
