package handler

import (
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"pkg.world.dev/world-engine/nucleus/ecs"
	"pkg.world.dev/world-engine/nucleus/tag"
)

// Provider gives handlers serialized access to a World. driver.Loop implements it.
type Provider[C any] interface {
	IsGameLoopRunning() bool
	View(fn func(w *ecs.World[C]))
}

// Names resolves component names in both directions. tag.Registry implements it.
type Names interface {
	Lookup(name string) (tag.Tag, error)
	Name(t tag.Tag) (string, bool)
}

type EntityState struct {
	ID         ecs.EntityID               `json:"id"`
	Components map[string]json.RawMessage `json:"components"`
}

func componentName(names Names, id ecs.ComponentID) string {
	if name, ok := names.Name(id); ok {
		return name
	}
	return id.String()
}

// entityState serializes the components of e. It must be called while the World is held.
func entityState(names Names, e *ecs.Entity) (EntityState, error) {
	state := EntityState{
		ID:         e.ID(),
		Components: make(map[string]json.RawMessage, e.Len()),
	}
	for _, c := range e.Components() {
		data, err := json.Marshal(c)
		if err != nil {
			return EntityState{}, eris.Wrapf(err, "failed to serialize component %s of entity %q", c.ID(), e.ID())
		}
		state.Components[componentName(names, c.ID())] = data
	}
	return state, nil
}
