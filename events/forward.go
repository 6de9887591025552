package events

import (
	"github.com/rotisserie/eris"

	"pkg.world.dev/world-engine/nucleus/ecs"
)

// Forward subscribes a listener to every given kind that queues the published events on the Hub.
// The returned listener can be passed to EventManager.Unsubscribe to stop forwarding.
func Forward[C any](h *Hub, m *ecs.EventManager[C], kinds ...ecs.EventKind) (*ecs.Listener[C], error) {
	listener := ecs.Listen[C](func(_ C, event ecs.Event) error {
		return h.Emit(Message{Kind: event.Kind(), Event: event})
	})
	for _, kind := range kinds {
		if err := m.Subscribe(kind, listener); err != nil {
			return nil, eris.Wrapf(err, "failed to forward %q events", kind)
		}
	}
	return listener, nil
}
