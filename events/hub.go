// Package events streams World events to websocket clients.
package events

import (
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/websocket"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"pkg.world.dev/world-engine/nucleus/ecs"
)

const writeDeadline = 5 * time.Second

var ErrHubClosed = eris.New("event hub has been shut down")

// Conn is the part of a websocket connection the Hub writes to.
type Conn interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Message is the JSON frame sent to clients for every forwarded event.
type Message struct {
	Kind  ecs.EventKind `json:"kind"`
	Event any           `json:"event"`
}

// Hub queues serialized events and writes them to every registered connection on Flush.
type Hub struct {
	mu     sync.Mutex
	conns  map[Conn]struct{}
	queue  [][]byte
	closed bool
	logger zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		conns:  map[Conn]struct{}{},
		logger: logger.With().Str("component", "event_hub").Logger(),
	}
}

// Emit serializes v and queues it for the next Flush.
func (h *Hub) Emit(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return eris.Wrap(err, "must use a json serializable type for emitting events")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	h.queue = append(h.queue, data)
	return nil
}

// Flush writes all queued frames to every connection. A connection that fails a write is closed and
// dropped.
func (h *Hub) Flush() {
	h.mu.Lock()
	queue := h.queue
	h.queue = nil
	conns := make([]Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	if len(queue) == 0 || len(conns) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, conn := range conns {
		wg.Add(1)
		go func(conn Conn) {
			defer wg.Done()
			for _, frame := range queue {
				if err := h.write(conn, frame); err != nil {
					h.logger.Error().Err(err).Msg("Connection was unregistered because of this error: " +
						eris.ToString(err, true))
					h.Unregister(conn)
					return
				}
			}
		}(conn)
	}
	wg.Wait()
}

func (h *Hub) write(conn Conn, frame []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
		return eris.Wrap(err, "failed to set write deadline")
	}
	return eris.Wrap(conn.WriteMessage(websocket.TextMessage, frame), "failed to write event")
}

func (h *Hub) Register(conn Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	h.conns[conn] = struct{}{}
	return nil
}

// Unregister drops and closes conn. Unknown connections are ignored.
func (h *Hub) Unregister(conn Conn) {
	h.mu.Lock()
	_, ok := h.conns[conn]
	delete(h.conns, conn)
	h.mu.Unlock()
	if !ok {
		return
	}
	if err := conn.Close(); err != nil {
		h.logger.Debug().Err(err).Msg("failed to close websocket connection")
	}
}

func (h *Hub) QueueLength() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.queue)
}

func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Shutdown closes every connection and rejects further events and registrations.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	conns := h.conns
	h.conns = map[Conn]struct{}{}
	h.queue = nil
	h.mu.Unlock()

	for conn := range conns {
		if err := conn.Close(); err != nil {
			h.logger.Debug().Err(err).Msg("failed to close websocket connection")
		}
	}
}

// NewWebSocketHandler returns the fiber websocket handler that keeps a client registered until it
// disconnects. Messages sent by clients are discarded.
func (h *Hub) NewWebSocketHandler() func(conn *websocket.Conn) {
	return func(conn *websocket.Conn) {
		if err := h.Register(conn); err != nil {
			h.logger.Debug().Err(err).Msg("rejected websocket connection")
			_ = conn.Close()
			return
		}
		defer h.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.logger.Debug().Err(err).Msg("websocket read message failed")
				return
			}
		}
	}
}
