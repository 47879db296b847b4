package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/parlor/internal/game/room"
)

// Hub tracks live connections and delivers room events to them. It
// implements room.Broadcaster. All methods are safe for concurrent use.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	logger  *zap.Logger
}

// NewHub creates an empty Hub.
//
// Precondition: logger must be non-nil.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*client),
		logger:  logger,
	}
}

// Send marshals ev and enqueues it to the connection's outbound queue.
// Delivery is fire-and-forget: unknown connections are ignored and a full
// queue drops the event rather than blocking game logic.
//
// The read lock is held across the enqueue so it cannot interleave with
// remove closing the queue. The enqueue never blocks, so the hold is as
// short as the map lookup itself.
func (h *Hub) Send(connID string, ev room.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshalling event",
			zap.String("conn_id", connID),
			zap.String("event", string(ev.Type)),
			zap.Error(err),
		)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[connID]
	if !ok {
		return
	}

	select {
	case c.send <- data:
	default:
		h.logger.Warn("send queue full, dropping event",
			zap.String("conn_id", connID),
			zap.String("event", string(ev.Type)),
		)
	}
}

// ClientCount returns the number of live connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// add registers a connection.
func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
}

// remove unregisters a connection and closes its send queue, stopping its
// write pump. The close happens under the write lock, after which no Send
// can still hold a reference to the queue. Removing an unknown id is a
// no-op.
func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[id]
	if !ok {
		return
	}
	delete(h.clients, id)
	close(c.send)
}
