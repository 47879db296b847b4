package ws

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cory-johannsen/parlor/internal/config"
	"github.com/cory-johannsen/parlor/internal/game/room"
)

// Handler upgrades HTTP requests to websocket connections and routes their
// messages into the room registry.
type Handler struct {
	hub      *Hub
	registry *room.Registry
	cfg      config.TransportConfig
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHandler creates a websocket Handler.
//
// Precondition: hub, registry, and logger must be non-nil; cfg must have
// passed config validation.
func NewHandler(hub *Hub, registry *room.Registry, cfg config.TransportConfig, logger *zap.Logger) *Handler {
	return &Handler{
		hub:      hub,
		registry: registry,
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}
}

// ServeHTTP upgrades the connection, assigns it an opaque identity, and
// runs the pumps. It returns when the connection drops.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.logger.Debug("websocket upgrade", zap.Error(err))
		return
	}

	id := uuid.NewString()
	c := &client{
		id:      id,
		conn:    conn,
		send:    make(chan []byte, h.cfg.SendBuffer),
		limiter: rate.NewLimiter(rate.Limit(h.cfg.MoveRate), h.cfg.MoveBurst),
		logger:  h.logger.With(zap.String("conn_id", id)),
	}
	h.hub.add(c)
	c.logger.Info("client connected", zap.String("remote", r.RemoteAddr))

	go c.writePump()
	c.readPump(h.cfg.MaxMessageBytes, h.handleMessage, h.disconnect)
}

// handleMessage dispatches one inbound message. Malformed payloads are
// rejected back to the sender and never reach a session.
func (h *Handler) handleMessage(c *client, data []byte) {
	if !c.limiter.Allow() {
		h.hub.Send(c.id, room.Event{Type: room.EventRejected, Reason: "rate_limited"})
		return
	}

	msg, err := decodeMessage(data)
	if err != nil {
		h.reject(c, room.ErrBadRequest)
		return
	}

	switch msg.Type {
	case MsgCreateOrJoin:
		h.handleCreateOrJoin(c, msg)
	case MsgMove:
		h.handleMove(c, msg)
	case MsgLeave:
		h.leaveRoom(c)
	default:
		h.reject(c, room.ErrBadRequest)
	}
}

func (h *Handler) handleCreateOrJoin(c *client, msg ClientMessage) {
	if c.roomID != "" {
		// A finished game detaches lazily: the session removed itself from
		// the registry, so the stale room id is cleared here and the
		// connection is free to start over.
		if _, err := h.registry.Get(c.roomID); err == nil {
			h.reject(c, room.ErrAlreadySeated)
			return
		}
		c.roomID = ""
	}
	if msg.Game == nil {
		h.reject(c, room.ErrBadRequest)
		return
	}
	roomID := msg.RoomID
	if roomID == "" {
		roomID = h.registry.NewRoomID()
	}
	sess, _, err := h.registry.CreateOrGet(roomID, *msg.Game, msg.Capacity)
	if err != nil {
		h.reject(c, err)
		return
	}
	// A freshly created session always admits its creator, so a failed
	// join means other connections raced into the room first; they own its
	// lifecycle now and it must not be torn down on their behalf.
	if _, err := sess.Join(c.id); err != nil {
		h.reject(c, err)
		return
	}
	c.roomID = roomID
}

func (h *Handler) handleMove(c *client, msg ClientMessage) {
	roomID := msg.RoomID
	if roomID == "" {
		roomID = c.roomID
	}
	sess, err := h.registry.Get(roomID)
	if err != nil {
		h.reject(c, err)
		return
	}
	if msg.Move == nil {
		h.reject(c, room.ErrBadRequest)
		return
	}
	if err := sess.SubmitMove(c.id, *msg.Move); err != nil {
		h.reject(c, err)
	}
}

// leaveRoom detaches the connection from its room, if any. The session
// decides whether that frees the seat or forfeits the game.
func (h *Handler) leaveRoom(c *client) {
	if c.roomID == "" {
		return
	}
	if sess, err := h.registry.Get(c.roomID); err == nil {
		sess.Leave(c.id)
	}
	c.roomID = ""
}

// disconnect runs once when the connection drops: the transport treats a
// drop as leaving the room.
func (h *Handler) disconnect(c *client) {
	h.leaveRoom(c)
	h.hub.remove(c.id)
	c.logger.Info("client disconnected")
}

// reject reports a recoverable error to the originating connection only.
func (h *Handler) reject(c *client, err error) {
	h.hub.Send(c.id, room.Event{Type: room.EventRejected, Reason: room.ReasonCode(err)})
}
