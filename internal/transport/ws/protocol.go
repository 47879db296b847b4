// Package ws hosts the websocket transport: per-connection read/write
// pumps, the JSON message protocol, and the hub that delivers session
// events back to connections.
package ws

import (
	"encoding/json"
	"fmt"

	"github.com/cory-johannsen/parlor/internal/game/rules"
)

// MessageType identifies an inbound client message.
type MessageType string

const (
	// MsgCreateOrJoin creates a room (empty room_id) or joins an existing
	// one.
	MsgCreateOrJoin MessageType = "create_or_join"
	// MsgMove submits a move for the connection's room.
	MsgMove MessageType = "move"
	// MsgLeave leaves the connection's room without closing the socket.
	MsgLeave MessageType = "leave"
)

// ClientMessage is the envelope for all inbound messages. The connection
// identity is implicit; it is assigned at upgrade time and never supplied
// by the client.
type ClientMessage struct {
	Type     MessageType `json:"type"`
	RoomID   string      `json:"room_id,omitempty"`
	Game     *rules.Kind `json:"game,omitempty"`
	Capacity int         `json:"capacity,omitempty"`
	Move     *rules.Move `json:"move,omitempty"`
}

// decodeMessage parses one inbound payload.
//
// Postcondition: Returns an error for malformed JSON or a missing type;
// callers reject such payloads without touching any session.
func decodeMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("decoding message: %w", err)
	}
	if msg.Type == "" {
		return ClientMessage{}, fmt.Errorf("message has no type")
	}
	return msg, nil
}
