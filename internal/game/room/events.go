package room

import (
	"github.com/cory-johannsen/parlor/internal/game/rules"
)

// EventType identifies an outbound event.
type EventType string

const (
	// EventSeatAssigned is sent to a joiner with its seat and marker.
	EventSeatAssigned EventType = "seat_assigned"
	// EventRoomUpdated is broadcast when the seat list changes before or
	// during a game.
	EventRoomUpdated EventType = "room_updated"
	// EventGameStarted is broadcast when the room reaches capacity.
	EventGameStarted EventType = "game_started"
	// EventStateUpdated is broadcast after every accepted move.
	EventStateUpdated EventType = "state_updated"
	// EventGameOver is broadcast exactly once, when the session finishes.
	EventGameOver EventType = "game_over"
	// EventRejected is sent only to the originator of a rejected operation.
	EventRejected EventType = "rejected"
)

// SeatInfo is the client-visible view of a seat. Markers index into
// MarkerColors for display.
type SeatInfo struct {
	Index     int  `json:"index"`
	Marker    int  `json:"marker"`
	Connected bool `json:"connected"`
}

// MarkerColors are the display colors for marker indexes 0-3, in seat
// order.
var MarkerColors = []string{"red", "yellow", "green", "purple"}

// Event is one outbound message, addressed either to a single connection
// or broadcast to every connected seat of a room. Which fields are set
// depends on Type.
type Event struct {
	Type   EventType     `json:"type"`
	RoomID string        `json:"room_id,omitempty"`
	Seat   *SeatInfo     `json:"seat,omitempty"`
	Seats  []SeatInfo    `json:"seats,omitempty"`
	State  any           `json:"state,omitempty"`
	Turn   int           `json:"turn"`
	Result *rules.Result `json:"result,omitempty"`
	Reason string        `json:"reason,omitempty"`
}

// Broadcaster delivers events to connections. Send is fire-and-forget: the
// session never waits for delivery confirmation, and implementations must
// not block.
type Broadcaster interface {
	Send(connID string, ev Event)
}
