// Package room implements the authoritative per-room game session state
// machine and the process-wide registry that owns the live sessions.
package room

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/parlor/internal/game/rules"
)

// Status is the lifecycle phase of a session. Transitions are
// one-directional: Waiting -> InProgress -> Finished.
type Status int

const (
	StatusWaiting Status = iota
	StatusInProgress
	StatusFinished
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusInProgress:
		return "in_progress"
	case StatusFinished:
		return "finished"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Seat is a player's slot in a room. The marker is assigned at join time
// and stored explicitly, so later seat-list changes can never silently
// reassign it. A seat is never reused within the same room.
type Seat struct {
	ConnID    string
	Marker    int
	Connected bool
}

// Session owns the mutable state of one room: the board or puzzle, the
// seat list, and the turn cursor. Join, SubmitMove, and Leave are each one
// atomic step under the session mutex, so state transitions are
// linearizable per room. Sessions never block on other sessions.
type Session struct {
	mu       sync.Mutex
	id       string
	kind     rules.Kind
	rules    rules.Rules
	state    rules.State
	capacity int
	seats    []Seat
	turn     int
	status   Status

	bc     Broadcaster
	logger *zap.Logger

	// onFinished is invoked once when the session reaches Finished or its
	// membership drops to zero, so the registry can release it.
	onFinished func(roomID string)
	released   bool
}

// NewSession creates a session in the Waiting state with no seats.
//
// Precondition: r and bc must be non-nil; capacity must be the value
// resolved by kind.Capacity; logger must be non-nil.
func NewSession(id string, kind rules.Kind, r rules.Rules, capacity int, bc Broadcaster, logger *zap.Logger, onFinished func(roomID string)) *Session {
	return &Session{
		id:         id,
		kind:       kind,
		rules:      r,
		state:      r.Initial(),
		capacity:   capacity,
		seats:      make([]Seat, 0, capacity),
		status:     StatusWaiting,
		bc:         bc,
		logger:     logger,
		onFinished: onFinished,
	}
}

// ID returns the room identifier.
func (s *Session) ID() string { return s.id }

// Kind returns the game variant descriptor.
func (s *Session) Kind() rules.Kind { return s.kind }

// Capacity returns the seat capacity fixed at creation.
func (s *Session) Capacity() int { return s.capacity }

// Status returns the current lifecycle phase.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Seats returns a snapshot of the seat list in join order.
func (s *Session) Seats() []Seat {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Seat, len(s.seats))
	copy(out, s.seats)
	return out
}

// Turn returns the seat index currently authorized to move.
func (s *Session) Turn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn
}

// Join seats connID in the room.
//
// Postcondition: On success returns the new seat index, sends SeatAssigned
// to the joiner, and broadcasts GameStarted (capacity reached) or
// RoomUpdated. Rejections leave the session unchanged.
func (s *Session) Join(connID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusWaiting {
		return 0, ErrRoomFull
	}
	for _, seat := range s.seats {
		if seat.ConnID == connID {
			return 0, ErrAlreadySeated
		}
	}
	if len(s.seats) >= s.capacity {
		return 0, ErrRoomFull
	}

	seat := Seat{ConnID: connID, Marker: s.nextMarkerLocked(), Connected: true}
	s.seats = append(s.seats, seat)
	idx := len(s.seats) - 1

	s.logger.Info("seat assigned",
		zap.String("conn_id", connID),
		zap.Int("seat", idx),
		zap.Int("marker", seat.Marker),
	)

	s.bc.Send(connID, Event{
		Type:   EventSeatAssigned,
		RoomID: s.id,
		Seat:   &SeatInfo{Index: idx, Marker: seat.Marker, Connected: true},
	})

	if len(s.seats) == s.capacity {
		s.status = StatusInProgress
		s.turn = 0
		s.logger.Info("game started", zap.Int("seats", len(s.seats)))
		s.broadcastLocked(Event{
			Type:   EventGameStarted,
			RoomID: s.id,
			Seats:  s.seatInfosLocked(),
			State:  s.state.View(),
			Turn:   s.turn,
		})
	} else {
		s.broadcastLocked(Event{
			Type:   EventRoomUpdated,
			RoomID: s.id,
			Seats:  s.seatInfosLocked(),
		})
	}
	return idx, nil
}

// SubmitMove validates and applies a move from connID.
//
// Postcondition: Rejections never mutate state. On acceptance the move is
// applied, the turn cursor advances past disconnected seats, and either
// StateUpdated or (on a terminal result) StateUpdated plus GameOver is
// broadcast.
func (s *Session) SubmitMove(connID string, mv rules.Move) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusInProgress {
		return ErrNotInProgress
	}
	// A connection without a seat is never the turn holder.
	if s.seats[s.turn].ConnID != connID {
		return ErrWrongTurn
	}
	marker := s.seats[s.turn].Marker
	if err := s.rules.Validate(s.state, mv, marker); err != nil {
		return fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	s.rules.Apply(s.state, mv, marker)

	if res, done := s.rules.Terminal(s.state); done {
		s.broadcastLocked(Event{
			Type:   EventStateUpdated,
			RoomID: s.id,
			Seats:  s.seatInfosLocked(),
			State:  s.state.View(),
			Turn:   s.turn,
		})
		s.finishLocked(res)
		return nil
	}

	if !s.advanceTurnLocked() {
		// Turn holder was the last connected seat and it just moved, so
		// this cannot normally happen; treat it as an abandoned room.
		s.finishLocked(rules.Result{Outcome: rules.OutcomeDraw, Marker: -1})
		return nil
	}
	s.broadcastLocked(Event{
		Type:   EventStateUpdated,
		RoomID: s.id,
		Seats:  s.seatInfosLocked(),
		State:  s.state.View(),
		Turn:   s.turn,
	})
	return nil
}

// Leave removes or disconnects connID's seat.
//
// While Waiting the seat is removed outright and capacity frees up. While
// InProgress the seat is marked Disconnected to preserve marker and seat
// index stability; if exactly one connected seat remains that seat wins by
// forfeit, and if none remain the room is force-finished with no winner.
// Leaving a room you never joined is a no-op.
func (s *Session) Leave(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, seat := range s.seats {
		if seat.ConnID == connID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	switch s.status {
	case StatusWaiting:
		s.seats = append(s.seats[:idx], s.seats[idx+1:]...)
		s.logger.Info("seat released", zap.String("conn_id", connID))
		if len(s.seats) == 0 {
			s.releaseLocked()
			return
		}
		s.broadcastLocked(Event{
			Type:   EventRoomUpdated,
			RoomID: s.id,
			Seats:  s.seatInfosLocked(),
		})

	case StatusInProgress:
		if !s.seats[idx].Connected {
			return
		}
		s.seats[idx].Connected = false
		s.logger.Info("seat disconnected",
			zap.String("conn_id", connID),
			zap.Int("seat", idx),
		)

		connected := s.connectedLocked()
		switch {
		case len(connected) == 1:
			s.finishLocked(rules.Result{
				Outcome: rules.OutcomeForfeit,
				Marker:  connected[0].Marker,
			})
		case len(connected) == 0:
			s.finishLocked(rules.Result{Outcome: rules.OutcomeDraw, Marker: -1})
		default:
			if s.turn == idx && !s.advanceTurnLocked() {
				s.finishLocked(rules.Result{Outcome: rules.OutcomeDraw, Marker: -1})
				return
			}
			s.broadcastLocked(Event{
				Type:   EventRoomUpdated,
				RoomID: s.id,
				Seats:  s.seatInfosLocked(),
				Turn:   s.turn,
			})
		}

	case StatusFinished:
		s.seats[idx].Connected = false
	}
}

// nextMarkerLocked returns the smallest marker index not held by any seat.
// Markers freed by a Waiting-phase leave are reused; markers held by
// disconnected in-game seats are not.
func (s *Session) nextMarkerLocked() int {
	used := make(map[int]bool, len(s.seats))
	for _, seat := range s.seats {
		used[seat.Marker] = true
	}
	for m := 0; ; m++ {
		if !used[m] {
			return m
		}
	}
}

// advanceTurnLocked rotates the turn cursor to the next connected seat.
// The walk is bounded by the seat count, so it terminates even when every
// seat is disconnected, in which case it returns false.
func (s *Session) advanceTurnLocked() bool {
	n := len(s.seats)
	for i := 0; i < n; i++ {
		s.turn = (s.turn + 1) % n
		if s.seats[s.turn].Connected {
			return true
		}
	}
	return false
}

// connectedLocked returns the currently connected seats.
func (s *Session) connectedLocked() []Seat {
	var out []Seat
	for _, seat := range s.seats {
		if seat.Connected {
			out = append(out, seat)
		}
	}
	return out
}

// seatInfosLocked builds the client-visible seat list.
func (s *Session) seatInfosLocked() []SeatInfo {
	infos := make([]SeatInfo, len(s.seats))
	for i, seat := range s.seats {
		infos[i] = SeatInfo{Index: i, Marker: seat.Marker, Connected: seat.Connected}
	}
	return infos
}

// finishLocked moves the session to Finished, broadcasts GameOver, and
// releases the session from the registry. Finished is terminal: no further
// move is ever applied.
func (s *Session) finishLocked(res rules.Result) {
	s.status = StatusFinished
	s.logger.Info("game over",
		zap.String("outcome", string(res.Outcome)),
		zap.Int("marker", res.Marker),
	)
	s.broadcastLocked(Event{
		Type:   EventGameOver,
		RoomID: s.id,
		Result: &res,
	})
	s.releaseLocked()
}

// releaseLocked schedules the session for removal from the registry,
// exactly once.
func (s *Session) releaseLocked() {
	if s.released {
		return
	}
	s.released = true
	if s.onFinished != nil {
		s.onFinished(s.id)
	}
}

// broadcastLocked sends ev to every connected seat. Delivery is
// fire-and-forget.
func (s *Session) broadcastLocked(ev Event) {
	for _, seat := range s.seats {
		if seat.Connected {
			s.bc.Send(seat.ConnID, ev)
		}
	}
}
