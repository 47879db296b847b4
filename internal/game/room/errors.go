package room

import "errors"

// Rejection errors. All of these are recoverable-by-caller conditions:
// they are reported only to the originating connection and never mutate
// session or registry state.
var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrKindMismatch    = errors.New("room exists with a different game kind")
	ErrRoomFull        = errors.New("room is full")
	ErrAlreadySeated   = errors.New("connection already holds a seat")
	ErrNotInProgress   = errors.New("game is not in progress")
	ErrWrongTurn       = errors.New("not your turn")
	ErrIllegalMove     = errors.New("illegal move")
	ErrAllDisconnected = errors.New("all seats disconnected")
	ErrBadRequest      = errors.New("bad request")
)

// ReasonCode maps a rejection error to its wire code for
// OperationRejected events. Unrecognized errors map to "bad_request";
// malformed input is rejected, never fatal.
func ReasonCode(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, ErrKindMismatch):
		return "game_kind_mismatch"
	case errors.Is(err, ErrRoomFull):
		return "room_full"
	case errors.Is(err, ErrAlreadySeated):
		return "already_seated"
	case errors.Is(err, ErrNotInProgress):
		return "not_in_progress"
	case errors.Is(err, ErrWrongTurn):
		return "wrong_turn"
	case errors.Is(err, ErrIllegalMove):
		return "illegal_move"
	case errors.Is(err, ErrAllDisconnected):
		return "all_disconnected"
	default:
		return "bad_request"
	}
}
