package room

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReasonCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrRoomNotFound, "room_not_found"},
		{ErrKindMismatch, "game_kind_mismatch"},
		{ErrRoomFull, "room_full"},
		{ErrAlreadySeated, "already_seated"},
		{ErrNotInProgress, "not_in_progress"},
		{ErrWrongTurn, "wrong_turn"},
		{ErrIllegalMove, "illegal_move"},
		{ErrAllDisconnected, "all_disconnected"},
		{ErrBadRequest, "bad_request"},
		{errors.New("something else"), "bad_request"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ReasonCode(tt.err))
	}
}

func TestReasonCode_SeesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("%w: cell (1,1) is occupied", ErrIllegalMove)
	assert.Equal(t, "illegal_move", ReasonCode(wrapped))
}
