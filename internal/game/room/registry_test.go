package room

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/parlor/internal/game/rules"
)

type fixedWords struct{ word string }

func (f fixedWords) Pick() string { return f.word }

func newRegistry(t *testing.T, words WordSource) *Registry {
	t.Helper()
	return NewRegistry(&recordingBroadcaster{}, words, 6, zaptest.NewLogger(t))
}

func TestRegistry_CreateOrGet(t *testing.T) {
	reg := newRegistry(t, nil)
	kind := rules.Kind{Game: rules.GameConnector, Rows: 6, Cols: 7, RunLength: 4, Gravity: true}

	sess, created, err := reg.CreateOrGet("abc123", kind, 0)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "abc123", sess.ID())
	assert.Equal(t, StatusWaiting, sess.Status())
	assert.Equal(t, 1, reg.Count())

	again, created, err := reg.CreateOrGet("abc123", kind, 0)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, sess, again)
	assert.Equal(t, 1, reg.Count())
}

func TestRegistry_CreateOrGetKindMismatch(t *testing.T) {
	reg := newRegistry(t, fixedWords{word: "cat"})
	connector := rules.Kind{Game: rules.GameConnector, Rows: 6, Cols: 7, RunLength: 4, Gravity: true}
	wordguess := rules.Kind{Game: rules.GameWordGuess, MissBudget: 6}

	_, _, err := reg.CreateOrGet("abc123", connector, 0)
	require.NoError(t, err)

	_, _, err = reg.CreateOrGet("abc123", wordguess, 0)
	assert.ErrorIs(t, err, ErrKindMismatch)

	// Same game, different geometry is still a mismatch.
	small := rules.Kind{Game: rules.GameConnector, Rows: 3, Cols: 3, RunLength: 3}
	_, _, err = reg.CreateOrGet("abc123", small, 0)
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestRegistry_CapacityHintMismatch(t *testing.T) {
	reg := newRegistry(t, nil)
	kind := rules.Kind{Game: rules.GameConnector, Rows: 6, Cols: 7, RunLength: 4, Gravity: true}

	sess, _, err := reg.CreateOrGet("abc123", kind, 4)
	require.NoError(t, err)
	require.Equal(t, 4, sess.Capacity())

	// An explicit hint that disagrees with the room's capacity is rejected;
	// omitting the hint accepts whatever the room holds.
	_, _, err = reg.CreateOrGet("abc123", kind, 2)
	assert.ErrorIs(t, err, ErrBadRequest)

	again, created, err := reg.CreateOrGet("abc123", kind, 0)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, sess, again)

	again, _, err = reg.CreateOrGet("abc123", kind, 4)
	require.NoError(t, err)
	assert.Same(t, sess, again)
}

func TestRegistry_CreateOrGetBadRequest(t *testing.T) {
	reg := newRegistry(t, nil)

	_, _, err := reg.CreateOrGet("abc123", rules.Kind{Game: "checkers"}, 0)
	assert.ErrorIs(t, err, ErrBadRequest)

	kind := rules.Kind{Game: rules.GameConnector, Rows: 6, Cols: 7, RunLength: 4, Gravity: true}
	_, _, err = reg.CreateOrGet("abc123", kind, 9)
	assert.ErrorIs(t, err, ErrBadRequest)

	// Word-guess rooms need a word source.
	_, _, err = reg.CreateOrGet("abc123", rules.Kind{Game: rules.GameWordGuess, MissBudget: 6}, 0)
	assert.ErrorIs(t, err, ErrBadRequest)

	assert.Equal(t, 0, reg.Count(), "rejected creations leave no session behind")
}

func TestRegistry_WordGuessRoomDrawsFromSource(t *testing.T) {
	reg := newRegistry(t, fixedWords{word: "cat"})
	kind := rules.Kind{Game: rules.GameWordGuess, MissBudget: 6}

	sess, created, err := reg.CreateOrGet("word01", kind, 0)
	require.NoError(t, err)
	assert.True(t, created)

	_, err = sess.Join("alice")
	require.NoError(t, err)
	_, err = sess.Join("bob")
	require.NoError(t, err)
	require.Equal(t, StatusInProgress, sess.Status())

	// The seeded secret is "cat", so three correct guesses end the game.
	require.NoError(t, sess.SubmitMove("alice", rules.Move{Letter: "c"}))
	require.NoError(t, sess.SubmitMove("bob", rules.Move{Letter: "a"}))
	require.NoError(t, sess.SubmitMove("alice", rules.Move{Letter: "t"}))
	assert.Equal(t, StatusFinished, sess.Status())
}

func TestRegistry_GetAndRemove(t *testing.T) {
	reg := newRegistry(t, nil)
	kind := rules.Kind{Game: rules.GameConnector, Rows: 6, Cols: 7, RunLength: 4, Gravity: true}

	_, err := reg.Get("missing")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	sess, _, err := reg.CreateOrGet("abc123", kind, 0)
	require.NoError(t, err)

	got, err := reg.Get("abc123")
	require.NoError(t, err)
	assert.Same(t, sess, got)

	reg.Remove("abc123")
	_, err = reg.Get("abc123")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	// Removing twice is harmless.
	reg.Remove("abc123")
	assert.Equal(t, 0, reg.Count())
}

func TestRegistry_FinishedSessionIsReleased(t *testing.T) {
	reg := newRegistry(t, nil)
	kind := rules.Kind{Game: rules.GameConnector, Rows: 3, Cols: 3, RunLength: 3}

	sess, _, err := reg.CreateOrGet("abc123", kind, 0)
	require.NoError(t, err)
	_, err = sess.Join("alice")
	require.NoError(t, err)
	_, err = sess.Join("bob")
	require.NoError(t, err)

	// A forfeit ends the game and the registry forgets the room.
	sess.Leave("alice")
	require.Equal(t, StatusFinished, sess.Status())
	_, err = reg.Get("abc123")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	// The freed ID can host a fresh room of a different kind.
	fresh, created, err := reg.CreateOrGet("abc123", rules.Kind{Game: rules.GameConnector, Rows: 6, Cols: 7, RunLength: 4, Gravity: true}, 0)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, StatusWaiting, fresh.Status())
}

func TestRegistry_EmptiedWaitingRoomIsReleased(t *testing.T) {
	reg := newRegistry(t, nil)
	kind := rules.Kind{Game: rules.GameConnector, Rows: 6, Cols: 7, RunLength: 4, Gravity: true}

	sess, _, err := reg.CreateOrGet("abc123", kind, 0)
	require.NoError(t, err)
	_, err = sess.Join("alice")
	require.NoError(t, err)

	sess.Leave("alice")
	_, err = reg.Get("abc123")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRegistry_NewRoomID(t *testing.T) {
	reg := newRegistry(t, nil)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := reg.NewRoomID()
		assert.Len(t, id, 6)
		assert.Regexp(t, "^[0-9a-f]+$", id)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 90, "IDs are effectively unique")
}

func TestRegistry_ConcurrentCreateOrGetSingleSession(t *testing.T) {
	reg := newRegistry(t, nil)
	kind := rules.Kind{Game: rules.GameConnector, Rows: 6, Cols: 7, RunLength: 4, Gravity: true}

	const workers = 16
	sessions := make([]*Session, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess, _, err := reg.CreateOrGet("race01", kind, 0)
			assert.NoError(t, err)
			sessions[i] = sess
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Same(t, sessions[0], sessions[i])
	}
	assert.Equal(t, 1, reg.Count())
}

func TestRegistry_ConcurrentDistinctRooms(t *testing.T) {
	reg := newRegistry(t, nil)
	kind := rules.Kind{Game: rules.GameConnector, Rows: 6, Cols: 7, RunLength: 4, Gravity: true}

	const rooms = 20
	var wg sync.WaitGroup
	for i := 0; i < rooms; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := reg.CreateOrGet(fmt.Sprintf("room%02d", i), kind, 0)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, rooms, reg.Count())
}
