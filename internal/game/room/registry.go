package room

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/parlor/internal/game/rules"
)

// WordSource supplies the secret word for a new word-guess room. Content
// selection is a collaborator of the registry, not part of it.
type WordSource interface {
	Pick() string
}

// Registry is the process-wide directory of live sessions. It exclusively
// owns the roomID -> Session mapping; no two sessions ever share mutable
// state. Registry critical sections are short lookups and never enclose
// session logic, so registry operations are never blocked by slow game
// code.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	bc        Broadcaster
	words     WordSource
	roomIDLen int
	logger    *zap.Logger
}

// NewRegistry creates an empty registry.
//
// Precondition: bc and logger must be non-nil; roomIDLen must be in
// [4, 32]. words may be nil when no word-guess rooms will be created.
func NewRegistry(bc Broadcaster, words WordSource, roomIDLen int, logger *zap.Logger) *Registry {
	return &Registry{
		sessions:  make(map[string]*Session),
		bc:        bc,
		words:     words,
		roomIDLen: roomIDLen,
		logger:    logger,
	}
}

// CreateOrGet returns the session for roomID, constructing it when absent.
// The boolean reports whether a new session was created.
//
// Postcondition: Returns ErrKindMismatch when an existing session's kind
// differs from the requested one, or ErrBadRequest when the kind or
// capacity hint is invalid or the hint conflicts with an existing room's
// capacity. A new session starts Waiting with no seats.
func (r *Registry) CreateOrGet(roomID string, kind rules.Kind, capacityHint int) (*Session, bool, error) {
	if err := kind.Validate(); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	capacity, err := kind.Capacity(capacityHint)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	r.mu.RLock()
	existing, ok := r.sessions[roomID]
	r.mu.RUnlock()
	if ok {
		return matchExisting(existing, kind, capacityHint)
	}

	// Build the rules outside the lock; the work is discarded on the rare
	// lost race below.
	var secret string
	if kind.Game == rules.GameWordGuess {
		if r.words == nil {
			return nil, false, fmt.Errorf("%w: no word source configured", ErrBadRequest)
		}
		secret = r.words.Pick()
	}
	engine, err := rules.New(kind, secret)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	r.mu.Lock()
	if existing, ok := r.sessions[roomID]; ok {
		r.mu.Unlock()
		return matchExisting(existing, kind, capacityHint)
	}
	sess := NewSession(roomID, kind, engine, capacity, r.bc,
		r.logger.With(zap.String("room_id", roomID), zap.String("game", string(kind.Game))),
		r.Remove,
	)
	r.sessions[roomID] = sess
	r.mu.Unlock()

	r.logger.Info("room created",
		zap.String("room_id", roomID),
		zap.String("game", string(kind.Game)),
		zap.Int("capacity", capacity),
	)
	return sess, true, nil
}

// matchExisting checks a join request against the session already holding
// the room id. The kind must match exactly, and an explicit capacity hint
// must match the capacity the room was created with; a zero hint accepts
// whatever the room holds.
func matchExisting(existing *Session, kind rules.Kind, capacityHint int) (*Session, bool, error) {
	if !existing.Kind().Matches(kind) {
		return nil, false, ErrKindMismatch
	}
	if capacityHint != 0 && existing.Capacity() != capacityHint {
		return nil, false, fmt.Errorf("%w: room holds %d players, requested %d",
			ErrBadRequest, existing.Capacity(), capacityHint)
	}
	return existing, false, nil
}

// Get returns the session for roomID.
//
// Postcondition: Returns (session, nil) or (nil, ErrRoomNotFound).
func (r *Registry) Get(roomID string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return sess, nil
}

// Remove deletes the session for roomID. Removing an absent ID is a no-op.
func (r *Registry) Remove(roomID string) {
	r.mu.Lock()
	_, ok := r.sessions[roomID]
	delete(r.sessions, roomID)
	r.mu.Unlock()
	if ok {
		r.logger.Info("room removed", zap.String("room_id", roomID))
	}
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// NewRoomID generates a short room identifier that is not currently in
// use. IDs are hex prefixes of a v4 UUID, matching the short join codes
// players type.
func (r *Registry) NewRoomID() string {
	for {
		id := strings.ReplaceAll(uuid.NewString(), "-", "")[:r.roomIDLen]
		r.mu.RLock()
		_, exists := r.sessions[id]
		r.mu.RUnlock()
		if !exists {
			return id
		}
	}
}
