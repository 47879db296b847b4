// Package rules provides the pluggable rule engines for the game variants
// hosted by the room server: connector grids (n-in-a-row placement games,
// with and without gravity) and word guessing.
//
// A Rules value is immutable after construction. All mutable game state
// lives in the State it produces, which is owned exclusively by the
// session that created it.
package rules

import (
	"fmt"
)

// Game identifies a rule variant.
type Game string

const (
	// GameConnector is the n-in-a-row grid family. With Gravity set it
	// behaves like Connect Four (pieces drop to the lowest free row of a
	// column); without it pieces are placed on any free cell, like
	// tic-tac-toe.
	GameConnector Game = "connector"
	// GameWordGuess is masked-word guessing with a bounded miss budget.
	GameWordGuess Game = "wordguess"
)

// Kind fully describes a game variant and its parameters. Two rooms are
// compatible only when their Kinds match exactly.
type Kind struct {
	Game       Game `json:"game" mapstructure:"game"`
	Rows       int  `json:"rows,omitempty" mapstructure:"rows"`
	Cols       int  `json:"cols,omitempty" mapstructure:"cols"`
	RunLength  int  `json:"run_length,omitempty" mapstructure:"run_length"`
	Gravity    bool `json:"gravity,omitempty" mapstructure:"gravity"`
	MissBudget int  `json:"miss_budget,omitempty" mapstructure:"miss_budget"`
}

// Validate checks the Kind's parameters.
//
// Postcondition: Returns nil if a Rules value can be built from k.
func (k Kind) Validate() error {
	switch k.Game {
	case GameConnector:
		if k.Rows < 1 || k.Cols < 1 {
			return fmt.Errorf("board must be at least 1x1, got %dx%d", k.Rows, k.Cols)
		}
		if k.RunLength < 2 {
			return fmt.Errorf("run length must be >= 2, got %d", k.RunLength)
		}
		if k.RunLength > k.Rows && k.RunLength > k.Cols {
			return fmt.Errorf("run length %d cannot fit a %dx%d board", k.RunLength, k.Rows, k.Cols)
		}
		return nil
	case GameWordGuess:
		if k.MissBudget < 1 {
			return fmt.Errorf("miss budget must be >= 1, got %d", k.MissBudget)
		}
		return nil
	default:
		return fmt.Errorf("unknown game %q", k.Game)
	}
}

// Matches reports whether k and other describe the same game variant with
// the same parameters.
func (k Kind) Matches(other Kind) bool {
	return k == other
}

// Capacity resolves the seat capacity for this variant from an optional
// client hint (0 means "use the variant default").
//
// Postcondition: Returns a capacity in the variant's legal range, or an
// error when the hint is outside it.
func (k Kind) Capacity(hint int) (int, error) {
	switch k.Game {
	case GameConnector:
		if hint == 0 {
			return 2, nil
		}
		if hint < 2 || hint > 4 {
			return 0, fmt.Errorf("player count must be 2, 3, or 4, got %d", hint)
		}
		return hint, nil
	case GameWordGuess:
		if hint != 0 && hint != 2 {
			return 0, fmt.Errorf("word guess rooms hold exactly 2 players, got %d", hint)
		}
		return 2, nil
	default:
		return 0, fmt.Errorf("unknown game %q", k.Game)
	}
}

// Move is a client-submitted intent. Which fields are meaningful depends on
// the variant: gravity grids read Col, free-placement grids read Row and
// Col, word guessing reads Letter. A Move is ephemeral and never stored
// beyond its application.
type Move struct {
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Letter string `json:"letter,omitempty"`
}

// Outcome classifies a terminal result.
type Outcome string

const (
	OutcomeWinner  Outcome = "winner"
	OutcomeDraw    Outcome = "draw"
	OutcomeLoss    Outcome = "loss"
	OutcomeForfeit Outcome = "forfeit"
)

// Result is a terminal game result. Marker is the winning marker index for
// OutcomeWinner and OutcomeForfeit, and -1 otherwise.
type Result struct {
	Outcome Outcome `json:"outcome"`
	Marker  int     `json:"marker"`
}

// State holds the mutable game state for one room. Implementations are not
// safe for concurrent use; the owning session serializes access.
type State interface {
	// View returns the client-visible projection of the state. It must be
	// JSON-serializable and must never expose hidden information (such as
	// an unguessed secret word).
	View() any
}

// Rules is the capability set every variant implements.
//
// Invariant: a Rules value carries no mutable state. All per-room state
// lives in the State values it produces.
type Rules interface {
	// Initial returns a fresh State for a new room.
	Initial() State

	// Validate reports whether mv is legal for marker in state s.
	// It never mutates s.
	Validate(s State, mv Move, marker int) error

	// Apply applies mv for marker to s in place.
	//
	// Precondition: Validate(s, mv, marker) returned nil.
	Apply(s State, mv Move, marker int)

	// Terminal reports whether s is terminal, and the result if so.
	Terminal(s State) (Result, bool)
}

// New builds the Rules for k. Word-guess variants require the secret word
// chosen by the content-selection collaborator; grid variants ignore it.
//
// Precondition: k.Validate() returned nil.
func New(k Kind, secret string) (Rules, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}
	switch k.Game {
	case GameConnector:
		return NewConnector(k.Rows, k.Cols, k.RunLength, k.Gravity), nil
	case GameWordGuess:
		return NewWordGuess(secret, k.MissBudget)
	default:
		return nil, fmt.Errorf("unknown game %q", k.Game)
	}
}
