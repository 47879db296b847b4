package rules

import (
	"fmt"
	"sort"
	"strings"
)

// WordState is the puzzle state for one word-guess room.
//
// Invariant: secret is immutable after construction; missesLeft never
// increases.
type WordState struct {
	secret     string
	guessed    map[string]bool
	missesLeft int
	lastMarker int
}

// WordView is the client-visible projection of a WordState. The secret
// itself is never included.
type WordView struct {
	Masked     string   `json:"masked"`
	Guessed    []string `json:"guessed"`
	MissesLeft int      `json:"misses_left"`
}

// View returns the masked display, guessed letters in sorted order, and the
// remaining miss count.
func (s *WordState) View() any {
	letters := make([]string, 0, len(s.guessed))
	for l := range s.guessed {
		letters = append(letters, l)
	}
	sort.Strings(letters)
	return WordView{
		Masked:     s.Masked(),
		Guessed:    letters,
		MissesLeft: s.missesLeft,
	}
}

// Masked returns the derived display: each secret character is shown if it
// is a space or has been guessed, and replaced by '_' otherwise. Characters
// are joined with single spaces.
func (s *WordState) Masked() string {
	parts := make([]string, 0, len(s.secret))
	for _, r := range s.secret {
		ch := string(r)
		if r == ' ' || s.guessed[ch] {
			parts = append(parts, ch)
		} else {
			parts = append(parts, "_")
		}
	}
	return strings.Join(parts, " ")
}

// MissesLeft returns the remaining miss budget.
func (s *WordState) MissesLeft() int {
	return s.missesLeft
}

type wordGuess struct {
	secret string
	budget int
}

// NewWordGuess creates the rules for a masked-word guessing game. The
// secret is case-normalized; guessing is letter by letter against a miss
// budget.
//
// Precondition: missBudget >= 1.
// Postcondition: Returns an error when the secret contains no guessable
// letters.
func NewWordGuess(secret string, missBudget int) (Rules, error) {
	normalized := strings.ToLower(strings.TrimSpace(secret))
	hasLetter := false
	for _, r := range normalized {
		if r >= 'a' && r <= 'z' {
			hasLetter = true
		} else if r != ' ' {
			return nil, fmt.Errorf("secret contains unsupported character %q", r)
		}
	}
	if !hasLetter {
		return nil, fmt.Errorf("secret %q contains no letters", secret)
	}
	if missBudget < 1 {
		return nil, fmt.Errorf("miss budget must be >= 1, got %d", missBudget)
	}
	return &wordGuess{secret: normalized, budget: missBudget}, nil
}

// Initial returns the puzzle with no letters guessed and the full miss
// budget remaining.
func (w *wordGuess) Initial() State {
	return &WordState{
		secret:     w.secret,
		guessed:    make(map[string]bool),
		missesLeft: w.budget,
		lastMarker: -1,
	}
}

// Validate checks that mv.Letter is a single ASCII letter that has not been
// guessed yet. Comparison is case-normalized.
func (w *wordGuess) Validate(s State, mv Move, marker int) error {
	state := s.(*WordState)
	letter := normalizeLetter(mv.Letter)
	if letter == "" {
		return fmt.Errorf("guess %q is not a single letter", mv.Letter)
	}
	if state.guessed[letter] {
		return fmt.Errorf("letter %q was already guessed", letter)
	}
	return nil
}

// Apply records the guess. A letter absent from the secret consumes one
// miss.
func (w *wordGuess) Apply(s State, mv Move, marker int) {
	state := s.(*WordState)
	letter := normalizeLetter(mv.Letter)
	state.guessed[letter] = true
	state.lastMarker = marker
	if !strings.Contains(state.secret, letter) {
		state.missesLeft--
	}
}

// Terminal reports a win for the marker that completed the word, or a loss
// when the miss budget is exhausted. The win check runs first so a
// completing guess wins regardless of the remaining budget.
func (w *wordGuess) Terminal(s State) (Result, bool) {
	state := s.(*WordState)
	complete := true
	for _, r := range state.secret {
		if r == ' ' {
			continue
		}
		if !state.guessed[string(r)] {
			complete = false
			break
		}
	}
	if complete {
		return Result{Outcome: OutcomeWinner, Marker: state.lastMarker}, true
	}
	if state.missesLeft <= 0 {
		return Result{Outcome: OutcomeLoss, Marker: -1}, true
	}
	return Result{}, false
}

// normalizeLetter lowers and trims a guess, returning "" unless the result
// is exactly one ASCII letter.
func normalizeLetter(raw string) string {
	letter := strings.ToLower(strings.TrimSpace(raw))
	if len(letter) != 1 || letter[0] < 'a' || letter[0] > 'z' {
		return ""
	}
	return letter
}
