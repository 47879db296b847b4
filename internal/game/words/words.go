// Package words supplies secret words for word-guess rooms.
package words

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// defaultWords is the built-in list used when no list is configured.
var defaultWords = []string{"apple", "banana", "cherry", "dragon", "elephant"}

// RandSource is the randomness provider for word selection.
//
// Implementations MUST be safe for concurrent use.
type RandSource interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// cryptoSource implements RandSource using crypto/rand.
type cryptoSource struct{}

// NewCryptoSource returns a RandSource backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is uniformly distributed in
// [0, n).
func NewCryptoSource() RandSource {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "words: Intn called with n <= 0" if
// n <= 0. Panics if crypto/rand fails.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("words: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("words: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// ListSource picks uniformly from a fixed word list.
type ListSource struct {
	words []string
	rng   RandSource
}

// NewListSource creates a ListSource from list, lowercasing and trimming
// each entry. An empty list falls back to the built-in default words.
//
// Precondition: rng must be non-nil.
// Postcondition: Returns an error when any entry contains characters other
// than ASCII letters and spaces, or no letters at all.
func NewListSource(list []string, rng RandSource) (*ListSource, error) {
	if len(list) == 0 {
		list = defaultWords
	}
	normalized := make([]string, 0, len(list))
	for _, w := range list {
		word := strings.ToLower(strings.TrimSpace(w))
		hasLetter := false
		for _, r := range word {
			switch {
			case r >= 'a' && r <= 'z':
				hasLetter = true
			case r == ' ':
			default:
				return nil, fmt.Errorf("word %q contains unsupported character %q", w, r)
			}
		}
		if !hasLetter {
			return nil, fmt.Errorf("word %q contains no letters", w)
		}
		normalized = append(normalized, word)
	}
	return &ListSource{words: normalized, rng: rng}, nil
}

// Pick returns one word from the list, chosen uniformly at random.
func (s *ListSource) Pick() string {
	return s.words[s.rng.Intn(len(s.words))]
}

// Len returns the number of words available.
func (s *ListSource) Len() int {
	return len(s.words)
}
