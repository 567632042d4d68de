// Package match generates Secret Santa assignments: a derangement over a
// set of participant identifiers, so that everyone gives exactly one gift,
// receives exactly one gift, and nobody draws themselves.
package match

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

// maxShuffleAttempts bounds the rejection-sampling loop. Each uniform
// shuffle is a valid derangement with probability approaching 1/e, so 100
// attempts fail with probability around (1-1/e)^100 — never in practice.
const maxShuffleAttempts = 100

// ErrTooFewMembers is returned when fewer than two identifiers are supplied.
// A derangement needs at least two elements.
var ErrTooFewMembers = errors.New("match: need at least 2 members")

// Pair is one giver→receiver assignment.
type Pair struct {
	Giver    string
	Receiver string
}

// Engine produces derangements using an injectable random source, so tests
// can seed it deterministically. The zero value is not usable; construct
// with New or NewSeeded. Safe for concurrent use: one Engine is shared by
// every HTTP handler and the scheduler goroutine.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns an Engine seeded from the clock. Fairness, not secrecy, is
// the requirement here, so math/rand is sufficient.
func New() *Engine {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns an Engine with a deterministic random source.
func NewSeeded(seed int64) *Engine {
	return &Engine{rng: rand.New(rand.NewSource(seed))}
}

// Derange returns a permutation of ids with no fixed points: position i of
// the result is the receiver assigned to giver ids[i], and it is never
// ids[i] itself.
//
// For two members the only derangement is the swap, returned directly.
// Larger sets use rejection sampling over uniform shuffles; if every
// attempt produces a fixed point the engine falls back to a deterministic
// cyclic rotation, trading unpredictability for guaranteed termination.
func (e *Engine) Derange(ids []string) ([]string, error) {
	n := len(ids)
	if n < 2 {
		return nil, ErrTooFewMembers
	}

	if n == 2 {
		return []string{ids[1], ids[0]}, nil
	}

	// rand.Rand is not safe for concurrent use.
	e.mu.Lock()
	defer e.mu.Unlock()

	for attempt := 0; attempt < maxShuffleAttempts; attempt++ {
		shuffled := make([]string, n)
		copy(shuffled, ids)
		e.rng.Shuffle(n, func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		if isDerangement(ids, shuffled) {
			return shuffled, nil
		}
	}

	return rotate(ids), nil
}

// Pairs runs Derange and zips the input with the result, preserving the
// giver order of ids.
func (e *Engine) Pairs(ids []string) ([]Pair, error) {
	receivers, err := e.Derange(ids)
	if err != nil {
		return nil, err
	}

	pairs := make([]Pair, len(ids))
	for i, giver := range ids {
		pairs[i] = Pair{Giver: giver, Receiver: receivers[i]}
	}
	return pairs, nil
}

func isDerangement(original, shuffled []string) bool {
	for i := range original {
		if original[i] == shuffled[i] {
			return false
		}
	}
	return true
}

// rotate maps position i to position i+1 mod n: [A,B,C,D] → [B,C,D,A].
// Valid for any n >= 2 and needs no randomness.
func rotate(ids []string) []string {
	out := make([]string, 0, len(ids))
	out = append(out, ids[1:]...)
	return append(out, ids[0])
}
