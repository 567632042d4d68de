// Package invite generates the public codes that let people join a dynamic
// draw without an account.
package invite

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// maxAttempts bounds collision retries. With 18x18 word pairs and 900
// numbers the space holds ~290k codes, so collisions are rare until the
// table is enormous.
const maxAttempts = 5

var adjectives = []string{
	"jolly", "merry", "festive", "bright", "shiny", "sparkly",
	"cheerful", "happy", "cozy", "magical", "snowy", "frosty",
	"gleaming", "twinkling", "radiant", "dazzling", "glowing", "beaming",
}

var nouns = []string{
	"reindeer", "snowman", "gift", "star", "bell", "tree",
	"santa", "elf", "candy", "sleigh", "angel", "wreath",
	"snowflake", "gingerbread", "stocking", "ornament", "mistletoe", "carol",
}

// CodeStore is the lookup the generator needs to detect collisions.
type CodeStore interface {
	// CodeExists reports whether an invite code is already taken.
	CodeExists(code string) (bool, error)
}

// Generator produces memorable invite codes in the form
// adjective-noun-number (e.g. "jolly-reindeer-742"). Safe for concurrent
// use: one Generator serves every request handler.
type Generator struct {
	store CodeStore

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Generator backed by the given store.
func New(store CodeStore) *Generator {
	return NewSeeded(store, time.Now().UnixNano())
}

// NewSeeded creates a Generator with a deterministic random source.
func NewSeeded(store CodeStore, seed int64) *Generator {
	return &Generator{store: store, rng: rand.New(rand.NewSource(seed))}
}

// Generate returns a code not currently present in the store. It gives up
// after a bounded number of collisions rather than looping forever.
func (g *Generator) Generate() (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code := g.newCode()

		exists, err := g.store.CodeExists(code)
		if err != nil {
			return "", fmt.Errorf("check invite code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique invite code after %d attempts", maxAttempts)
}

// newCode draws one candidate. rand.Rand is not safe for concurrent use.
func (g *Generator) newCode() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fmt.Sprintf("%s-%s-%d",
		adjectives[g.rng.Intn(len(adjectives))],
		nouns[g.rng.Intn(len(nouns))],
		100+g.rng.Intn(900),
	)
}
