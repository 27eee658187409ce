package integrations

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// UniqueIDGenerator mints opaque unique strings. Used for ballot
// confirmations and any other caller-facing identifier that must not
// leak internal surrogate keys.
type UniqueIDGenerator interface {
	Generate() string
}

// UUIDGenerator is the production UniqueIDGenerator, minting
// time-ordered UUIDv7 strings the same way the teacher's handlers mint
// ticket and event ids.
type UUIDGenerator struct{}

// Generate returns a new UUIDv7 string, falling back to UUIDv4 on the
// vanishingly rare entropy-read failure.
func (UUIDGenerator) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// DeterministicIDGenerator is a test double producing a predictable,
// monotonically increasing sequence instead of random UUIDs.
type DeterministicIDGenerator struct {
	prefix  string
	counter int64
}

// NewDeterministicIDGenerator returns a generator that yields
// "<prefix>-1", "<prefix>-2", ... in call order.
func NewDeterministicIDGenerator(prefix string) *DeterministicIDGenerator {
	return &DeterministicIDGenerator{prefix: prefix}
}

// Generate returns the next id in sequence.
func (g *DeterministicIDGenerator) Generate() string {
	n := atomic.AddInt64(&g.counter, 1)
	return fmt.Sprintf("%s-%d", g.prefix, n)
}
