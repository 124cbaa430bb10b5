// Package entropy provides uniform random index selection.
// Production code draws from crypto/rand; tests can use a seeded source.
package entropy

import (
	"crypto/rand"
	"log/slog"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

// Source picks an index uniformly from [0, n).
type Source interface {
	IntN(n int) int
}

// Crypto draws indices from crypto/rand.
type Crypto struct{}

// IntN returns a uniform int in [0, n). Panics if n <= 0.
func (Crypto) IntN(n int) int {
	if n <= 0 {
		panic("entropy: invalid argument to IntN")
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// Should never happen; fall back to the runtime generator.
		slog.Warn("crypto/rand read failed, using math/rand", "error", err)
		return mrand.IntN(n)
	}
	return int(v.Int64())
}

// Seeded is a deterministic Source for tests and reproducible runs.
type Seeded struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeeded creates a Seeded source.
func NewSeeded(seed uint64) *Seeded {
	return &Seeded{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *Seeded) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Default is the Source used when none is configured.
var Default Source = Crypto{}
