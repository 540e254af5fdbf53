package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

// lockedSource is a PCG generator guarded for concurrent use by the game timers
// and the environment clock.
type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource returns a concurrency-safe Source. A non-zero seed replays the same
// sequence of rolls every run; seed 0 draws a seed from the operating system.
//
// Postcondition: Every value returned by Intn is in [0, n); every Float64 is in [0, 1).
func NewSource(seed uint64) Source {
	if seed == 0 {
		seed = randomSeed()
	}
	return &lockedSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func randomSeed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic("dice: reading seed: " + err.Error())
	}
	return binary.LittleEndian.Uint64(b[:]) | 1
}

// Intn panics with "dice: Intn called with n <= 0" when n <= 0.
func (s *lockedSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}
