// Package dice provides the randomness abstraction used by casting jitter,
// bite rolls, fish selection, and catch sizing.
package dice

// Source is the randomness provider for every gameplay roll.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float in [0, 1).
	Float64() float64
}

// Fixed is a deterministic Source that always returns the same fraction.
// Intn maps the fraction onto [0, n).
//
// Invariant: 0 <= F < 1.
type Fixed struct {
	F float64
}

// Intn returns floor(F * n).
//
// Precondition: n > 0.
func (f Fixed) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	v := int(f.F * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

// Float64 returns F.
func (f Fixed) Float64() float64 { return f.F }

// Sequence is a deterministic Source replaying Values in order and cycling.
// It is not safe for concurrent use and is intended for tests and replays.
type Sequence struct {
	Values []float64
	next   int
}

// Float64 returns the next value of the sequence.
//
// Precondition: len(Values) > 0.
func (s *Sequence) Float64() float64 {
	v := s.Values[s.next%len(s.Values)]
	s.next++
	return v
}

// Intn maps the next value of the sequence onto [0, n).
func (s *Sequence) Intn(n int) int {
	return Fixed{F: s.Float64()}.Intn(n)
}
