package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged gameplay rolls.
// Every roll is logged at debug level with its purpose and outcome.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Source returns the underlying randomness provider.
func (r *Roller) Source() Source {
	return r.src
}

// Float64 draws a value in [0, 1) for the given purpose.
func (r *Roller) Float64(purpose string) float64 {
	v := r.src.Float64()
	r.logger.Debug("roll",
		zap.String("purpose", purpose),
		zap.Float64("value", v),
	)
	return v
}

// Chance reports whether a roll in [0, 1) falls below p.
//
// Postcondition: always false when p <= 0; always true when p >= 1.
func (r *Roller) Chance(purpose string, p float64) bool {
	v := r.src.Float64()
	hit := v < p
	r.logger.Debug("chance roll",
		zap.String("purpose", purpose),
		zap.Float64("probability", p),
		zap.Float64("value", v),
		zap.Bool("hit", hit),
	)
	return hit
}

// Between draws a value in [lo, hi).
//
// Precondition: lo <= hi.
func (r *Roller) Between(purpose string, lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64(purpose)
}

// Pick selects an index in [0, len(weights)) with probability proportional to its weight.
// Non-positive weights are never picked.
//
// Postcondition: Returns -1 iff no weight is positive.
func (r *Roller) Pick(purpose string, weights []float64) int {
	idx := PickWeighted(r.src, weights)
	r.logger.Debug("weighted pick",
		zap.String("purpose", purpose),
		zap.Float64s("weights", weights),
		zap.Int("index", idx),
	)
	return idx
}

// PickWeighted selects an index in [0, len(weights)) with probability proportional
// to its weight, using a single Float64 draw from src.
//
// Postcondition: Returns -1 iff no weight is positive.
func PickWeighted(src Source, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	target := src.Float64() * total
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		if target < w {
			return i
		}
		target -= w
	}
	return last
}
