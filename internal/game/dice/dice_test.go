package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/lurefish/internal/game/dice"
)

func TestSource_InRange(t *testing.T) {
	for _, seed := range []uint64{0, 42} {
		src := dice.NewSource(seed)
		for i := 0; i < 1000; i++ {
			v := src.Intn(6)
			assert.GreaterOrEqual(t, v, 0)
			assert.Less(t, v, 6)
			f := src.Float64()
			assert.GreaterOrEqual(t, f, 0.0)
			assert.Less(t, f, 1.0)
		}
	}
}

func TestSource_SeedReplays(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64Min(1).Draw(rt, "seed")
		a, b := dice.NewSource(seed), dice.NewSource(seed)
		for i := 0; i < 20; i++ {
			if a.Float64() != b.Float64() || a.Intn(100) != b.Intn(100) {
				rt.Fatalf("seed %d diverged at roll %d", seed, i)
			}
		}
	})
}

func TestSource_Intn_PanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { dice.NewSource(1).Intn(0) })
}

func TestFixed_Intn(t *testing.T) {
	assert.Equal(t, 0, dice.Fixed{F: 0}.Intn(10))
	assert.Equal(t, 5, dice.Fixed{F: 0.5}.Intn(10))
	assert.Equal(t, 9, dice.Fixed{F: 0.999999}.Intn(10))
	assert.Panics(t, func() { dice.Fixed{}.Intn(0) })
}

func TestSequence_Cycles(t *testing.T) {
	s := &dice.Sequence{Values: []float64{0.1, 0.2}}
	assert.Equal(t, 0.1, s.Float64())
	assert.Equal(t, 0.2, s.Float64())
	assert.Equal(t, 0.1, s.Float64())
}

func TestRoller_Chance_Bounds(t *testing.T) {
	r := dice.NewLoggedRoller(dice.Fixed{F: 0.5}, zap.NewNop())
	assert.True(t, r.Chance("bite", 0.6))
	assert.False(t, r.Chance("bite", 0.5))
	assert.False(t, r.Chance("bite", 0))
}

func TestRoller_Between(t *testing.T) {
	r := dice.NewLoggedRoller(dice.Fixed{F: 0.25}, zap.NewNop())
	assert.InDelta(t, 15.0, r.Between("wind", 10, 30), 1e-9)
}

func TestPickWeighted_SkipsNonPositive(t *testing.T) {
	assert.Equal(t, -1, dice.PickWeighted(dice.Fixed{F: 0.3}, nil))
	assert.Equal(t, -1, dice.PickWeighted(dice.Fixed{F: 0.3}, []float64{0, -1}))
	assert.Equal(t, 1, dice.PickWeighted(dice.Fixed{F: 0.0}, []float64{0, 3, 1}))
	assert.Equal(t, 2, dice.PickWeighted(dice.Fixed{F: 0.9}, []float64{0, 3, 1}))
}

// Property: PickWeighted never returns an index whose weight is not positive.
func TestPickWeighted_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		weights := rapid.SliceOfN(rapid.Float64Range(-5, 10), 1, 12).Draw(rt, "weights")
		f := rapid.Float64Range(0, 0.999999).Draw(rt, "f")

		idx := dice.PickWeighted(dice.Fixed{F: f}, weights)

		anyPositive := false
		for _, w := range weights {
			if w > 0 {
				anyPositive = true
			}
		}
		if !anyPositive {
			assert.Equal(rt, -1, idx)
			return
		}
		if assert.GreaterOrEqual(rt, idx, 0) {
			assert.Greater(rt, weights[idx], 0.0, "picked index must carry a positive weight")
		}
	})
}
