package fishing

import (
	"math"

	"github.com/cory-johannsen/lurefish/internal/game/catalog"
	"github.com/cory-johannsen/lurefish/internal/game/dice"
)

// Catch is the sampled result of landing a fish.
type Catch struct {
	Fish   *catalog.Fish
	Weight float64 // kg
	Size   float64 // cm
	Value  int
	Exp    int
}

// ResolveCatch samples weight, size, value, and experience for fish.
//
// Rarer fish skew toward the heavy end of their range: the uniform draw u is
// reshaped to u^(1/(1+tier·RaritySizeSkew)).
//
// Precondition: fish must be non-nil and valid.
// Postcondition: Weight is in [fish.MinSize, fish.MaxSize]; Value >= 1; Exp >= 0.
func ResolveCatch(fish *catalog.Fish, p Params, roller *dice.Roller) Catch {
	tier := math.Max(0, float64(fish.Rarity.Tier()))
	u := roller.Float64("catch weight")
	r := math.Pow(u, 1/(1+tier*p.RaritySizeSkew))

	weight := round(fish.MinSize+(fish.MaxSize-fish.MinSize)*r, 2)
	weight = clamp(weight, fish.MinSize, fish.MaxSize)
	size := round(math.Cbrt(weight)*p.SizeFactor, 1)

	value := int(math.Round(float64(fish.BaseValue) * weight / fish.MeanSize()))
	if value < 1 {
		value = 1
	}
	return Catch{
		Fish:   fish,
		Weight: weight,
		Size:   size,
		Value:  value,
		Exp:    int(math.Floor(float64(value) * p.ExpPerValue)),
	}
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
