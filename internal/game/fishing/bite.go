package fishing

import (
	"github.com/cory-johannsen/lurefish/internal/game/catalog"
	"github.com/cory-johannsen/lurefish/internal/game/dice"
)

// LureEffectiveness returns the lure's factor for the water type, scaled down as it wears:
// a fully worn lure keeps half its effectiveness.
func LureEffectiveness(lure catalog.Lure, water catalog.WaterType) float64 {
	wear := clamp(lure.Durability, 0, catalog.MaxDurability) / catalog.MaxDurability
	return lure.Effectiveness.For(water) * (0.5 + 0.5*wear)
}

// BiteChance returns the probability of a bite on one bite check.
//
// A script modifier of 0 suppresses bites entirely.
//
// Postcondition: result is in [0, MaxBiteChance].
func BiteChance(gear Gear, skills Skills, env Environment, scene *catalog.Scene, weather string, p Params) float64 {
	chance := p.BaseBiteChance *
		env.Multiplier *
		scene.BiteRate(weather) *
		LureEffectiveness(gear.Lure, scene.Type) *
		env.Script *
		(1 + skills.Fishing*p.SkillMultiplier)
	return clamp(chance, 0, p.MaxBiteChance)
}

// SelectFish picks the species that bites, or nil when no species of the scene is
// active in the current season and period.
//
// Candidates are the scene whitelist filtered by ActiveIn; each is weighted by its
// rarity weight, multiplied by PreferredBaitBonus when it prefers the lure type.
func SelectFish(cat *catalog.Catalog, scene *catalog.Scene, lure catalog.Lure, env Environment, p Params, roller *dice.Roller) *catalog.Fish {
	var candidates []*catalog.Fish
	var weights []float64
	for _, f := range cat.SceneFish(scene) {
		if !f.ActiveIn(env.Season, env.Period) {
			continue
		}
		w := cat.RarityWeight(f.Rarity)
		if f.Prefers(lure.Type) {
			w *= p.PreferredBaitBonus
		}
		candidates = append(candidates, f)
		weights = append(weights, w)
	}
	idx := roller.Pick("fish selection", weights)
	if idx < 0 {
		return nil
	}
	return candidates[idx]
}

// Hook binds fish to the waiting lure.
//
// Precondition: fish must be non-nil.
// Postcondition: waiting → hooked with zero tension and progress; other stages return ErrWrongStage.
func Hook(st State, fish *catalog.Fish, p Params) (State, error) {
	if st.Stage != StageWaiting {
		return st, ErrWrongStage
	}
	next := st
	next.Stage = StageHooked
	next.TargetFish = fish
	next.Timer = 0
	next.Tension = 0
	next.Progress = 0
	next.MaxTension = p.MaxTension
	next.FishPosition = Vec2{X: st.LurePosition.X, Y: st.LurePosition.Y}
	next.FishStruggle = fish.Struggle
	return next, nil
}
