package fishing

import (
	"math"

	"github.com/cory-johannsen/lurefish/internal/game/catalog"
	"github.com/cory-johannsen/lurefish/internal/game/dice"
)

// Cast starts a new cycle from idle.
//
// Precondition: scene and roller must be non-nil.
// Postcondition: on success the stage is StageCasting, Cycle is incremented, and the
// distance lies in [MinCastDistance, MaxCastDistance]. Returns ErrWrongStage when st is
// not idle and ErrLureWorn when the lure has no durability left; st is returned unchanged
// with either error. Lure wear is applied by the caller.
func Cast(st State, gear Gear, skills Skills, env Environment, scene *catalog.Scene, p Params, roller *dice.Roller) (State, error) {
	if st.Stage != StageIdle {
		return st, ErrWrongStage
	}
	if gear.Lure.Durability <= 0 {
		return st, ErrLureWorn
	}

	skillBonus := skills.Casting * p.CastSkillBonus
	base := gear.Rod.CastingDistance + roller.Float64("cast distance")*p.CastDistanceJitter
	accuracy := clamp(gear.Rod.Accuracy-roller.Float64("cast accuracy")*p.CastAccuracyJitter+skillBonus, 0, 100)
	wind := env.WindSpeed * math.Cos(radians(env.WindDirection-90))
	distance := clamp(base+wind, p.MinCastDistance, p.MaxCastDistance)
	angle := radians(p.CastBaseAngle + (100-accuracy)*p.CastAngleSpread)

	next := Idle(st.Cycle+1, p)
	next.Stage = StageCasting
	next.CastDistance = distance
	next.CastAccuracy = accuracy
	next.LurePosition = LurePosition{
		X: p.OriginX + distance*math.Cos(angle)*4,
		Y: p.OriginY + distance*math.Sin(angle)*2,
	}
	next.LureVelocity = Vec2{X: math.Cos(angle) * 10, Y: math.Sin(angle) * 10}
	next.WaterDepth = scene.WaterDepth
	next.CurrentSpeed = scene.CurrentSpeed
	return next, nil
}

// Land settles the lure after the cast delay.
//
// Postcondition: casting → waiting with the lure at rest; any other stage returns ErrWrongStage.
func Land(st State) (State, error) {
	if st.Stage != StageCasting {
		return st, ErrWrongStage
	}
	next := st
	next.Stage = StageWaiting
	next.Timer = 0
	next.LureVelocity = Vec2{}
	next.LurePosition.Depth = math.Min(st.WaterDepth, 1+st.CastDistance/20)
	return next, nil
}

// Wait accounts dt seconds spent waiting for a bite.
//
// Postcondition: when the waiting time reaches timeout the cycle ends in idle with
// OutcomeNoBite; otherwise the stage is unchanged.
func Wait(st State, dt, timeout float64, p Params) (State, error) {
	if st.Stage != StageWaiting {
		return st, ErrWrongStage
	}
	next := st
	next.Timer += dt
	if next.Timer >= timeout {
		next.Outcome = OutcomeNoBite
		return Finish(next, p), nil
	}
	return next, nil
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
