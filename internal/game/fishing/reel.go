package fishing

import (
	"math"

	"github.com/cory-johannsen/lurefish/internal/game/catalog"
)

// ReelIn registers reel input.
//
// Postcondition: hooked → reeling; in reeling the input window is refreshed.
// Any other stage returns ErrWrongStage.
func ReelIn(st State, p Params) (State, error) {
	switch st.Stage {
	case StageHooked:
		next := st
		next.Stage = StageReeling
		next.Timer = 0
		next.ReelInput = p.ReelInputWindow
		return next, nil
	case StageReeling:
		next := st
		next.ReelInput = p.ReelInputWindow
		return next, nil
	default:
		return st, ErrWrongStage
	}
}

// ReleaseReel stops reel input.
//
// Postcondition: in reeling the input window is cleared; other stages return ErrWrongStage.
func ReleaseReel(st State) (State, error) {
	if st.Stage != StageReeling {
		return st, ErrWrongStage
	}
	next := st
	next.ReelInput = 0
	return next, nil
}

// Relief returns the tension the gear sheds per second. A worn line sheds less: at
// durability 0 it keeps half of its strength's share.
func Relief(gear Gear, p Params) float64 {
	return gear.Reel.Smoothness*p.SmoothnessRelief + gear.Reel.Drag*p.DragRelief + LineStrength(gear.Line)*p.LineRelief
}

// LineStrength returns the line's strength scaled down by wear.
func LineStrength(line catalog.Line) float64 {
	wear := clamp(line.Durability, 0, catalog.MaxDurability) / catalog.MaxDurability
	return line.Strength * (0.5 + 0.5*wear)
}

// Tick advances a hooked or reeling fight by dt seconds.
//
// Precondition: dt > 0.
// Postcondition: tension stays in [0, MaxTension] and progress in [0, 100].
// Tension at or above BreakTension ends in failed with OutcomeLineSnapped; a hooked fish
// left without reel input for HookTimeout ends in failed with OutcomeEscaped; progress
// reaching 100 ends in caught. Other stages return ErrWrongStage.
func Tick(st State, dt float64, gear Gear, skills Skills, p Params) (State, error) {
	if st.Stage != StageHooked && st.Stage != StageReeling {
		return st, ErrWrongStage
	}
	fish := st.TargetFish
	next := st
	next.Timer += dt
	t := next.Timer

	next.FishPosition = Vec2{
		X: st.LurePosition.X + math.Sin(t/0.5)*50,
		Y: st.LurePosition.Y + math.Cos(t/0.7)*30,
	}
	next.FishStruggle = fish.Struggle * (0.75 + 0.25*math.Sin(t*fish.Speed))

	input := st.Stage == StageReeling && st.ReelInput > 0
	load := next.FishStruggle * p.TensionRate
	if input {
		load *= p.ReelLoadFactor
	}
	next.Tension = clamp(next.Tension+(load-Relief(gear, p))*dt, 0, next.MaxTension)

	if st.Stage == StageReeling {
		if input {
			rate := p.ProgressRate * gear.Reel.Speed * (1 + skills.Reeling*p.SkillMultiplier) / (1 + fish.Speed*p.SkillMultiplier)
			next.Progress += rate * dt
		} else {
			next.Progress -= p.ProgressDecay * dt
		}
		next.Progress = clamp(next.Progress, 0, 100)
		next.ReelInput = math.Max(0, st.ReelInput-dt)
	}

	switch {
	case next.Tension >= p.BreakTension():
		return Fail(next, OutcomeLineSnapped), nil
	case next.Stage == StageHooked && next.Timer >= p.HookTimeout:
		return Fail(next, OutcomeEscaped), nil
	case next.Progress >= 100:
		next.Stage = StageCaught
		next.Outcome = OutcomeLanded
		next.ReelInput = 0
		return next, nil
	}
	return next, nil
}

// Fail ends the fight.
//
// Postcondition: stage is failed with the given outcome and no target fish bound.
func Fail(st State, outcome Outcome) State {
	next := st
	next.Stage = StageFailed
	next.Outcome = outcome
	next.TargetFish = nil
	next.ReelInput = 0
	next.Timer = 0
	return next
}
