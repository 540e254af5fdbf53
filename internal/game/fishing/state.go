// Package fishing implements the transition functions of the fishing state machine:
// idle → casting → waiting → hooked → reeling → caught|failed → idle.
//
// Every function is pure with respect to its inputs; timers and locking belong to
// the caller.
package fishing

import (
	"errors"

	"github.com/cory-johannsen/lurefish/internal/game/catalog"
)

// Stage is a fishing state machine stage.
type Stage string

const (
	StageIdle    Stage = "idle"
	StageCasting Stage = "casting"
	StageWaiting Stage = "waiting"
	StageHooked  Stage = "hooked"
	StageReeling Stage = "reeling"
	StageCaught  Stage = "caught"
	StageFailed  Stage = "failed"
)

// Outcome explains how a cycle ended in StageFailed or returned to idle early.
type Outcome string

const (
	OutcomeNone        Outcome = ""
	OutcomeLineSnapped Outcome = "line_snapped"
	OutcomeEscaped     Outcome = "escaped"
	OutcomeNoBite      Outcome = "no_bite"
	OutcomeLanded      Outcome = "landed"
)

var (
	// ErrWrongStage is returned when a transition is requested from a stage that does not accept it.
	ErrWrongStage = errors.New("fishing: transition not allowed in current stage")
	// ErrLureWorn is returned when casting with a lure whose durability is exhausted.
	ErrLureWorn = errors.New("fishing: lure is worn out")
)

// Vec2 is a point or velocity on the water plane.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LurePosition is the lure location including depth below the surface.
type LurePosition struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Depth float64 `json:"depth"`
}

// State is the transient state of one cast cycle. It is never persisted.
//
// Invariant: TargetFish is non-nil only in StageHooked, StageReeling and StageCaught;
// Tension is in [0, MaxTension]; Progress is in [0, 100].
type State struct {
	Stage        Stage         `json:"stage"`
	CastDistance float64       `json:"castDistance"`
	CastAccuracy float64       `json:"castAccuracy"`
	LurePosition LurePosition  `json:"lurePosition"`
	LureVelocity Vec2          `json:"lureVelocity"`
	TargetFish   *catalog.Fish `json:"targetFish"`
	FishPosition Vec2          `json:"fishPosition"`
	FishStruggle float64       `json:"fishStruggle"`
	Tension      float64       `json:"tension"`
	MaxTension   float64       `json:"maxTension"`
	Progress     float64       `json:"progress"`
	Timer        float64       `json:"timer"` // seconds spent in the current stage
	WaterDepth   float64       `json:"waterDepth"`
	CurrentSpeed float64       `json:"currentSpeed"`
	ReelInput    float64       `json:"reelInput"` // seconds of reel input remaining
	Outcome      Outcome       `json:"outcome"`
	Cycle        uint64        `json:"cycle"`
}

// Idle returns the idle baseline for the given cycle counter.
//
// Postcondition: every transient field is zeroed; Cycle is preserved.
func Idle(cycle uint64, p Params) State {
	return State{Stage: StageIdle, MaxTension: p.MaxTension, Cycle: cycle}
}

// Finish returns the idle baseline after a cycle, keeping the cycle counter and outcome.
func Finish(st State, p Params) State {
	next := Idle(st.Cycle, p)
	next.Outcome = st.Outcome
	return next
}

// Active reports whether the stage belongs to an ongoing cast cycle.
func (s Stage) Active() bool {
	return s != StageIdle
}

// Skills are the player skill levels that feed the fishing formulas.
type Skills struct {
	Fishing float64
	Casting float64
	Reeling float64
}

// Gear is the equipment in use for one cast.
type Gear struct {
	Rod  catalog.Rod
	Reel catalog.Reel
	Lure catalog.Lure
	Line catalog.Line
}

// Environment carries the conditions that affect a cast.
type Environment struct {
	WindSpeed     float64
	WindDirection float64
	Season        string
	Period        string
	// Multiplier is the product of the weather, period, and season bite multipliers.
	Multiplier float64
	// Script is the bite modifier returned by scene scripts; 1 when none.
	Script float64
}
