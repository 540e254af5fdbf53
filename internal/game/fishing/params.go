package fishing

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Params holds every tunable coefficient of the fishing formulas.
type Params struct {
	CastSkillBonus     float64
	CastDistanceJitter float64
	CastAccuracyJitter float64
	MinCastDistance    float64
	MaxCastDistance    float64
	CastBaseAngle      float64 // degrees
	CastAngleSpread    float64 // degrees per point of missing accuracy
	OriginX            float64
	OriginY            float64
	CastLureWear       float64

	BaseBiteChance     float64
	MaxBiteChance      float64
	SkillMultiplier    float64
	PreferredBaitBonus float64

	MaxTension       float64
	BreakThreshold   float64 // fraction of MaxTension
	TensionRate      float64
	ReelLoadFactor   float64
	SmoothnessRelief float64
	DragRelief       float64
	LineRelief       float64
	ProgressRate     float64
	ProgressDecay    float64
	HookTimeout      float64 // seconds
	ReelInputWindow  float64 // seconds

	RaritySizeSkew float64
	SizeFactor     float64
	ExpPerValue    float64
	FailLureWear   float64
	FailLineWear   float64
}

// DefaultParams returns the balance shipped with the game.
func DefaultParams() Params {
	return Params{
		CastSkillBonus:     10,
		CastDistanceJitter: 20,
		CastAccuracyJitter: 20,
		MinCastDistance:    20,
		MaxCastDistance:    100,
		CastBaseAngle:      -60,
		CastAngleSpread:    0.6,
		OriginX:            400,
		OriginY:            300,
		CastLureWear:       1,

		BaseBiteChance:     0.15,
		MaxBiteChance:      0.9,
		SkillMultiplier:    0.1,
		PreferredBaitBonus: 1.5,

		MaxTension:       100,
		BreakThreshold:   0.95,
		TensionRate:      3,
		ReelLoadFactor:   1.5,
		SmoothnessRelief: 1.5,
		DragRelief:       1,
		LineRelief:       0.02,
		ProgressRate:     2,
		ProgressDecay:    3,
		HookTimeout:      5,
		ReelInputWindow:  0.5,

		RaritySizeSkew: 0.25,
		SizeFactor:     30,
		ExpPerValue:    0.5,
		FailLureWear:   5,
		FailLineWear:   10,
	}
}

// fields maps the snake_case override names to the coefficients they set.
func (p *Params) fields() map[string]*float64 {
	return map[string]*float64{
		"cast_skill_bonus":     &p.CastSkillBonus,
		"cast_distance_jitter": &p.CastDistanceJitter,
		"cast_accuracy_jitter": &p.CastAccuracyJitter,
		"min_cast_distance":    &p.MinCastDistance,
		"max_cast_distance":    &p.MaxCastDistance,
		"cast_base_angle":      &p.CastBaseAngle,
		"cast_angle_spread":    &p.CastAngleSpread,
		"origin_x":             &p.OriginX,
		"origin_y":             &p.OriginY,
		"cast_lure_wear":       &p.CastLureWear,
		"base_bite_chance":     &p.BaseBiteChance,
		"max_bite_chance":      &p.MaxBiteChance,
		"skill_multiplier":     &p.SkillMultiplier,
		"preferred_bait_bonus": &p.PreferredBaitBonus,
		"max_tension":          &p.MaxTension,
		"break_threshold":      &p.BreakThreshold,
		"tension_rate":         &p.TensionRate,
		"reel_load_factor":     &p.ReelLoadFactor,
		"smoothness_relief":    &p.SmoothnessRelief,
		"drag_relief":          &p.DragRelief,
		"line_relief":          &p.LineRelief,
		"progress_rate":        &p.ProgressRate,
		"progress_decay":       &p.ProgressDecay,
		"hook_timeout":         &p.HookTimeout,
		"reel_input_window":    &p.ReelInputWindow,
		"rarity_size_skew":     &p.RaritySizeSkew,
		"size_factor":          &p.SizeFactor,
		"exp_per_value":        &p.ExpPerValue,
		"fail_lure_wear":       &p.FailLureWear,
		"fail_line_wear":       &p.FailLineWear,
	}
}

// ApplyOverrides sets the named coefficients. Keys are case-insensitive snake_case names.
//
// Postcondition: on error p is unchanged; the error names every unknown key.
func (p *Params) ApplyOverrides(overrides map[string]float64) error {
	next := *p
	fields := next.fields()
	var unknown []string
	for k, v := range overrides {
		ptr, ok := fields[strings.ToLower(k)]
		if !ok {
			unknown = append(unknown, k)
			continue
		}
		*ptr = v
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown fishing params: %s", strings.Join(unknown, ", "))
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*p = next
	return nil
}

// Validate checks the coefficients that would break invariants when misconfigured.
func (p Params) Validate() error {
	var errs []error
	if p.MinCastDistance < 0 || p.MaxCastDistance < p.MinCastDistance {
		errs = append(errs, fmt.Errorf("cast distance range [%g, %g] is invalid", p.MinCastDistance, p.MaxCastDistance))
	}
	if p.MaxBiteChance < 0 || p.MaxBiteChance > 1 {
		errs = append(errs, fmt.Errorf("max_bite_chance must be in [0, 1], got %g", p.MaxBiteChance))
	}
	if p.MaxTension <= 0 {
		errs = append(errs, fmt.Errorf("max_tension must be > 0, got %g", p.MaxTension))
	}
	if p.BreakThreshold <= 0 || p.BreakThreshold > 1 {
		errs = append(errs, fmt.Errorf("break_threshold must be in (0, 1], got %g", p.BreakThreshold))
	}
	if p.HookTimeout <= 0 || p.ReelInputWindow <= 0 {
		errs = append(errs, errors.New("hook_timeout and reel_input_window must be > 0"))
	}
	return errors.Join(errs...)
}

// BreakTension returns the tension at which the line snaps.
func (p Params) BreakTension() float64 {
	return p.MaxTension * p.BreakThreshold
}
