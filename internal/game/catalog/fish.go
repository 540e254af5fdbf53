package catalog

import (
	"errors"
	"fmt"
	"slices"
)

// Fish is an immutable species definition.
type Fish struct {
	ID            int        `yaml:"id" json:"id"`
	Name          string     `yaml:"name" json:"name"`
	Species       string     `yaml:"species" json:"species"`
	Rarity        Rarity     `yaml:"rarity" json:"rarity"`
	MinSize       float64    `yaml:"min_size" json:"minSize"` // kg
	MaxSize       float64    `yaml:"max_size" json:"maxSize"` // kg
	BaseValue     int        `yaml:"base_value" json:"baseValue"`
	PreferredBait []LureType `yaml:"preferred_bait" json:"preferredBait"`
	ActiveSeasons []string   `yaml:"active_seasons" json:"activeSeasons"`
	ActiveTime    []string   `yaml:"active_time" json:"activeTime"`
	Struggle      float64    `yaml:"struggle" json:"struggle"`
	Speed         float64    `yaml:"speed" json:"speed"`
}

// ActiveIn reports whether the species bites in the given season and period.
// An empty ActiveSeasons or ActiveTime list means always active.
func (f *Fish) ActiveIn(season, period string) bool {
	if len(f.ActiveSeasons) > 0 && !slices.Contains(f.ActiveSeasons, season) {
		return false
	}
	if len(f.ActiveTime) > 0 && !slices.Contains(f.ActiveTime, period) {
		return false
	}
	return true
}

// Prefers reports whether the species prefers lures of type t.
func (f *Fish) Prefers(t LureType) bool {
	return slices.Contains(f.PreferredBait, t)
}

// MeanSize returns the midpoint of the size range.
func (f *Fish) MeanSize() float64 {
	return (f.MinSize + f.MaxSize) / 2
}

// Validate checks that the Fish satisfies its invariants.
//
// Postcondition: returns nil iff all fields are valid.
func (f *Fish) Validate() error {
	var errs []error
	if f.ID <= 0 {
		errs = append(errs, fmt.Errorf("ID must be > 0, got %d", f.ID))
	}
	if f.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if f.Rarity.Tier() < 0 {
		errs = append(errs, fmt.Errorf("Rarity %q is not a known rarity", f.Rarity))
	}
	if f.MinSize <= 0 || f.MaxSize < f.MinSize {
		errs = append(errs, fmt.Errorf("size range [%g, %g] must be positive and ordered", f.MinSize, f.MaxSize))
	}
	if f.BaseValue <= 0 {
		errs = append(errs, fmt.Errorf("BaseValue must be > 0, got %d", f.BaseValue))
	}
	if f.Struggle < 0 || f.Speed < 0 {
		errs = append(errs, errors.New("Struggle and Speed must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("fish %d: %w", f.ID, errors.Join(errs...))
	}
	return nil
}

// WeatherEffect is a scene-specific adjustment for one weather condition.
type WeatherEffect struct {
	BiteRate   float64 `yaml:"bite_rate" json:"biteRate"`
	Difficulty float64 `yaml:"difficulty" json:"difficulty"`
}

// Scene is a fishing location with its own fish whitelist.
type Scene struct {
	ID             string                   `yaml:"id" json:"id"`
	Name           string                   `yaml:"name" json:"name"`
	Type           WaterType                `yaml:"type" json:"type"`
	Difficulty     float64                  `yaml:"difficulty" json:"difficulty"`
	UnlockCost     int                      `yaml:"unlock_cost" json:"unlockCost"`
	Description    string                   `yaml:"description" json:"description"`
	WaterDepth     float64                  `yaml:"water_depth" json:"waterDepth"`
	CurrentSpeed   float64                  `yaml:"current_speed" json:"currentSpeed"`
	CommonFish     []int                    `yaml:"common_fish" json:"commonFish"`
	RareFish       []int                    `yaml:"rare_fish" json:"rareFish"`
	LegendaryFish  []int                    `yaml:"legendary_fish" json:"legendaryFish"`
	WeatherEffects map[string]WeatherEffect `yaml:"weather_effects" json:"weatherEffects"`
}

// FishIDs returns the whitelist of the scene: common, rare, then legendary ids, deduplicated.
func (s *Scene) FishIDs() []int {
	out := make([]int, 0, len(s.CommonFish)+len(s.RareFish)+len(s.LegendaryFish))
	seen := make(map[int]bool)
	for _, list := range [][]int{s.CommonFish, s.RareFish, s.LegendaryFish} {
		for _, id := range list {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// BiteRate returns the scene's bite-rate factor for weather condition; 1 when unspecified.
func (s *Scene) BiteRate(condition string) float64 {
	if eff, ok := s.WeatherEffects[condition]; ok && eff.BiteRate > 0 {
		return eff.BiteRate
	}
	return 1
}
