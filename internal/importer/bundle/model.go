package bundle

import "github.com/cory-johannsen/lurefish/internal/game/catalog"

// Config is the parsed form of a bundle's config.json: the world tables and
// global constants exported from the mobile client.
type Config struct {
	WeatherTypes []Weather         `json:"WEATHER_TYPES"`
	TimeOfDay    []Period          `json:"TIME_OF_DAY"`
	Seasons      []Season          `json:"SEASONS"`
	Rarity       map[string]Rarity `json:"RARITY_CONFIG"`
	Constants    Constants         `json:"GAME_CONSTANTS"`
}

// Weather is one WEATHER_TYPES entry. Icon is display-only and not imported.
type Weather struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Icon           string  `json:"icon"`
	BiteMultiplier float64 `json:"biteMultiplier"`
}

// Period is one TIME_OF_DAY entry.
type Period struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Hour           int     `json:"hour"`
	BiteMultiplier float64 `json:"biteMultiplier"`
}

// Season is one SEASONS entry. BaseTemperature is optional in exports.
type Season struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Color           string   `json:"color"`
	BiteMultiplier  float64  `json:"biteMultiplier"`
	BaseTemperature *float64 `json:"baseTemperature"`
}

// Rarity is one RARITY_CONFIG entry. Colors are display-only and not imported.
type Rarity struct {
	Name     string   `json:"name"`
	Color    string   `json:"color"`
	Gradient []string `json:"gradient"`
	Stars    int      `json:"stars"`
	Weight   float64  `json:"weight"`
}

// Constants is the GAME_CONSTANTS object. Keys the catalog has no use for
// (cast and reel multipliers, notification duration) are ignored.
type Constants struct {
	MaxLevel                int     `json:"MAX_LEVEL"`
	ExpPerLevel             int     `json:"EXP_PER_LEVEL"`
	SkillLevelMultiplier    float64 `json:"SKILL_LEVEL_MULTIPLIER"`
	TensionWarningThreshold float64 `json:"TENSION_WARNING_THRESHOLD"`
	TensionBreakThreshold   float64 `json:"TENSION_BREAK_THRESHOLD"`
	GameSpeedMultiplier     int     `json:"GAME_SPEED_MULTIPLIER"`
	WeatherChangeInterval   int     `json:"WEATHER_CHANGE_INTERVAL"`
	DayLength               int     `json:"DAY_LENGTH"`
	SeasonLength            int     `json:"SEASON_LENGTH"`
}

// Bundle is a fully parsed source directory. Fish, equipment, and scenes use
// the catalog types directly; their JSON tags match the client export.
type Bundle struct {
	Config Config
	Fish   []catalog.Fish
	Rods   []catalog.Rod
	Reels  []catalog.Reel
	Lures  []catalog.Lure
	Lines  []catalog.Line
	Scenes []catalog.Scene
}
