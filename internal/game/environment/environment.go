// Package environment models the in-game weather, clock, and season, and the
// bite multipliers they contribute.
package environment

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/lurefish/internal/game/catalog"
	"github.com/cory-johannsen/lurefish/internal/game/dice"
)

// Period ids, matching the time_of_day table of the catalog.
const (
	PeriodDawn  = "dawn"
	PeriodDay   = "day"
	PeriodDusk  = "dusk"
	PeriodNight = "night"
)

// Weather is the current weather condition.
type Weather struct {
	Condition     string  `json:"condition"`
	Temperature   float64 `json:"temperature"`   // °C
	WindSpeed     float64 `json:"windSpeed"`     // m/s
	WindDirection float64 `json:"windDirection"` // degrees
	NextChange    int     `json:"nextChange"`    // game minutes
}

// GameTime is the in-game clock.
type GameTime struct {
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
	Season string `json:"season"`
	Day    int    `json:"day"`
}

// String returns the time in "HH:MM" format.
func (t GameTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Period returns the named period of the current hour.
func (t GameTime) Period() string {
	return PeriodOf(t.Hour)
}

// PeriodOf maps an hour to its period: dawn [5,8), day [8,17), dusk [17,20), night otherwise.
//
// Precondition: hour is in [0, 23].
func PeriodOf(hour int) string {
	switch {
	case hour >= 5 && hour < 8:
		return PeriodDawn
	case hour >= 8 && hour < 17:
		return PeriodDay
	case hour >= 17 && hour < 20:
		return PeriodDusk
	default:
		return PeriodNight
	}
}

// DefaultWeather returns the weather of a new game.
func DefaultWeather() Weather {
	return Weather{Condition: "sunny", Temperature: 22, WindSpeed: 3, WindDirection: 45, NextChange: 120}
}

// DefaultTime returns the clock of a new game.
func DefaultTime() GameTime {
	return GameTime{Hour: 12, Minute: 0, Season: "spring", Day: 1}
}

// State is the full environment: weather plus clock.
type State struct {
	Weather Weather  `json:"weather"`
	Time    GameTime `json:"time"`
}

// Change reports which parts of the environment changed during Advance.
type Change struct {
	Hour    bool
	Day     bool
	Season  bool
	Weather bool
}

// Any reports whether anything beyond the minute hand changed.
func (c Change) Any() bool {
	return c.Hour || c.Day || c.Season || c.Weather
}

// Advance moves the environment forward by one game minute.
//
// Precondition: cat and roller must be non-nil.
// Postcondition: the minute advances with hour and day rollover; the season advances
// every SeasonLength days; the weather is re-rolled when NextChange reaches 0.
func Advance(st State, cat *catalog.Catalog, roller *dice.Roller) (State, Change) {
	var ch Change
	k := cat.Constants()
	dayLength := k.DayLength
	if dayLength <= 0 {
		dayLength = 24
	}

	t := st.Time
	t.Minute++
	if t.Minute >= 60 {
		t.Minute = 0
		t.Hour = (t.Hour + 1) % dayLength
		ch.Hour = true
		if t.Hour == 0 {
			t.Day++
			ch.Day = true
			if (t.Day-1)%k.SeasonLength == 0 {
				t.Season = NextSeason(cat, t.Season)
				ch.Season = true
			}
		}
	}

	w := st.Weather
	w.NextChange--
	if w.NextChange <= 0 {
		w = RollWeather(cat, t.Season, roller)
		ch.Weather = true
	}

	return State{Weather: w, Time: t}, ch
}

// NextSeason returns the season following current in catalog order, wrapping around.
// An unknown season restarts at the first one.
func NextSeason(cat *catalog.Catalog, current string) string {
	seasons := cat.Seasons()
	for i, s := range seasons {
		if s.ID == current {
			return seasons[(i+1)%len(seasons)].ID
		}
	}
	return seasons[0].ID
}

// RollWeather draws a new weather condition for season.
//
// Postcondition: Condition is a catalog weather id; wind speed in [0, 10);
// direction in [0, 360); temperature is the season base ±5; NextChange is reset.
func RollWeather(cat *catalog.Catalog, season string, roller *dice.Roller) Weather {
	types := cat.WeatherTypes()
	cond := types[roller.Source().Intn(len(types))].ID

	base := 20.0
	if s, ok := cat.Season(season); ok {
		base = s.BaseTemperature
	}
	return Weather{
		Condition:     cond,
		Temperature:   round1(base + roller.Between("temperature", -5, 5)),
		WindSpeed:     round1(roller.Between("wind speed", 0, 10)),
		WindDirection: math.Floor(roller.Between("wind direction", 0, 360)),
		NextChange:    cat.Constants().WeatherChangeInterval,
	}
}

// BiteMultiplier returns the product of the weather, period, and season multipliers.
// Unknown ids contribute 1.
func BiteMultiplier(cat *catalog.Catalog, st State) float64 {
	m := 1.0
	if w, ok := cat.Weather(st.Weather.Condition); ok {
		m *= w.BiteMultiplier
	}
	if p, ok := cat.Period(st.Time.Period()); ok {
		m *= p.BiteMultiplier
	}
	if s, ok := cat.Season(st.Time.Season); ok {
		m *= s.BiteMultiplier
	}
	return m
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
