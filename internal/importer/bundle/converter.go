package bundle

import (
	"fmt"
	"sort"

	"github.com/cory-johannsen/lurefish/internal/game/catalog"
	"github.com/cory-johannsen/lurefish/internal/importer"
)

// seasonTemperatures fills in base temperatures the client export omits.
var seasonTemperatures = map[string]float64{
	"spring": 18,
	"summer": 28,
	"autumn": 16,
	"winter": 5,
}

// fallbackTemperature is used for a season with neither an exported nor a known
// base temperature.
const fallbackTemperature = 15

// Convert transforms a parsed Bundle into a catalog Document.
//
// Precondition: b must be non-nil.
// Postcondition: returns a non-nil Document and a (possibly empty) slice of
// warnings for recoverable issues such as ids derived from names, duplicate ids,
// or unknown rarity tiers.
func Convert(b *Bundle) (*catalog.Document, []string) {
	var warnings []string
	warn := func(ws []string) { warnings = append(warnings, ws...) }

	doc := &catalog.Document{
		Rarity: make(map[catalog.Rarity]catalog.RarityConfig, len(b.Config.Rarity)),
		Constants: catalog.Constants{
			MaxLevel:                b.Config.Constants.MaxLevel,
			ExpPerLevel:             b.Config.Constants.ExpPerLevel,
			SkillLevelMultiplier:    b.Config.Constants.SkillLevelMultiplier,
			TensionWarningThreshold: b.Config.Constants.TensionWarningThreshold,
			TensionBreakThreshold:   b.Config.Constants.TensionBreakThreshold,
			GameSpeedMultiplier:     b.Config.Constants.GameSpeedMultiplier,
			WeatherChangeInterval:   b.Config.Constants.WeatherChangeInterval,
			DayLength:               b.Config.Constants.DayLength,
			SeasonLength:            b.Config.Constants.SeasonLength,
		},
	}

	for _, w := range b.Config.WeatherTypes {
		id, ws := entryID("weather", w.ID, w.Name)
		warn(ws)
		doc.Weather = append(doc.Weather, catalog.WeatherType{ID: id, Name: w.Name, BiteMultiplier: w.BiteMultiplier})
	}
	for _, p := range b.Config.TimeOfDay {
		id, ws := entryID("time of day", p.ID, p.Name)
		warn(ws)
		doc.TimeOfDay = append(doc.TimeOfDay, catalog.TimeOfDay{ID: id, Name: p.Name, Hour: p.Hour, BiteMultiplier: p.BiteMultiplier})
	}
	for _, s := range b.Config.Seasons {
		id, ws := entryID("season", s.ID, s.Name)
		warn(ws)
		doc.Seasons = append(doc.Seasons, catalog.Season{
			ID:              id,
			Name:            s.Name,
			BiteMultiplier:  s.BiteMultiplier,
			BaseTemperature: seasonTemperature(id, s.BaseTemperature, &warnings),
		})
	}

	keys := make([]string, 0, len(b.Config.Rarity))
	for k := range b.Config.Rarity {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		r := catalog.Rarity(k)
		if r.Tier() < 0 {
			warnings = append(warnings, fmt.Sprintf("rarity %q: unknown tier; skipping", k))
			continue
		}
		cfg := b.Config.Rarity[k]
		doc.Rarity[r] = catalog.RarityConfig{Name: cfg.Name, Stars: cfg.Stars, Weight: cfg.Weight}
	}

	var ws []string
	doc.Fish, ws = dedupeFish(b.Fish)
	warn(ws)
	doc.Rods, ws = items("rod", b.Rods, func(r *catalog.Rod) (*string, string) { return &r.ID, r.Name })
	warn(ws)
	doc.Reels, ws = items("reel", b.Reels, func(r *catalog.Reel) (*string, string) { return &r.ID, r.Name })
	warn(ws)
	doc.Lures, ws = items("lure", b.Lures, func(l *catalog.Lure) (*string, string) { return &l.ID, l.Name })
	warn(ws)
	doc.Lines, ws = items("line", b.Lines, func(l *catalog.Line) (*string, string) { return &l.ID, l.Name })
	warn(ws)
	// Exports predating wear carry no durability; such gear starts fresh.
	for i := range doc.Lures {
		if doc.Lures[i].Durability == 0 {
			doc.Lures[i].Durability = catalog.MaxDurability
		}
	}
	for i := range doc.Lines {
		if doc.Lines[i].Durability == 0 {
			doc.Lines[i].Durability = catalog.MaxDurability
		}
	}
	doc.Scenes, ws = items("scene", b.Scenes, func(s *catalog.Scene) (*string, string) { return &s.ID, s.Name })
	warn(ws)

	return doc, warnings
}

// entryID returns id, or an id derived from name when id is empty.
func entryID(kind, id, name string) (string, []string) {
	if id != "" {
		return id, nil
	}
	derived := importer.NameToID(name)
	return derived, []string{fmt.Sprintf("%s %q: no id; derived %q from name", kind, name, derived)}
}

func seasonTemperature(id string, exported *float64, warnings *[]string) float64 {
	if exported != nil {
		return *exported
	}
	if t, ok := seasonTemperatures[id]; ok {
		return t
	}
	*warnings = append(*warnings, fmt.Sprintf("season %q: no base temperature; using %d", id, fallbackTemperature))
	return fallbackTemperature
}

// items fills in missing ids from names and drops duplicates.
func items[T any](kind string, in []T, fields func(*T) (*string, string)) ([]T, []string) {
	var warnings []string
	out := make([]T, len(in))
	copy(out, in)
	for i := range out {
		id, name := fields(&out[i])
		var ws []string
		*id, ws = entryID(kind, *id, name)
		warnings = append(warnings, ws...)
	}
	out, ws := importer.Dedupe(kind, out, func(it T) string {
		id, _ := fields(&it)
		return *id
	})
	return out, append(warnings, ws...)
}

func dedupeFish(in []catalog.Fish) ([]catalog.Fish, []string) {
	return importer.Dedupe("fish", in, func(f catalog.Fish) string { return fmt.Sprint(f.ID) })
}
