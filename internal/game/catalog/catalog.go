package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

// WeatherType is a weather condition and its bite multiplier.
type WeatherType struct {
	ID             string  `yaml:"id"`
	Name           string  `yaml:"name"`
	BiteMultiplier float64 `yaml:"bite_multiplier"`
}

// TimeOfDay is a named period of the day and its bite multiplier.
type TimeOfDay struct {
	ID             string  `yaml:"id"`
	Name           string  `yaml:"name"`
	Hour           int     `yaml:"hour"`
	BiteMultiplier float64 `yaml:"bite_multiplier"`
}

// Season is a season and its bite multiplier and base temperature.
type Season struct {
	ID              string  `yaml:"id"`
	Name            string  `yaml:"name"`
	BiteMultiplier  float64 `yaml:"bite_multiplier"`
	BaseTemperature float64 `yaml:"base_temperature"`
}

// RarityConfig carries the selection weight and display stars of a rarity tier.
type RarityConfig struct {
	Name   string  `yaml:"name"`
	Stars  int     `yaml:"stars"`
	Weight float64 `yaml:"weight"`
}

// Constants are the global progression and world constants.
type Constants struct {
	MaxLevel                int     `yaml:"max_level"`
	ExpPerLevel             int     `yaml:"exp_per_level"`
	SkillLevelMultiplier    float64 `yaml:"skill_level_multiplier"`
	TensionWarningThreshold float64 `yaml:"tension_warning_threshold"`
	TensionBreakThreshold   float64 `yaml:"tension_break_threshold"`
	GameSpeedMultiplier     int     `yaml:"game_speed_multiplier"`
	WeatherChangeInterval   int     `yaml:"weather_change_interval"` // game minutes
	DayLength               int     `yaml:"day_length"`              // hours
	SeasonLength            int     `yaml:"season_length"`           // days
}

// Document is the on-disk YAML layout of a catalog.
type Document struct {
	Fish      []Fish                  `yaml:"fish"`
	Rods      []Rod                   `yaml:"rods"`
	Reels     []Reel                  `yaml:"reels"`
	Lures     []Lure                  `yaml:"lures"`
	Lines     []Line                  `yaml:"lines"`
	Scenes    []Scene                 `yaml:"scenes"`
	Weather   []WeatherType           `yaml:"weather"`
	TimeOfDay []TimeOfDay             `yaml:"time_of_day"`
	Seasons   []Season                `yaml:"seasons"`
	Rarity    map[Rarity]RarityConfig `yaml:"rarity"`
	Constants Constants               `yaml:"constants"`
}

// Catalog is the indexed, validated, read-only game content.
//
// Invariant: every id referenced by a scene resolves to a Fish; ids are unique per kind.
// A Catalog is never mutated after construction and is safe for concurrent reads.
type Catalog struct {
	doc     Document
	fish    map[int]*Fish
	rods    map[string]*Rod
	reels   map[string]*Reel
	lures   map[string]*Lure
	lines   map[string]*Line
	scenes  map[string]*Scene
	weather map[string]*WeatherType
	periods map[string]*TimeOfDay
	seasons map[string]*Season
}

// Default returns the catalog embedded in the binary.
//
// Postcondition: Returns a valid Catalog; panics only if the embedded content is broken.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded default catalog is invalid: %v", err))
	}
	return c
}

// Load reads and validates a catalog YAML file.
//
// Postcondition: Returns a valid Catalog or a non-nil error.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading %q: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: %q: %w", path, err)
	}
	return c, nil
}

// Parse decodes, indexes, and validates catalog YAML.
//
// Postcondition: Returns a valid Catalog or a non-nil error describing all violations.
func Parse(data []byte) (*Catalog, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return New(doc)
}

// New indexes and validates doc.
//
// Postcondition: Returns a valid Catalog or a non-nil error describing all violations.
func New(doc Document) (*Catalog, error) {
	c := &Catalog{
		doc:     doc,
		fish:    make(map[int]*Fish, len(doc.Fish)),
		rods:    make(map[string]*Rod, len(doc.Rods)),
		reels:   make(map[string]*Reel, len(doc.Reels)),
		lures:   make(map[string]*Lure, len(doc.Lures)),
		lines:   make(map[string]*Line, len(doc.Lines)),
		scenes:  make(map[string]*Scene, len(doc.Scenes)),
		weather: make(map[string]*WeatherType, len(doc.Weather)),
		periods: make(map[string]*TimeOfDay, len(doc.TimeOfDay)),
		seasons: make(map[string]*Season, len(doc.Seasons)),
	}

	var errs []error
	dup := func(kind, id string) {
		errs = append(errs, fmt.Errorf("duplicate %s id %q", kind, id))
	}

	for i := range c.doc.Fish {
		f := &c.doc.Fish[i]
		if err := f.Validate(); err != nil {
			errs = append(errs, err)
		}
		if _, ok := c.fish[f.ID]; ok {
			dup("fish", fmt.Sprint(f.ID))
		}
		c.fish[f.ID] = f
	}
	for i := range c.doc.Rods {
		r := &c.doc.Rods[i]
		if err := validateItem("rod", *r); err != nil {
			errs = append(errs, err)
		}
		if _, ok := c.rods[r.ID]; ok {
			dup("rod", r.ID)
		}
		c.rods[r.ID] = r
	}
	for i := range c.doc.Reels {
		r := &c.doc.Reels[i]
		if err := validateItem("reel", *r); err != nil {
			errs = append(errs, err)
		}
		if _, ok := c.reels[r.ID]; ok {
			dup("reel", r.ID)
		}
		c.reels[r.ID] = r
	}
	for i := range c.doc.Lures {
		l := &c.doc.Lures[i]
		if err := validateItem("lure", *l); err != nil {
			errs = append(errs, err)
		}
		if l.Durability <= 0 || l.Durability > MaxDurability {
			errs = append(errs, fmt.Errorf("lure %q: durability must be in (0, %g]", l.ID, MaxDurability))
		}
		if _, ok := c.lures[l.ID]; ok {
			dup("lure", l.ID)
		}
		c.lures[l.ID] = l
	}
	for i := range c.doc.Lines {
		l := &c.doc.Lines[i]
		if err := validateItem("line", *l); err != nil {
			errs = append(errs, err)
		}
		if _, ok := c.lines[l.ID]; ok {
			dup("line", l.ID)
		}
		c.lines[l.ID] = l
	}
	for i := range c.doc.Weather {
		w := &c.doc.Weather[i]
		c.weather[w.ID] = w
	}
	for i := range c.doc.TimeOfDay {
		p := &c.doc.TimeOfDay[i]
		c.periods[p.ID] = p
	}
	for i := range c.doc.Seasons {
		s := &c.doc.Seasons[i]
		c.seasons[s.ID] = s
	}
	for i := range c.doc.Scenes {
		s := &c.doc.Scenes[i]
		if s.ID == "" {
			errs = append(errs, errors.New("scene with empty id"))
		}
		if s.Type != Freshwater && s.Type != Saltwater {
			errs = append(errs, fmt.Errorf("scene %q: unknown water type %q", s.ID, s.Type))
		}
		for _, id := range s.FishIDs() {
			if _, ok := c.fish[id]; !ok {
				errs = append(errs, fmt.Errorf("scene %q references unknown fish %d", s.ID, id))
			}
		}
		if _, ok := c.scenes[s.ID]; ok {
			dup("scene", s.ID)
		}
		c.scenes[s.ID] = s
	}

	if len(c.doc.Rods) == 0 || len(c.doc.Reels) == 0 || len(c.doc.Lures) == 0 || len(c.doc.Lines) == 0 {
		errs = append(errs, errors.New("catalog needs at least one rod, reel, lure, and line"))
	}
	if len(c.doc.Scenes) == 0 || len(c.doc.Weather) == 0 || len(c.doc.Seasons) == 0 {
		errs = append(errs, errors.New("catalog needs at least one scene, weather type, and season"))
	}
	if c.doc.Constants.ExpPerLevel <= 0 || c.doc.Constants.MaxLevel < 1 {
		errs = append(errs, errors.New("constants.exp_per_level must be > 0 and constants.max_level >= 1"))
	}
	if c.doc.Constants.SeasonLength <= 0 || c.doc.Constants.WeatherChangeInterval <= 0 {
		errs = append(errs, errors.New("constants.season_length and constants.weather_change_interval must be > 0"))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

// Fish returns the species with the given id.
func (c *Catalog) Fish(id int) (*Fish, bool) {
	f, ok := c.fish[id]
	return f, ok
}

// Rod returns the rod with the given id.
func (c *Catalog) Rod(id string) (*Rod, bool) {
	r, ok := c.rods[id]
	return r, ok
}

// Reel returns the reel with the given id.
func (c *Catalog) Reel(id string) (*Reel, bool) {
	r, ok := c.reels[id]
	return r, ok
}

// Lure returns the lure with the given id.
func (c *Catalog) Lure(id string) (*Lure, bool) {
	l, ok := c.lures[id]
	return l, ok
}

// Line returns the line with the given id.
func (c *Catalog) Line(id string) (*Line, bool) {
	l, ok := c.lines[id]
	return l, ok
}

// Scene returns the scene with the given id.
func (c *Catalog) Scene(id string) (*Scene, bool) {
	s, ok := c.scenes[id]
	return s, ok
}

// Weather returns the weather type with the given id.
func (c *Catalog) Weather(id string) (*WeatherType, bool) {
	w, ok := c.weather[id]
	return w, ok
}

// Period returns the time-of-day period with the given id.
func (c *Catalog) Period(id string) (*TimeOfDay, bool) {
	p, ok := c.periods[id]
	return p, ok
}

// Season returns the season with the given id.
func (c *Catalog) Season(id string) (*Season, bool) {
	s, ok := c.seasons[id]
	return s, ok
}

// Item resolves an item id within the given slot.
//
// Postcondition: ok is false for unknown slots or ids.
func (c *Catalog) Item(slot Slot, id string) (Item, bool) {
	switch slot {
	case SlotRod:
		if r, ok := c.rods[id]; ok {
			return *r, true
		}
	case SlotReel:
		if r, ok := c.reels[id]; ok {
			return *r, true
		}
	case SlotLure:
		if l, ok := c.lures[id]; ok {
			return *l, true
		}
	case SlotLine:
		if l, ok := c.lines[id]; ok {
			return *l, true
		}
	}
	return nil, false
}

// AllFish returns every species in catalog order.
func (c *Catalog) AllFish() []Fish { return c.doc.Fish }

// Rods returns every rod in catalog order.
func (c *Catalog) Rods() []Rod { return c.doc.Rods }

// Reels returns every reel in catalog order.
func (c *Catalog) Reels() []Reel { return c.doc.Reels }

// Lures returns every lure in catalog order.
func (c *Catalog) Lures() []Lure { return c.doc.Lures }

// Lines returns every line in catalog order.
func (c *Catalog) Lines() []Line { return c.doc.Lines }

// Scenes returns every scene in catalog order.
func (c *Catalog) Scenes() []Scene { return c.doc.Scenes }

// WeatherTypes returns every weather type in catalog order.
func (c *Catalog) WeatherTypes() []WeatherType { return c.doc.Weather }

// Seasons returns every season in catalog order.
func (c *Catalog) Seasons() []Season { return c.doc.Seasons }

// Constants returns the global constants.
func (c *Catalog) Constants() Constants { return c.doc.Constants }

// RarityWeight returns the selection weight of r; 0 for unknown tiers.
func (c *Catalog) RarityWeight(r Rarity) float64 {
	return c.doc.Rarity[r].Weight
}

// SceneFish returns the whitelisted species of scene, in whitelist order.
//
// Precondition: s must come from this catalog.
func (c *Catalog) SceneFish(s *Scene) []*Fish {
	ids := s.FishIDs()
	out := make([]*Fish, 0, len(ids))
	for _, id := range ids {
		if f, ok := c.fish[id]; ok {
			out = append(out, f)
		}
	}
	return out
}

// RareSpecies returns the ids of every species of rare tier or above.
func (c *Catalog) RareSpecies() []int {
	var out []int
	for _, f := range c.doc.Fish {
		if f.Rarity.Tier() >= RarityRare.Tier() {
			out = append(out, f.ID)
		}
	}
	return out
}
