// Package catalog provides the immutable game content: fish species, fishing
// equipment, scenes, and the environmental and rarity tables that drive bite rolls.
package catalog

import (
	"errors"
	"fmt"
)

// Rarity is the rarity tier of a fish species.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Tier returns the ordinal of r: common 0 through legendary 4, or -1 if unknown.
func (r Rarity) Tier() int {
	switch r {
	case RarityCommon:
		return 0
	case RarityUncommon:
		return 1
	case RarityRare:
		return 2
	case RarityEpic:
		return 3
	case RarityLegendary:
		return 4
	default:
		return -1
	}
}

// WaterType distinguishes freshwater and saltwater scenes and lure effectiveness.
type WaterType string

const (
	Freshwater WaterType = "freshwater"
	Saltwater  WaterType = "saltwater"
)

// LureType is the construction family of a lure, matched against a fish's preferred bait.
type LureType string

const (
	LureMetal   LureType = "metal"
	LureHard    LureType = "hard"
	LureSurface LureType = "surface"
	LureSoft    LureType = "soft"
	LureSpecial LureType = "special"
)

// Slot identifies the equipment slot an Item occupies.
type Slot string

const (
	SlotRod  Slot = "rod"
	SlotReel Slot = "reel"
	SlotLure Slot = "lure"
	SlotLine Slot = "line"
)

// MaxDurability is the durability of a fresh lure or line.
const MaxDurability float64 = 100

// Item is a purchasable piece of equipment. The set of implementations is closed:
// Rod, Reel, Lure, and Line.
type Item interface {
	ItemID() string
	ItemName() string
	Price() int
	Slot() Slot
	isItem()
}

// Rod determines cast distance and accuracy.
type Rod struct {
	ID              string  `yaml:"id" json:"id"`
	Name            string  `yaml:"name" json:"name"`
	Cost            int     `yaml:"cost" json:"cost"`
	Power           float64 `yaml:"power" json:"power"`
	Accuracy        float64 `yaml:"accuracy" json:"accuracy"`
	Durability      float64 `yaml:"durability" json:"durability"`
	CastingDistance float64 `yaml:"casting_distance" json:"castingDistance"`
}

// Reel determines retrieval speed and how much line stress it absorbs.
type Reel struct {
	ID         string  `yaml:"id" json:"id"`
	Name       string  `yaml:"name" json:"name"`
	Cost       int     `yaml:"cost" json:"cost"`
	Speed      float64 `yaml:"speed" json:"speed"`
	Smoothness float64 `yaml:"smoothness" json:"smoothness"`
	Drag       float64 `yaml:"drag" json:"drag"`
}

// Effectiveness is a lure's bite-rate factor per water type.
type Effectiveness struct {
	Freshwater float64 `yaml:"freshwater" json:"freshwater"`
	Saltwater  float64 `yaml:"saltwater" json:"saltwater"`
}

// For returns the effectiveness for water type w; unknown types yield 0.
func (e Effectiveness) For(w WaterType) float64 {
	switch w {
	case Freshwater:
		return e.Freshwater
	case Saltwater:
		return e.Saltwater
	default:
		return 0
	}
}

// Lure attracts fish. Durability wears with every cast.
type Lure struct {
	ID            string        `yaml:"id" json:"id"`
	Name          string        `yaml:"name" json:"name"`
	Type          LureType      `yaml:"type" json:"type"`
	Cost          int           `yaml:"cost" json:"cost"`
	Effectiveness Effectiveness `yaml:"effectiveness" json:"effectiveness"`
	Description   string        `yaml:"description" json:"description"`
	Durability    float64       `yaml:"durability" json:"durability"`
}

// Line absorbs tension. Durability wears when the line snaps.
type Line struct {
	ID         string  `yaml:"id" json:"id"`
	Name       string  `yaml:"name" json:"name"`
	Cost       int     `yaml:"cost" json:"cost"`
	Strength   float64 `yaml:"strength" json:"strength"`
	Durability float64 `yaml:"durability" json:"durability"`
}

func (r Rod) ItemID() string   { return r.ID }
func (r Rod) ItemName() string { return r.Name }
func (r Rod) Price() int       { return r.Cost }
func (r Rod) Slot() Slot       { return SlotRod }
func (Rod) isItem()            {}

func (r Reel) ItemID() string   { return r.ID }
func (r Reel) ItemName() string { return r.Name }
func (r Reel) Price() int       { return r.Cost }
func (r Reel) Slot() Slot       { return SlotReel }
func (Reel) isItem()            {}

func (l Lure) ItemID() string   { return l.ID }
func (l Lure) ItemName() string { return l.Name }
func (l Lure) Price() int       { return l.Cost }
func (l Lure) Slot() Slot       { return SlotLure }
func (Lure) isItem()            {}

func (l Line) ItemID() string   { return l.ID }
func (l Line) ItemName() string { return l.Name }
func (l Line) Price() int       { return l.Cost }
func (l Line) Slot() Slot       { return SlotLine }
func (Line) isItem()            {}

// validateItem checks the fields every Item shares.
func validateItem(kind string, it Item) error {
	var errs []error
	if it.ItemID() == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if it.ItemName() == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if it.Price() < 0 {
		errs = append(errs, fmt.Errorf("Cost must be >= 0, got %d", it.Price()))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s %q: %w", kind, it.ItemID(), errors.Join(errs...))
	}
	return nil
}
