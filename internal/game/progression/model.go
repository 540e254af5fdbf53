// Package progression owns the persistent player profile: stats, equipment,
// inventory, achievements, tasks, settings, and per-species statistics, and the
// transactions that change them.
package progression

import (
	"errors"
	"maps"
	"slices"
	"time"

	"github.com/cory-johannsen/lurefish/internal/game/catalog"
	"github.com/cory-johannsen/lurefish/internal/game/fishing"
)

var (
	ErrInsufficientFunds = errors.New("insufficient coins")
	ErrAlreadyUnlocked   = errors.New("scene already unlocked")
	ErrUnknownScene      = errors.New("unknown scene")
	ErrSceneLocked       = errors.New("scene is locked")
	ErrUnknownTask       = errors.New("unknown task")
	ErrTaskIncomplete    = errors.New("task not complete")
	ErrLureNotOwned      = errors.New("lure not owned")
	ErrFishNotFound      = errors.New("caught fish not found")
	ErrInvalidSettings   = errors.New("invalid settings")
	ErrUnknownItem       = errors.New("unknown item")
)

// Player is the persistent player record.
type Player struct {
	Level                int      `json:"level"`
	Exp                  int      `json:"exp"`
	Coins                int      `json:"coins"`
	Diamonds             int      `json:"diamonds"`
	TotalFishCaught      int      `json:"totalFishCaught"`
	TotalValue           int      `json:"totalValue"`
	UnlockedScenes       []string `json:"unlockedScenes"`
	UnlockedAchievements []string `json:"unlockedAchievements"`
	FishingSkill         float64  `json:"fishingSkill"`
	CastingSkill         float64  `json:"castingSkill"`
	ReelingSkill         float64  `json:"reelingSkill"`
}

// Skills returns the fishing skill levels of the player.
func (p Player) Skills() fishing.Skills {
	return fishing.Skills{Fishing: p.FishingSkill, Casting: p.CastingSkill, Reeling: p.ReelingSkill}
}

// HasScene reports whether the scene is unlocked.
func (p Player) HasScene(id string) bool {
	return slices.Contains(p.UnlockedScenes, id)
}

// Equipment is the equipped gear: exactly one of each slot.
//
// Invariant: Lure.Durability and Line.Durability are in [0, 100].
type Equipment struct {
	Rod  catalog.Rod  `json:"rod"`
	Reel catalog.Reel `json:"reel"`
	Lure catalog.Lure `json:"lure"`
	Line catalog.Line `json:"line"`
}

// Gear returns the equipment as used by the fishing formulas.
func (e Equipment) Gear() fishing.Gear {
	return fishing.Gear{Rod: e.Rod, Reel: e.Reel, Lure: e.Lure, Line: e.Line}
}

// WearLure reduces lure durability by n, clamped at 0.
func (e *Equipment) WearLure(n float64) {
	e.Lure.Durability = clampDurability(e.Lure.Durability - n)
}

// WearLine reduces line durability by n, clamped at 0.
func (e *Equipment) WearLine(n float64) {
	e.Line.Durability = clampDurability(e.Line.Durability - n)
}

func clampDurability(v float64) float64 {
	return max(0, min(catalog.MaxDurability, v))
}

// OwnedLure is a stack of identical lures. Lure.Durability tracks the lure that
// would be equipped next from this stack.
type OwnedLure struct {
	Lure     catalog.Lure `json:"lure"`
	Quantity int          `json:"quantity"`
}

// CaughtFish is one landed fish. It is never mutated after creation.
type CaughtFish struct {
	InstanceID string         `json:"instanceId"`
	FishID     int            `json:"fishId"`
	Name       string         `json:"name"`
	Species    string         `json:"species"`
	Rarity     catalog.Rarity `json:"rarity"`
	Weight     float64        `json:"weight"`
	Size       float64        `json:"size"`
	Value      int            `json:"value"`
	SceneID    string         `json:"sceneId"`
	CaughtAt   time.Time      `json:"caughtAt"`
}

// Inventory holds owned lures, the append-only catch log, and the photo album.
//
// Invariant: every PhotoAlbum id names an entry of CaughtFish.
type Inventory struct {
	Lures      []OwnedLure  `json:"lures"`
	CaughtFish []CaughtFish `json:"caughtFish"`
	PhotoAlbum []string     `json:"photoAlbum"`
}

func (inv *Inventory) lureStack(id string) (int, bool) {
	for i, l := range inv.Lures {
		if l.Lure.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Achievement is a one-time milestone.
//
// Invariant: Unlocked never transitions from true to false.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Reward      int    `json:"reward"`
	Unlocked    bool   `json:"unlocked"`
}

// TaskType selects how task progress is counted.
type TaskType string

const (
	TaskQuantity TaskType = "quantity"
	TaskSpecific TaskType = "specific"
	TaskWeight   TaskType = "weight"
)

// TaskTarget is the completion condition of a task. FishID nil matches any fish.
type TaskTarget struct {
	FishID *int    `json:"fishId,omitempty"`
	Count  int     `json:"count,omitempty"`
	Weight float64 `json:"weight,omitempty"`
}

// Task is a claimable objective.
type Task struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Type        TaskType   `json:"type"`
	Target      TaskTarget `json:"target"`
	Reward      int        `json:"reward"`
	Progress    float64    `json:"progress"`
}

// Complete reports whether the task's target is met.
func (t Task) Complete() bool {
	switch t.Type {
	case TaskQuantity:
		return t.Progress >= float64(t.Target.Count)
	case TaskSpecific:
		return t.Progress >= float64(max(t.Target.Count, 1))
	case TaskWeight:
		return t.Progress >= t.Target.Weight
	default:
		return false
	}
}

func (t Task) matches(fishID int) bool {
	return t.Target.FishID == nil || *t.Target.FishID == fishID
}

// Graphics quality levels.
const (
	GraphicsLow    = "low"
	GraphicsMedium = "medium"
	GraphicsHigh   = "high"
)

// Control schemes.
const (
	ControlsTouch = "touch"
	ControlsGyro  = "gyro"
)

// Settings are the user preferences.
type Settings struct {
	Sound     bool   `json:"sound"`
	Vibration bool   `json:"vibration"`
	Graphics  string `json:"graphics"`
	Controls  string `json:"controls"`
	DarkMode  bool   `json:"darkMode"`
}

// Validate checks the enumerated fields.
func (s Settings) Validate() error {
	switch s.Graphics {
	case GraphicsLow, GraphicsMedium, GraphicsHigh:
	default:
		return ErrInvalidSettings
	}
	switch s.Controls {
	case ControlsTouch, ControlsGyro:
	default:
		return ErrInvalidSettings
	}
	return nil
}

// FishRecord is the collection entry of one species.
type FishRecord struct {
	Caught         int       `json:"caught"`
	HeaviestWeight float64   `json:"heaviestWeight"`
	FirstCaughtAt  time.Time `json:"firstCaughtAt"`
}

// Statistics maps species id to its collection entry.
type Statistics map[int]FishRecord

// Screen is the view the player is on.
type Screen string

const (
	ScreenMainMenu    Screen = "mainMenu"
	ScreenFishing     Screen = "fishing"
	ScreenSceneSelect Screen = "sceneSelect"
	ScreenShop        Screen = "shop"
	ScreenCollection  Screen = "collection"
	ScreenSettings    Screen = "settings"
)

// Valid reports whether s is a known screen.
func (s Screen) Valid() bool {
	switch s {
	case ScreenMainMenu, ScreenFishing, ScreenSceneSelect, ScreenShop, ScreenCollection, ScreenSettings:
		return true
	}
	return false
}

// Profile is the complete persistent state of one player.
type Profile struct {
	Player       Player
	Equipment    Equipment
	Inventory    Inventory
	Achievements []Achievement
	Tasks        []Task
	Settings     Settings
	Statistics   Statistics
}

// Clone returns a deep copy of the profile.
func (p *Profile) Clone() Profile {
	c := *p
	c.Player.UnlockedScenes = slices.Clone(p.Player.UnlockedScenes)
	c.Player.UnlockedAchievements = slices.Clone(p.Player.UnlockedAchievements)
	c.Inventory.Lures = slices.Clone(p.Inventory.Lures)
	c.Inventory.CaughtFish = slices.Clone(p.Inventory.CaughtFish)
	c.Inventory.PhotoAlbum = slices.Clone(p.Inventory.PhotoAlbum)
	c.Achievements = slices.Clone(p.Achievements)
	c.Tasks = make([]Task, len(p.Tasks))
	for i, t := range p.Tasks {
		c.Tasks[i] = t
		if t.Target.FishID != nil {
			id := *t.Target.FishID
			c.Tasks[i].Target.FishID = &id
		}
	}
	c.Statistics = maps.Clone(p.Statistics)
	return c
}
