// Package savegame maps the game state onto storage keys: one JSON document per
// logical part of the profile, checked on load and import, restored at startup and
// written back by a debounced per-key persister.
package savegame

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/cory-johannsen/lurefish/internal/game/catalog"
	"github.com/cory-johannsen/lurefish/internal/game/environment"
	"github.com/cory-johannsen/lurefish/internal/game/events"
	"github.com/cory-johannsen/lurefish/internal/game/progression"
	"github.com/cory-johannsen/lurefish/internal/storage"
)

// Storage keys.
const (
	KeyPlayer       = "@lure_fishing_player"
	KeyEquipment    = "@lure_fishing_equipment"
	KeyInventory    = "@lure_fishing_inventory"
	KeyAchievements = "@lure_fishing_achievements"
	KeyTasks        = "@lure_fishing_tasks"
	KeySettings     = "@lure_fishing_settings"
	KeyGameState    = "@lure_fishing_game_state"
	KeyStatistics   = "@lure_fishing_statistics"
	KeyLastSave     = "@lure_fishing_last_save"
)

// GameState is the document stored under KeyGameState.
type GameState struct {
	Screen       progression.Screen   `json:"gameState"`
	CurrentScene string               `json:"currentScene"`
	Weather      environment.Weather  `json:"weather"`
	Time         environment.GameTime `json:"time"`
}

// keyOf maps the state-change event kinds to the key they dirty.
var keyOf = map[events.Kind]string{
	events.KindPlayer:       KeyPlayer,
	events.KindEquipment:    KeyEquipment,
	events.KindInventory:    KeyInventory,
	events.KindAchievements: KeyAchievements,
	events.KindTasks:        KeyTasks,
	events.KindSettings:     KeySettings,
	events.KindGameState:    KeyGameState,
	events.KindStatistics:   KeyStatistics,
}

// KeyFor returns the storage key an event kind dirties.
func KeyFor(k events.Kind) (string, bool) {
	key, ok := keyOf[k]
	return key, ok
}

// Schemas lists every data key of a saved game. Player, equipment and inventory
// are required.
func Schemas() []storage.Schema {
	return []storage.Schema{
		{Key: KeyPlayer, Required: true, Check: typed(checkPlayer)},
		{Key: KeyEquipment, Required: true, Check: typed(checkEquipment)},
		{Key: KeyInventory, Required: true, Check: typed(checkInventory)},
		{Key: KeyAchievements, Check: typed(checkAchievements)},
		{Key: KeyTasks, Check: typed(checkTasks)},
		{Key: KeySettings, Check: typed(checkSettings)},
		{Key: KeyGameState, Check: typed(checkGameState)},
		{Key: KeyStatistics, Check: typed(checkStatistics)},
	}
}

// ManagerConfig returns the storage configuration of a saved game.
func ManagerConfig() storage.ManagerConfig {
	return storage.ManagerConfig{
		Schemas:     Schemas(),
		LastSaveKey: KeyLastSave,
		AppVersion:  storage.DefaultAppVersion,
	}
}

func typed[T any](check func(T) []string) func(json.RawMessage) []string {
	return func(raw json.RawMessage) []string {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return []string{fmt.Sprintf("corrupted data: %v", err)}
		}
		return check(v)
	}
}

func checkPlayer(p progression.Player) []string {
	var issues []string
	if p.Level < 1 {
		issues = append(issues, "invalid player level")
	}
	if p.Coins < 0 {
		issues = append(issues, "invalid coins amount")
	}
	if p.Diamonds < 0 {
		issues = append(issues, "invalid diamonds amount")
	}
	if p.Exp < 0 {
		issues = append(issues, "invalid experience")
	}
	if len(p.UnlockedScenes) == 0 {
		issues = append(issues, "no unlocked scenes")
	}
	return issues
}

func checkEquipment(e progression.Equipment) []string {
	var issues []string
	if e.Rod.ID == "" || e.Reel.ID == "" || e.Lure.ID == "" || e.Line.ID == "" {
		issues = append(issues, "missing equipped item")
	}
	if !durable(e.Lure.Durability) {
		issues = append(issues, "lure durability out of range")
	}
	if !durable(e.Line.Durability) {
		issues = append(issues, "line durability out of range")
	}
	return issues
}

func durable(d float64) bool {
	return d >= 0 && d <= catalog.MaxDurability
}

func checkInventory(inv progression.Inventory) []string {
	var issues []string
	for _, l := range inv.Lures {
		if l.Lure.ID == "" || l.Quantity < 0 {
			issues = append(issues, "invalid lure stack")
			break
		}
	}
	ids := make([]string, 0, len(inv.CaughtFish))
	for _, f := range inv.CaughtFish {
		if f.InstanceID == "" || f.Weight < 0 || f.Value < 0 {
			issues = append(issues, "invalid caught fish")
			break
		}
		ids = append(ids, f.InstanceID)
	}
	for _, id := range inv.PhotoAlbum {
		if !slices.Contains(ids, id) {
			issues = append(issues, fmt.Sprintf("photo album references unknown fish %q", id))
		}
	}
	return issues
}

func checkAchievements(as []progression.Achievement) []string {
	for _, a := range as {
		if a.ID == "" {
			return []string{"achievement without id"}
		}
	}
	return nil
}

func checkTasks(ts []progression.Task) []string {
	var issues []string
	for _, t := range ts {
		switch t.Type {
		case progression.TaskQuantity, progression.TaskSpecific, progression.TaskWeight:
		default:
			issues = append(issues, fmt.Sprintf("task %d has unknown type %q", t.ID, t.Type))
		}
		if t.Progress < 0 {
			issues = append(issues, fmt.Sprintf("task %d has negative progress", t.ID))
		}
	}
	return issues
}

func checkSettings(s progression.Settings) []string {
	if err := s.Validate(); err != nil {
		return []string{err.Error()}
	}
	return nil
}

func checkGameState(g GameState) []string {
	var issues []string
	if g.Screen != "" && !g.Screen.Valid() {
		issues = append(issues, fmt.Sprintf("unknown screen %q", g.Screen))
	}
	if g.Time.Hour < 0 || g.Time.Hour > 23 || g.Time.Minute < 0 || g.Time.Minute > 59 {
		issues = append(issues, "time of day out of range")
	}
	return issues
}

func checkStatistics(s progression.Statistics) []string {
	for id, r := range s {
		if r.Caught < 0 || r.HeaviestWeight < 0 {
			return []string{fmt.Sprintf("invalid record for fish %d", id)}
		}
	}
	return nil
}
