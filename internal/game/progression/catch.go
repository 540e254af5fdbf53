package progression

import (
	"math"
	"slices"
	"time"

	"github.com/cory-johannsen/lurefish/internal/game/catalog"
	"github.com/cory-johannsen/lurefish/internal/game/fishing"
)

// bigCatchWeight is the weight in kg a fish must exceed for the big catch achievement.
const bigCatchWeight = 10

// masterAnglerCount is the number of fish needed for the master angler achievement.
const masterAnglerCount = 100

// CatchResult describes everything ApplyCatch changed.
type CatchResult struct {
	Fish         CaughtFish
	LevelBefore  int
	LevelAfter   int
	Achievements []Achievement // newly unlocked
	TasksReady   []Task        // newly completed, awaiting a claim
}

// LeveledUp reports whether the catch raised the player's level.
func (r CatchResult) LeveledUp() bool {
	return r.LevelAfter > r.LevelBefore
}

// LevelForExp derives the level from cumulative experience.
//
// Postcondition: result is in [1, MaxLevel].
func LevelForExp(exp int, k catalog.Constants) int {
	if k.ExpPerLevel <= 0 {
		return 1
	}
	return max(1, min(k.MaxLevel, 1+exp/k.ExpPerLevel))
}

// ApplyCatch records a landed fish and applies every consequence in one step:
// the catch log, coins, experience and level, totals, statistics, task progress,
// and achievements.
//
// Precondition: c.Fish must be non-nil.
// Postcondition: exactly one CaughtFish is appended; achievements only unlock.
func (p *Profile) ApplyCatch(cat *catalog.Catalog, c fishing.Catch, sceneID, instanceID string, at time.Time) CatchResult {
	fish := CaughtFish{
		InstanceID: instanceID,
		FishID:     c.Fish.ID,
		Name:       c.Fish.Name,
		Species:    c.Fish.Species,
		Rarity:     c.Fish.Rarity,
		Weight:     c.Weight,
		Size:       c.Size,
		Value:      c.Value,
		SceneID:    sceneID,
		CaughtAt:   at,
	}
	res := CatchResult{Fish: fish, LevelBefore: p.Player.Level}

	p.Inventory.CaughtFish = append(p.Inventory.CaughtFish, fish)
	p.Player.Coins += c.Value
	p.Player.Exp += c.Exp
	p.Player.TotalFishCaught++
	p.Player.TotalValue += c.Value
	p.Player.Level = max(p.Player.Level, LevelForExp(p.Player.Exp, cat.Constants()))
	res.LevelAfter = p.Player.Level

	p.recordStatistics(fish)
	res.TasksReady = p.advanceTasks(fish)
	res.Achievements = p.checkAchievements(cat, fish)
	return res
}

func (p *Profile) recordStatistics(f CaughtFish) {
	if p.Statistics == nil {
		p.Statistics = Statistics{}
	}
	rec, seen := p.Statistics[f.FishID]
	if !seen {
		rec.FirstCaughtAt = f.CaughtAt
	}
	rec.Caught++
	rec.HeaviestWeight = math.Max(rec.HeaviestWeight, f.Weight)
	p.Statistics[f.FishID] = rec
}

func (p *Profile) advanceTasks(f CaughtFish) []Task {
	var ready []Task
	for i := range p.Tasks {
		t := &p.Tasks[i]
		was := t.Complete()
		switch t.Type {
		case TaskQuantity:
			if t.matches(f.FishID) {
				t.Progress = math.Min(t.Progress+1, float64(t.Target.Count))
			}
		case TaskSpecific:
			if t.matches(f.FishID) {
				t.Progress = float64(max(t.Target.Count, 1))
			}
		case TaskWeight:
			t.Progress = math.Round((t.Progress+f.Weight)*100) / 100
		}
		if !was && t.Complete() {
			ready = append(ready, *t)
		}
	}
	return ready
}

func (p *Profile) checkAchievements(cat *catalog.Catalog, f CaughtFish) []Achievement {
	var unlocked []Achievement
	for i := range p.Achievements {
		a := &p.Achievements[i]
		if a.Unlocked || !p.achieved(cat, a.ID, f) {
			continue
		}
		a.Unlocked = true
		p.Player.Coins += a.Reward
		if !slices.Contains(p.Player.UnlockedAchievements, a.ID) {
			p.Player.UnlockedAchievements = append(p.Player.UnlockedAchievements, a.ID)
		}
		unlocked = append(unlocked, *a)
	}
	return unlocked
}

func (p *Profile) achieved(cat *catalog.Catalog, id string, f CaughtFish) bool {
	switch id {
	case AchievementFirstCatch:
		return p.Player.TotalFishCaught >= 1
	case AchievementMasterAngler:
		return p.Player.TotalFishCaught >= masterAnglerCount
	case AchievementBigCatch:
		return f.Weight > bigCatchWeight
	case AchievementRareCollector:
		rare := cat.RareSpecies()
		if len(rare) == 0 {
			return false
		}
		for _, id := range rare {
			if p.Statistics[id].Caught == 0 {
				return false
			}
		}
		return true
	default:
		return false
	}
}
