package progression

import (
	"github.com/cory-johannsen/lurefish/internal/game/catalog"
)

// Achievement ids.
const (
	AchievementFirstCatch    = "first_catch"
	AchievementMasterAngler  = "master_angler"
	AchievementBigCatch      = "big_catch"
	AchievementRareCollector = "rare_collector"
)

// StartingScene is unlocked for every new player.
const StartingScene = "lake"

// starterLures is the number of catalog lures handed to a new player.
const starterLures = 3

// DefaultPlayer returns the player record of a new game.
func DefaultPlayer() Player {
	return Player{
		Level:                1,
		Coins:                1000,
		Diamonds:             10,
		UnlockedScenes:       []string{StartingScene},
		UnlockedAchievements: []string{},
		FishingSkill:         1,
		CastingSkill:         1,
		ReelingSkill:         1,
	}
}

// DefaultEquipment equips the first rod, reel, and lure of the catalog and the nylon line.
//
// Precondition: cat must be valid.
func DefaultEquipment(cat *catalog.Catalog) Equipment {
	line := cat.Lines()[0]
	if nylon, ok := cat.Line("nylon"); ok {
		line = *nylon
	}
	return Equipment{
		Rod:  cat.Rods()[0],
		Reel: cat.Reels()[0],
		Lure: cat.Lures()[0],
		Line: line,
	}
}

// DefaultInventory returns one of each of the first three catalog lures.
func DefaultInventory(cat *catalog.Catalog) Inventory {
	lures := cat.Lures()
	inv := Inventory{
		Lures:      make([]OwnedLure, 0, starterLures),
		CaughtFish: []CaughtFish{},
		PhotoAlbum: []string{},
	}
	for i := 0; i < starterLures && i < len(lures); i++ {
		inv.Lures = append(inv.Lures, OwnedLure{Lure: lures[i], Quantity: 1})
	}
	return inv
}

// DefaultAchievements returns every achievement, all locked.
func DefaultAchievements() []Achievement {
	return []Achievement{
		{ID: AchievementFirstCatch, Name: "First Catch", Description: "Land your first fish", Reward: 100},
		{ID: AchievementMasterAngler, Name: "Master Angler", Description: "Land 100 fish", Reward: 500},
		{ID: AchievementBigCatch, Name: "Big Catch", Description: "Land a fish heavier than 10 kg", Reward: 300},
		{ID: AchievementRareCollector, Name: "Rare Collector", Description: "Land every rare species", Reward: 1000},
	}
}

// DefaultTasks returns the starting task list.
func DefaultTasks() []Task {
	carp, bass := 1, 2
	return []Task{
		{
			ID: 1, Name: "Carp Season", Description: "Catch 3 common carp",
			Type: TaskQuantity, Target: TaskTarget{FishID: &carp, Count: 3}, Reward: 200,
		},
		{
			ID: 2, Name: "Bass Hunter", Description: "Catch a largemouth bass",
			Type: TaskSpecific, Target: TaskTarget{FishID: &bass}, Reward: 300,
		},
		{
			ID: 3, Name: "Heavy Haul", Description: "Land 5 kg of fish in total",
			Type: TaskWeight, Target: TaskTarget{Weight: 5}, Reward: 400,
		},
	}
}

// DefaultSettings returns the settings of a new game.
func DefaultSettings() Settings {
	return Settings{Sound: true, Vibration: true, Graphics: GraphicsMedium, Controls: ControlsTouch, DarkMode: true}
}

// NewProfile returns the profile of a new game.
func NewProfile(cat *catalog.Catalog) Profile {
	return Profile{
		Player:       DefaultPlayer(),
		Equipment:    DefaultEquipment(cat),
		Inventory:    DefaultInventory(cat),
		Achievements: DefaultAchievements(),
		Tasks:        DefaultTasks(),
		Settings:     DefaultSettings(),
		Statistics:   Statistics{},
	}
}
