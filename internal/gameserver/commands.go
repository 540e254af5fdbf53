package gameserver

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/lurefish/internal/game/catalog"
	"github.com/cory-johannsen/lurefish/internal/game/events"
	"github.com/cory-johannsen/lurefish/internal/game/fishing"
	"github.com/cory-johannsen/lurefish/internal/game/progression"
)

// BuyEquipment purchases the catalog item id for slot.
//
// Postcondition: on error nothing changes and an error notification is published.
func (g *Game) BuyEquipment(slot catalog.Slot, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	item, ok := g.cat.Item(slot, id)
	if !ok {
		return g.reject(fmt.Errorf("buying %s %q: %w", slot, id, progression.ErrUnknownItem), "There is no %s called %q.", slot, id)
	}
	if err := g.profile.BuyEquipment(item); err != nil {
		if errors.Is(err, progression.ErrInsufficientFunds) {
			return g.reject(err, "Not enough coins for %s (%d needed).", item.ItemName(), item.Price())
		}
		return g.reject(err, "Could not buy %s.", item.ItemName())
	}

	g.notify(events.SeveritySuccess, "Purchased %s for %d coins.", item.ItemName(), item.Price())
	if slot == catalog.SlotLure {
		g.bus.Changed(events.KindPlayer, events.KindInventory, events.KindEquipment)
	} else {
		g.bus.Changed(events.KindPlayer, events.KindEquipment)
	}
	g.logger.Info("purchase",
		zap.String("slot", string(slot)),
		zap.String("item", id),
		zap.Int("cost", item.Price()),
		zap.Int("coins", g.profile.Player.Coins),
	)
	return nil
}

// UnlockScene buys access to a scene and, when idle, travels there.
//
// Postcondition: on error nothing changes and an error notification is published.
func (g *Game) UnlockScene(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.profile.UnlockScene(g.cat, id); err != nil {
		switch {
		case errors.Is(err, progression.ErrInsufficientFunds):
			scene, _ := g.cat.Scene(id)
			return g.reject(err, "Not enough coins to unlock %s (%d needed).", scene.Name, scene.UnlockCost)
		case errors.Is(err, progression.ErrAlreadyUnlocked):
			return g.reject(err, "That scene is already unlocked.")
		default:
			return g.reject(err, "There is no scene called %q.", id)
		}
	}
	scene, _ := g.cat.Scene(id)
	g.notify(events.SeveritySuccess, "Unlocked %s!", scene.Name)
	if g.fishing.Stage == fishing.StageIdle {
		g.scene = id
	}
	g.bus.Changed(events.KindPlayer, events.KindGameState)
	return nil
}

// ClaimTaskReward pays out a completed task.
//
// Postcondition: on error nothing changes and an error notification is published.
func (g *Game) ClaimTaskReward(id int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	task, err := g.profile.ClaimTaskReward(id)
	if err != nil {
		if errors.Is(err, progression.ErrTaskIncomplete) {
			return g.reject(err, "That task is not complete yet.")
		}
		return g.reject(err, "There is no task %d.", id)
	}
	g.notify(events.SeveritySuccess, "Reward claimed: %s (+%d coins)", task.Name, task.Reward)
	g.bus.Changed(events.KindPlayer, events.KindTasks)
	return nil
}

// SwitchLure equips an owned lure.
//
// Postcondition: a no-op returning nil while a cast cycle is running.
func (g *Game) SwitchLure(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.fishing.Stage.Active() {
		g.ignored("switch lure")
		return nil
	}
	if err := g.profile.SwitchLure(id); err != nil {
		return g.reject(err, "You do not own a lure called %q.", id)
	}
	g.notify(events.SeverityInfo, "Switched to %s.", g.profile.Equipment.Lure.Name)
	g.bus.Changed(events.KindEquipment, events.KindInventory)
	return nil
}

// SetSettings replaces the user settings.
func (g *Game) SetSettings(s progression.Settings) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.profile.SetSettings(s); err != nil {
		return g.reject(err, "Invalid settings.")
	}
	g.bus.Changed(events.KindSettings)
	return nil
}

// SetScene travels to an unlocked scene.
//
// Postcondition: a no-op returning nil while a cast cycle is running.
func (g *Game) SetScene(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	scene, ok := g.cat.Scene(id)
	if !ok {
		return g.reject(fmt.Errorf("scene %q: %w", id, progression.ErrUnknownScene), "There is no scene called %q.", id)
	}
	if !g.profile.Player.HasScene(id) {
		return g.reject(fmt.Errorf("scene %q: %w", id, progression.ErrSceneLocked), "%s is locked. Unlock it for %d coins.", scene.Name, scene.UnlockCost)
	}
	if g.fishing.Stage.Active() {
		g.ignored("set scene")
		return nil
	}
	if g.scene == id {
		return nil
	}
	g.scene = id
	g.notify(events.SeverityInfo, "Welcome to %s.", scene.Name)
	g.bus.Changed(events.KindGameState)
	return nil
}

// SetScreen records the view the player is on.
func (g *Game) SetScreen(s progression.Screen) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !s.Valid() {
		return fmt.Errorf("screen %q: %w", s, ErrInvalidScreen)
	}
	if g.screen == s {
		return nil
	}
	g.screen = s
	g.bus.Changed(events.KindGameState)
	return nil
}

// AddToAlbum puts a caught fish in the photo album.
func (g *Game) AddToAlbum(instanceID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.profile.AddToAlbum(instanceID); err != nil {
		return g.reject(err, "No caught fish %q.", instanceID)
	}
	g.bus.Changed(events.KindInventory)
	return nil
}

// RemoveFromAlbum takes a photo out of the album.
func (g *Game) RemoveFromAlbum(instanceID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.profile.RemoveFromAlbum(instanceID); err != nil {
		return g.reject(err, "No photo of %q in the album.", instanceID)
	}
	g.bus.Changed(events.KindInventory)
	return nil
}
