package progression

import (
	"fmt"
	"slices"

	"github.com/cory-johannsen/lurefish/internal/game/catalog"
)

// BuyEquipment purchases item.
//
// Postcondition: on ErrInsufficientFunds nothing changes. Otherwise the cost is deducted;
// a rod, reel, or line replaces the equipped one (a new line has full durability) and a
// lure is added to the inventory stack of its id. Buying the equipped lure while it is
// worn out replaces it, leaving the stack size unchanged. Coins never become negative.
func (p *Profile) BuyEquipment(item catalog.Item) error {
	if item == nil {
		return ErrUnknownItem
	}
	if p.Player.Coins < item.Price() {
		return fmt.Errorf("buying %s %q for %d: %w", item.Slot(), item.ItemID(), item.Price(), ErrInsufficientFunds)
	}
	switch it := item.(type) {
	case catalog.Rod:
		p.Equipment.Rod = it
	case catalog.Reel:
		p.Equipment.Reel = it
	case catalog.Line:
		it.Durability = catalog.MaxDurability
		p.Equipment.Line = it
	case catalog.Lure:
		if i, ok := p.Inventory.lureStack(it.ID); ok {
			p.Inventory.Lures[i].Quantity++
			if it.ID == p.Equipment.Lure.ID && p.Equipment.Lure.Durability <= 0 {
				// The worn copy is discarded for the new one.
				p.Inventory.Lures[i].Quantity--
				p.Inventory.Lures[i].Lure.Durability = catalog.MaxDurability
				p.Equipment.Lure.Durability = catalog.MaxDurability
			}
		} else {
			p.Inventory.Lures = append(p.Inventory.Lures, OwnedLure{Lure: it, Quantity: 1})
		}
	default:
		return fmt.Errorf("buying %T: %w", item, ErrUnknownItem)
	}
	p.Player.Coins -= item.Price()
	return nil
}

// UnlockScene purchases access to a scene.
//
// Postcondition: on error nothing changes; otherwise the unlock cost is deducted and the
// scene id appended to Player.UnlockedScenes.
func (p *Profile) UnlockScene(cat *catalog.Catalog, sceneID string) error {
	scene, ok := cat.Scene(sceneID)
	if !ok {
		return fmt.Errorf("unlocking %q: %w", sceneID, ErrUnknownScene)
	}
	if p.Player.HasScene(sceneID) {
		return fmt.Errorf("unlocking %q: %w", sceneID, ErrAlreadyUnlocked)
	}
	if p.Player.Coins < scene.UnlockCost {
		return fmt.Errorf("unlocking %q for %d: %w", sceneID, scene.UnlockCost, ErrInsufficientFunds)
	}
	p.Player.Coins -= scene.UnlockCost
	p.Player.UnlockedScenes = append(p.Player.UnlockedScenes, sceneID)
	return nil
}

// ClaimTaskReward pays out a completed task and removes it from the active list.
//
// Postcondition: on error nothing changes; otherwise the returned task's reward has been
// added to the player's coins.
func (p *Profile) ClaimTaskReward(taskID int) (Task, error) {
	i := slices.IndexFunc(p.Tasks, func(t Task) bool { return t.ID == taskID })
	if i < 0 {
		return Task{}, fmt.Errorf("claiming task %d: %w", taskID, ErrUnknownTask)
	}
	task := p.Tasks[i]
	if !task.Complete() {
		return Task{}, fmt.Errorf("claiming task %d: %w", taskID, ErrTaskIncomplete)
	}
	p.Player.Coins += task.Reward
	p.Tasks = slices.Delete(p.Tasks, i, i+1)
	return task, nil
}

// SwitchLure equips a lure from the inventory. The durability of the lure being put
// away is stored back on its stack.
//
// Postcondition: returns ErrLureNotOwned when no stack of id exists. Switching to the
// equipped lure only replaces it when it is worn out and a spare is owned.
func (p *Profile) SwitchLure(id string) error {
	i, ok := p.Inventory.lureStack(id)
	if !ok || p.Inventory.Lures[i].Quantity <= 0 {
		return fmt.Errorf("switching to lure %q: %w", id, ErrLureNotOwned)
	}
	if p.Equipment.Lure.ID == id {
		p.ReplenishLure()
		return nil
	}
	if j, ok := p.Inventory.lureStack(p.Equipment.Lure.ID); ok {
		p.Inventory.Lures[j].Lure.Durability = p.Equipment.Lure.Durability
	}
	p.Equipment.Lure = p.Inventory.Lures[i].Lure
	return nil
}

// ReplenishLure replaces a worn-out equipped lure with a fresh one from its stack.
//
// Postcondition: returns true iff the equipped lure had no durability left and its stack
// held more than one; the stack then shrinks by one and the lure is at full durability.
func (p *Profile) ReplenishLure() bool {
	if p.Equipment.Lure.Durability > 0 {
		return false
	}
	i, ok := p.Inventory.lureStack(p.Equipment.Lure.ID)
	if !ok || p.Inventory.Lures[i].Quantity <= 1 {
		return false
	}
	p.Inventory.Lures[i].Quantity--
	p.Inventory.Lures[i].Lure.Durability = catalog.MaxDurability
	p.Equipment.Lure.Durability = catalog.MaxDurability
	return true
}

// SetSettings replaces the settings.
//
// Postcondition: returns ErrInvalidSettings and changes nothing when s is invalid.
func (p *Profile) SetSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("graphics %q controls %q: %w", s.Graphics, s.Controls, err)
	}
	p.Settings = s
	return nil
}

// AddToAlbum adds a caught fish to the photo album. Adding an album entry twice is a no-op.
func (p *Profile) AddToAlbum(instanceID string) error {
	if !slices.ContainsFunc(p.Inventory.CaughtFish, func(f CaughtFish) bool { return f.InstanceID == instanceID }) {
		return fmt.Errorf("album add %q: %w", instanceID, ErrFishNotFound)
	}
	if !slices.Contains(p.Inventory.PhotoAlbum, instanceID) {
		p.Inventory.PhotoAlbum = append(p.Inventory.PhotoAlbum, instanceID)
	}
	return nil
}

// RemoveFromAlbum removes a photo from the album.
func (p *Profile) RemoveFromAlbum(instanceID string) error {
	i := slices.Index(p.Inventory.PhotoAlbum, instanceID)
	if i < 0 {
		return fmt.Errorf("album remove %q: %w", instanceID, ErrFishNotFound)
	}
	p.Inventory.PhotoAlbum = slices.Delete(p.Inventory.PhotoAlbum, i, i+1)
	return nil
}
