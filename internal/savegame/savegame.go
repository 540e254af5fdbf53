package savegame

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/lurefish/internal/game/catalog"
	"github.com/cory-johannsen/lurefish/internal/game/environment"
	"github.com/cory-johannsen/lurefish/internal/game/progression"
	"github.com/cory-johannsen/lurefish/internal/gameserver"
	"github.com/cory-johannsen/lurefish/internal/storage"
)

// Saves reads and writes a saved game through a storage.Manager.
type Saves struct {
	m      *storage.Manager
	cat    *catalog.Catalog
	logger *zap.Logger
}

// New creates Saves over store.
//
// Precondition: store, cat and logger must be non-nil.
func New(store storage.Store, cat *catalog.Catalog, logger *zap.Logger) *Saves {
	if cat == nil {
		panic("savegame.New: catalog must not be nil")
	}
	return &Saves{
		m:      storage.NewManager(store, ManagerConfig(), logger),
		cat:    cat,
		logger: logger,
	}
}

// Manager exposes export, import, validation and diagnostics.
func (s *Saves) Manager() *storage.Manager {
	return s.m
}

// Load assembles a snapshot from storage. Each key that is missing, unreadable or
// fails its check falls back to the value of a new game.
func (s *Saves) Load(ctx context.Context) gameserver.Snapshot {
	def := progression.NewProfile(s.cat)
	gs := load(ctx, s, KeyGameState, GameState{
		Screen:       progression.ScreenMainMenu,
		CurrentScene: progression.StartingScene,
		Weather:      environment.DefaultWeather(),
		Time:         environment.DefaultTime(),
	}, checkGameState)

	snap := gameserver.Snapshot{
		Player:       load(ctx, s, KeyPlayer, def.Player, checkPlayer),
		Equipment:    load(ctx, s, KeyEquipment, def.Equipment, checkEquipment),
		Inventory:    load(ctx, s, KeyInventory, def.Inventory, checkInventory),
		Achievements: load(ctx, s, KeyAchievements, def.Achievements, checkAchievements),
		Tasks:        load(ctx, s, KeyTasks, def.Tasks, checkTasks),
		Settings:     load(ctx, s, KeySettings, def.Settings, checkSettings),
		Statistics:   load(ctx, s, KeyStatistics, def.Statistics, checkStatistics),
		Weather:      gs.Weather,
		Time:         gs.Time,
		Scene:        gs.CurrentScene,
		Screen:       gs.Screen,
	}
	info := s.m.Info(ctx)
	s.logger.Info("saved game loaded",
		zap.Int("keys", info.TotalKeys),
		zap.Time("last_save", info.LastSave),
	)
	return snap
}

func load[T any](ctx context.Context, s *Saves, key string, def T, check func(T) []string) T {
	v := storage.Load(ctx, s.m, key, def)
	if issues := check(v); len(issues) > 0 {
		s.logger.Warn("saved value failed its check, using default",
			zap.String("key", key),
			zap.Strings("issues", issues),
		)
		return def
	}
	return v
}

// Values returns the document stored under each data key for snap.
func Values(snap gameserver.Snapshot) map[string]any {
	return map[string]any{
		KeyPlayer:       snap.Player,
		KeyEquipment:    snap.Equipment,
		KeyInventory:    snap.Inventory,
		KeyAchievements: snap.Achievements,
		KeyTasks:        snap.Tasks,
		KeySettings:     snap.Settings,
		KeyGameState:    gameStateOf(snap),
		KeyStatistics:   snap.Statistics,
	}
}

func gameStateOf(snap gameserver.Snapshot) GameState {
	return GameState{
		Screen:       snap.Screen,
		CurrentScene: snap.Scene,
		Weather:      snap.Weather,
		Time:         snap.Time,
	}
}

// SaveKey writes the document of one key taken from snap.
func (s *Saves) SaveKey(ctx context.Context, key string, snap gameserver.Snapshot) error {
	v, ok := Values(snap)[key]
	if !ok {
		return fmt.Errorf("saving %q: unknown key", key)
	}
	return s.m.Save(ctx, key, v)
}

// SaveAll writes every key of snap.
//
// Postcondition: a failing key does not stop the others; all failures are joined.
func (s *Saves) SaveAll(ctx context.Context, snap gameserver.Snapshot) error {
	var errs []error
	values := Values(snap)
	for _, sc := range Schemas() {
		if err := s.m.Save(ctx, sc.Key, values[sc.Key]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
