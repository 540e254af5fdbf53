package savegame_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/lurefish/internal/game/catalog"
	"github.com/cory-johannsen/lurefish/internal/game/events"
	"github.com/cory-johannsen/lurefish/internal/game/progression"
	"github.com/cory-johannsen/lurefish/internal/savegame"
	"github.com/cory-johannsen/lurefish/internal/storage"
)

func fastDelays() map[events.Kind]time.Duration {
	out := map[events.Kind]time.Duration{}
	for k := range savegame.DefaultDebounce {
		out[k] = 20 * time.Millisecond
	}
	return out
}

func TestPersister_DebouncesPerKey(t *testing.T) {
	g := newGame(t)
	store := newCountingStore()
	saves := savegame.New(store, g.Catalog(), zap.NewNop())
	p := savegame.NewPersister(saves, g, fastDelays(), zap.NewNop())
	p.Start(time.Hour)
	defer func() { _ = p.Stop(context.Background()) }()

	for _, graphics := range []string{"low", "medium", "high", "low", "high"} {
		require.NoError(t, g.SetSettings(progression.Settings{Graphics: graphics, Controls: "touch"}))
	}
	require.Eventually(t, func() bool { return store.count(savegame.KeySettings) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, store.count(savegame.KeySettings), "a burst is written once")
	assert.Zero(t, store.count(savegame.KeyPlayer), "unchanged keys are not written")

	got := storage.Load(context.Background(), saves.Manager(), savegame.KeySettings, progression.Settings{})
	assert.Equal(t, "high", got.Graphics)
}

func TestPersister_PurchaseWritesPlayerAndInventory(t *testing.T) {
	g := newGame(t)
	store := newCountingStore()
	saves := savegame.New(store, g.Catalog(), zap.NewNop())
	p := savegame.NewPersister(saves, g, fastDelays(), zap.NewNop())
	p.Start(time.Hour)
	defer func() { _ = p.Stop(context.Background()) }()

	require.NoError(t, g.BuyEquipment(catalog.SlotLure, "jig"))
	require.Eventually(t, func() bool {
		return store.count(savegame.KeyPlayer) == 1 && store.count(savegame.KeyInventory) == 1
	}, time.Second, 5*time.Millisecond)

	player := storage.Load(context.Background(), saves.Manager(), savegame.KeyPlayer, progression.Player{})
	assert.Equal(t, 1000-220, player.Coins)
	assert.Zero(t, p.Pending())
}

func TestPersister_StopFlushesAndSavesAll(t *testing.T) {
	ctx := context.Background()
	g := newGame(t)
	store := newCountingStore()
	saves := savegame.New(store, g.Catalog(), zap.NewNop())
	delays := map[events.Kind]time.Duration{events.KindSettings: time.Hour}
	p := savegame.NewPersister(saves, g, delays, zap.NewNop())
	p.Start(time.Hour)

	require.NoError(t, g.SetSettings(progression.Settings{Graphics: "low", Controls: "gyro"}))
	require.Eventually(t, func() bool { return p.Pending() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, p.Stop(ctx))
	require.NoError(t, p.Stop(ctx))
	assert.Zero(t, p.Pending())
	assert.Equal(t, 2, store.count(savegame.KeySettings), "flushed once, then the full save")
	for _, s := range savegame.Schemas() {
		assert.GreaterOrEqual(t, store.count(s.Key), 1, s.Key)
	}
	assert.True(t, saves.Manager().Validate(ctx).Valid)
}

func TestPersister_AutoSave(t *testing.T) {
	g := newGame(t)
	store := newCountingStore()
	saves := savegame.New(store, g.Catalog(), zap.NewNop())
	p := savegame.NewPersister(saves, g, nil, zap.NewNop())
	p.Start(15 * time.Millisecond)
	defer func() { _ = p.Stop(context.Background()) }()

	require.Eventually(t, func() bool { return store.count(savegame.KeyStatistics) >= 2 }, time.Second, 5*time.Millisecond)
}

func TestPersister_SaveNow(t *testing.T) {
	ctx := context.Background()
	g := newGame(t)
	store := newCountingStore()
	saves := savegame.New(store, g.Catalog(), zap.NewNop())
	p := savegame.NewPersister(saves, g, nil, zap.NewNop())

	require.NoError(t, p.SaveNow(ctx), "works before Start")
	assert.Equal(t, 1, store.count(savegame.KeyPlayer))

	p.Start(time.Hour)
	defer func() { _ = p.Stop(ctx) }()
	require.NoError(t, p.SaveNow(ctx))
	assert.Equal(t, 2, store.count(savegame.KeyPlayer))
}

func TestPersister_RestoreAndReset(t *testing.T) {
	ctx := context.Background()
	g := newGame(t)
	saves := savegame.New(newCountingStore(), g.Catalog(), zap.NewNop())
	require.NoError(t, g.BuyEquipment(catalog.SlotLure, "spoon"))
	require.NoError(t, saves.SaveAll(ctx, g.Snapshot()))

	other := newGame(t)
	p := savegame.NewPersister(saves, other, nil, zap.NewNop())
	p.Restore(ctx)
	assert.Equal(t, 950, other.Snapshot().Player.Coins)

	require.NoError(t, p.Reset(ctx))
	assert.Equal(t, progression.DefaultPlayer().Coins, other.Snapshot().Player.Coins)
	assert.Zero(t, saves.Manager().Info(ctx).TotalKeys)
}

func TestPersister_ImportRejectsGarbage(t *testing.T) {
	g := newGame(t)
	saves := savegame.New(newCountingStore(), g.Catalog(), zap.NewNop())
	p := savegame.NewPersister(saves, g, nil, zap.NewNop())
	_, err := p.Import(context.Background(), []byte(`not json`))
	assert.Error(t, err)
}

func TestDelaysFromConfig(t *testing.T) {
	got := savegame.DelaysFromConfig(map[string]time.Duration{"settings": time.Second})
	assert.Equal(t, map[events.Kind]time.Duration{events.KindSettings: time.Second}, got)
}

func TestNewPersister_Panics(t *testing.T) {
	assert.Panics(t, func() { savegame.NewPersister(nil, nil, nil, zap.NewNop()) })
}
