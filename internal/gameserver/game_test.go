package gameserver

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/lurefish/internal/game/catalog"
	"github.com/cory-johannsen/lurefish/internal/game/dice"
	"github.com/cory-johannsen/lurefish/internal/game/events"
	"github.com/cory-johannsen/lurefish/internal/game/fishing"
	"github.com/cory-johannsen/lurefish/internal/game/progression"
	"github.com/cory-johannsen/lurefish/internal/scripting"
)

// frozenTimings keep the stage timers slower than the tests, which drive the stage callbacks directly.
func frozenTimings() Timings {
	return Timings{
		CastDelay:         time.Hour,
		BiteCheckInterval: time.Second,
		BiteTimeout:       2 * time.Second,
		ReelTickInterval:  100 * time.Millisecond,
		ResultDelay:       time.Hour,
		ClockTick:         time.Hour,
		NotificationTTL:   3 * time.Second,
	}
}

type testGame struct {
	*Game
	events chan events.Event
}

func newTestGame(t require.TestingT, roll float64, mutate ...func(*Options)) *testGame {
	ids := 0
	opts := Options{
		Catalog: catalog.Default(),
		Params:  fishing.DefaultParams(),
		Timings: frozenTimings(),
		Roller:  dice.NewLoggedRoller(dice.Fixed{F: roll}, zap.NewNop()),
		Logger:  zap.NewNop(),
		Now:     func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
		NewID: func() string {
			ids++
			return fmt.Sprintf("fish-%d", ids)
		},
	}
	for _, m := range mutate {
		m(&opts)
	}
	g := New(opts)
	ch := make(chan events.Event, 256)
	g.Events().Subscribe(ch)
	if tt, ok := t.(*testing.T); ok {
		tt.Cleanup(g.Stop)
	}
	return &testGame{Game: g, events: ch}
}

// notifications drains the queued notifications.
func (tg *testGame) notifications() []events.Event {
	var out []events.Event
	for {
		select {
		case ev := <-tg.events:
			if ev.Kind == events.KindNotification {
				out = append(out, ev)
			}
		default:
			return out
		}
	}
}

func hasSeverity(evs []events.Event, sev events.Severity) bool {
	for _, ev := range evs {
		if ev.Severity == sev {
			return true
		}
	}
	return false
}

// hook casts, lands, and hooks the first eligible fish.
func (tg *testGame) hook(t *testing.T) {
	t.Helper()
	require.NoError(t, tg.CastLine())
	tg.mu.Lock()
	defer tg.mu.Unlock()
	tg.land()
	require.Equal(t, fishing.StageWaiting, tg.fishing.Stage)
	tg.biteCheck()
	require.Equal(t, fishing.StageHooked, tg.fishing.Stage)
}

func TestNew_InitialState(t *testing.T) {
	tg := newTestGame(t, 0.5)
	s := tg.Snapshot()

	assert.Equal(t, fishing.StageIdle, s.Fishing.Stage)
	assert.Equal(t, 1, s.Player.Level)
	assert.Equal(t, 1000, s.Player.Coins)
	assert.Equal(t, progression.StartingScene, s.Scene)
	assert.Equal(t, progression.ScreenMainMenu, s.Screen)
	assert.Equal(t, "sunny", s.Weather.Condition)
	assert.Equal(t, 12, s.Time.Hour)
	assert.Equal(t, "spring", s.Time.Season)
	assert.Empty(t, s.Inventory.CaughtFish)
}

func TestNew_PanicsOnMissingDependencies(t *testing.T) {
	roller := dice.NewLoggedRoller(dice.Fixed{}, zap.NewNop())
	assert.Panics(t, func() { New(Options{Roller: roller, Logger: zap.NewNop()}) })
	assert.Panics(t, func() { New(Options{Catalog: catalog.Default(), Logger: zap.NewNop()}) })
	assert.Panics(t, func() { New(Options{Catalog: catalog.Default(), Roller: roller}) })
}

func TestCastLine_WearsLureAndEntersCasting(t *testing.T) {
	tg := newTestGame(t, 0)
	before := tg.Snapshot().Equipment.Lure.Durability

	require.NoError(t, tg.CastLine())

	s := tg.Snapshot()
	assert.Equal(t, fishing.StageCasting, s.Fishing.Stage)
	assert.Equal(t, uint64(1), s.Fishing.Cycle)
	assert.InDelta(t, before-1, s.Equipment.Lure.Durability, 1e-9)
}

func TestCastLine_NoOpOutsideIdle(t *testing.T) {
	tg := newTestGame(t, 0)
	require.NoError(t, tg.CastLine())
	first := tg.Snapshot()

	require.NoError(t, tg.CastLine())

	second := tg.Snapshot()
	assert.Equal(t, first.Fishing, second.Fishing)
	assert.Equal(t, first.Equipment, second.Equipment)
}

func TestCastLine_WornLureWarns(t *testing.T) {
	tg := newTestGame(t, 0)
	tg.profile.Equipment.Lure.Durability = 0

	err := tg.CastLine()

	require.ErrorIs(t, err, fishing.ErrLureWorn)
	assert.Equal(t, fishing.StageIdle, tg.Snapshot().Fishing.Stage)
	assert.True(t, hasSeverity(tg.notifications(), events.SeverityWarning))
}

func TestCastLine_WornLureUsesSpare(t *testing.T) {
	tg := newTestGame(t, 0)
	tg.profile.Equipment.Lure.Durability = 0
	tg.profile.Inventory.Lures[0].Quantity = 2

	require.NoError(t, tg.CastLine())

	s := tg.Snapshot()
	assert.Equal(t, fishing.StageCasting, s.Fishing.Stage)
	assert.Equal(t, 1, s.Inventory.Lures[0].Quantity)
	assert.Equal(t, catalog.MaxDurability-tg.params.CastLureWear, s.Equipment.Lure.Durability)
}

func TestCastLine_BoughtLureReplacesWornOne(t *testing.T) {
	tg := newTestGame(t, 0)
	tg.profile.Equipment.Lure.Durability = 0
	require.Equal(t, 1, tg.profile.Inventory.Lures[0].Quantity)
	lure := tg.profile.Equipment.Lure.ID
	require.ErrorIs(t, tg.CastLine(), fishing.ErrLureWorn)

	require.NoError(t, tg.BuyEquipment(catalog.SlotLure, lure))
	require.NoError(t, tg.CastLine())

	s := tg.Snapshot()
	assert.Equal(t, fishing.StageCasting, s.Fishing.Stage)
	assert.Equal(t, 1, s.Inventory.Lures[0].Quantity)
}

func TestBiteCheck_TimeoutReturnsToIdle(t *testing.T) {
	tg := newTestGame(t, 0.99)
	require.NoError(t, tg.CastLine())
	tg.mu.Lock()
	tg.land()
	tg.biteCheck()
	assert.Equal(t, fishing.StageWaiting, tg.fishing.Stage)
	tg.biteCheck()
	st := tg.fishing
	tg.mu.Unlock()

	assert.Equal(t, fishing.StageIdle, st.Stage)
	assert.Equal(t, fishing.OutcomeNoBite, st.Outcome)
	assert.True(t, hasSeverity(tg.notifications(), events.SeverityInfo))
}

func TestBiteCheck_ScriptCanSuppressBites(t *testing.T) {
	tg := newTestGame(t, 0, func(o *Options) { o.Scripts = fixedModifier(0) })
	require.NoError(t, tg.CastLine())
	tg.mu.Lock()
	defer tg.mu.Unlock()
	tg.land()
	tg.biteCheck()
	assert.Equal(t, fishing.StageWaiting, tg.fishing.Stage)
}

type fixedModifier float64

func (f fixedModifier) BiteModifier(scripting.BiteInfo) float64 { return float64(f) }

func TestHookedFish_IsFromSceneWhitelist(t *testing.T) {
	tg := newTestGame(t, 0)
	tg.hook(t)

	s := tg.Snapshot()
	require.NotNil(t, s.Fishing.TargetFish)
	scene, _ := tg.cat.Scene(s.Scene)
	assert.Contains(t, scene.FishIDs(), s.Fishing.TargetFish.ID)
}

func TestReelIn_HookedToReelingThenCaught(t *testing.T) {
	tg := newTestGame(t, 0)
	tg.hook(t)
	require.NoError(t, tg.ReelIn())
	require.Equal(t, fishing.StageReeling, tg.Snapshot().Fishing.Stage)

	tg.mu.Lock()
	tg.fishing.Progress = 99.9
	tg.reelTick()
	tg.mu.Unlock()

	s := tg.Snapshot()
	require.Equal(t, fishing.StageCaught, s.Fishing.Stage)
	require.Len(t, s.Inventory.CaughtFish, 1)
	fish := s.Inventory.CaughtFish[0]
	assert.Equal(t, "fish-1", fish.InstanceID)
	assert.Equal(t, 1, fish.FishID)
	assert.InDelta(t, 1.0, fish.Weight, 1e-9)
	assert.Equal(t, 11, fish.Value)
	assert.Equal(t, progression.StartingScene, fish.SceneID)
	assert.Equal(t, 1, s.Player.TotalFishCaught)
	// value plus the first catch reward
	assert.Equal(t, 1000+11+100, s.Player.Coins)
	assert.Contains(t, s.Player.UnlockedAchievements, progression.AchievementFirstCatch)
	assert.True(t, hasSeverity(tg.notifications(), events.SeveritySuccess))

	// caught waits for an acknowledgement
	require.NoError(t, tg.Acknowledge())
	s = tg.Snapshot()
	assert.Equal(t, fishing.StageIdle, s.Fishing.Stage)
	assert.Nil(t, s.Fishing.TargetFish)
	assert.Len(t, s.Inventory.CaughtFish, 1)
}

func TestLineSnap_LeavesCatchLogUntouched(t *testing.T) {
	tg := newTestGame(t, 0, func(o *Options) { o.Params.TensionRate = 50 })
	before := tg.Snapshot()
	tg.hook(t)

	tg.mu.Lock()
	tg.fishing.Tension = 90
	tg.reelTick()
	tg.mu.Unlock()

	s := tg.Snapshot()
	assert.Equal(t, fishing.StageFailed, s.Fishing.Stage)
	assert.Equal(t, fishing.OutcomeLineSnapped, s.Fishing.Outcome)
	assert.Nil(t, s.Fishing.TargetFish)
	assert.Equal(t, before.Inventory.CaughtFish, s.Inventory.CaughtFish)
	assert.Equal(t, before.Player.Coins, s.Player.Coins)
	p := fishing.DefaultParams()
	assert.InDelta(t, before.Equipment.Lure.Durability-p.CastLureWear-p.FailLureWear, s.Equipment.Lure.Durability, 1e-9)
	assert.InDelta(t, before.Equipment.Line.Durability-p.FailLineWear, s.Equipment.Line.Durability, 1e-9)
	assert.True(t, hasSeverity(tg.notifications(), events.SeverityWarning))

	require.NoError(t, tg.Acknowledge())
	assert.Equal(t, fishing.StageIdle, tg.Snapshot().Fishing.Stage)
}

func TestReleaseReel_ClearsInput(t *testing.T) {
	tg := newTestGame(t, 0)
	tg.hook(t)
	require.NoError(t, tg.ReelIn())
	require.NoError(t, tg.ReleaseReel())
	assert.Zero(t, tg.Snapshot().Fishing.ReelInput)
}

func TestFishingCommands_NoOpWhenIdle(t *testing.T) {
	tg := newTestGame(t, 0)
	before := tg.Snapshot()
	require.NoError(t, tg.ReelIn())
	require.NoError(t, tg.ReleaseReel())
	require.NoError(t, tg.Acknowledge())
	assert.Equal(t, before, tg.Snapshot())
}

func TestFinish_ReplenishesWornLure(t *testing.T) {
	tg := newTestGame(t, 0.99)
	tg.profile.Equipment.Lure.Durability = 1
	tg.profile.Inventory.Lures[0].Quantity = 2
	require.NoError(t, tg.CastLine())

	tg.mu.Lock()
	tg.land()
	tg.biteCheck()
	tg.biteCheck()
	tg.mu.Unlock()

	s := tg.Snapshot()
	require.Equal(t, fishing.StageIdle, s.Fishing.Stage)
	assert.Equal(t, catalog.MaxDurability, s.Equipment.Lure.Durability)
	assert.Equal(t, 1, s.Inventory.Lures[0].Quantity)
}

func TestStaleTimerIsIgnored(t *testing.T) {
	tg := newTestGame(t, 0, func(o *Options) {
		o.Timings.CastDelay = 20 * time.Millisecond
	})
	require.NoError(t, tg.CastLine())
	// Restoring abandons the cycle the cast delay belongs to.
	tg.Restore(tg.Snapshot())
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, fishing.StageIdle, tg.Snapshot().Fishing.Stage)
}

func TestTimers_DriveAFullFailedCycle(t *testing.T) {
	tg := newTestGame(t, 0, func(o *Options) {
		o.Params.HookTimeout = 0.05
		o.Timings = Timings{
			CastDelay:         5 * time.Millisecond,
			BiteCheckInterval: 5 * time.Millisecond,
			BiteTimeout:       time.Second,
			ReelTickInterval:  5 * time.Millisecond,
			ResultDelay:       5 * time.Millisecond,
			ClockTick:         time.Hour,
			NotificationTTL:   time.Second,
		}
	})
	require.NoError(t, tg.CastLine())

	// Nobody reels, so the hooked fish escapes and the game resets on its own.
	require.Eventually(t, func() bool {
		return tg.Snapshot().Fishing.Outcome == fishing.OutcomeEscaped
	}, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		return tg.Snapshot().Fishing.Stage == fishing.StageIdle
	}, 2*time.Second, 5*time.Millisecond)
	assert.Empty(t, tg.Snapshot().Inventory.CaughtFish)
}

func TestBuyEquipment(t *testing.T) {
	tg := newTestGame(t, 0)

	err := tg.BuyEquipment(catalog.SlotRod, "master_rod")
	require.ErrorIs(t, err, progression.ErrInsufficientFunds)
	assert.Equal(t, 1000, tg.Snapshot().Player.Coins)
	assert.True(t, hasSeverity(tg.notifications(), events.SeverityError))

	require.NoError(t, tg.BuyEquipment(catalog.SlotReel, "spinning_reel"))
	s := tg.Snapshot()
	assert.Equal(t, 100, s.Player.Coins)
	assert.Equal(t, "spinning_reel", s.Equipment.Reel.ID)

	assert.ErrorIs(t, tg.BuyEquipment(catalog.SlotLine, "kevlar"), progression.ErrUnknownItem)
}

func TestUnlockScene_TravelsWhenIdle(t *testing.T) {
	tg := newTestGame(t, 0)

	require.ErrorIs(t, tg.UnlockScene("river"), progression.ErrInsufficientFunds)
	tg.profile.Player.Coins = 5000

	require.NoError(t, tg.UnlockScene("river"))
	s := tg.Snapshot()
	assert.Equal(t, "river", s.Scene)
	assert.Equal(t, 3000, s.Player.Coins)
	assert.ErrorIs(t, tg.UnlockScene("river"), progression.ErrAlreadyUnlocked)
	assert.ErrorIs(t, tg.UnlockScene("moon"), progression.ErrUnknownScene)
}

func TestSetScene(t *testing.T) {
	tg := newTestGame(t, 0)
	assert.ErrorIs(t, tg.SetScene("coast"), progression.ErrSceneLocked)
	assert.ErrorIs(t, tg.SetScene("moon"), progression.ErrUnknownScene)

	tg.profile.Player.UnlockedScenes = append(tg.profile.Player.UnlockedScenes, "coast")
	require.NoError(t, tg.CastLine())
	require.NoError(t, tg.SetScene("coast"))
	assert.Equal(t, progression.StartingScene, tg.Snapshot().Scene, "no travel mid-cast")
}

func TestSwitchLure(t *testing.T) {
	tg := newTestGame(t, 0)
	second := tg.Snapshot().Inventory.Lures[1].Lure.ID

	require.NoError(t, tg.SwitchLure(second))
	assert.Equal(t, second, tg.Snapshot().Equipment.Lure.ID)
	assert.ErrorIs(t, tg.SwitchLure("glow_squid"), progression.ErrLureNotOwned)
}

func TestSwitchLure_IgnoredMidCast(t *testing.T) {
	tg := newTestGame(t, 0)
	first := tg.Snapshot().Equipment.Lure.ID
	require.NoError(t, tg.CastLine())

	require.NoError(t, tg.SwitchLure(tg.Snapshot().Inventory.Lures[1].Lure.ID))
	assert.Equal(t, first, tg.Snapshot().Equipment.Lure.ID)
}

func TestClaimTaskReward(t *testing.T) {
	tg := newTestGame(t, 0)
	assert.ErrorIs(t, tg.ClaimTaskReward(1), progression.ErrTaskIncomplete)
	assert.ErrorIs(t, tg.ClaimTaskReward(99), progression.ErrUnknownTask)

	tg.profile.Tasks[2].Progress = 5
	require.NoError(t, tg.ClaimTaskReward(3))
	s := tg.Snapshot()
	assert.Equal(t, 1400, s.Player.Coins)
	assert.Len(t, s.Tasks, 2)
}

func TestSettingsAndScreen(t *testing.T) {
	tg := newTestGame(t, 0)
	s := progression.DefaultSettings()
	s.Graphics = progression.GraphicsHigh
	require.NoError(t, tg.SetSettings(s))
	assert.Equal(t, progression.GraphicsHigh, tg.Snapshot().Settings.Graphics)

	s.Controls = "keyboard"
	assert.ErrorIs(t, tg.SetSettings(s), progression.ErrInvalidSettings)

	require.NoError(t, tg.SetScreen(progression.ScreenShop))
	assert.Equal(t, progression.ScreenShop, tg.Snapshot().Screen)
	assert.ErrorIs(t, tg.SetScreen("arcade"), ErrInvalidScreen)
}

func TestAlbum(t *testing.T) {
	tg := newTestGame(t, 0)
	assert.ErrorIs(t, tg.AddToAlbum("fish-1"), progression.ErrFishNotFound)

	tg.profile.Inventory.CaughtFish = append(tg.profile.Inventory.CaughtFish, progression.CaughtFish{InstanceID: "fish-1", FishID: 1})
	require.NoError(t, tg.AddToAlbum("fish-1"))
	assert.Equal(t, []string{"fish-1"}, tg.Snapshot().Inventory.PhotoAlbum)
	require.NoError(t, tg.RemoveFromAlbum("fish-1"))
	assert.Empty(t, tg.Snapshot().Inventory.PhotoAlbum)
	assert.ErrorIs(t, tg.RemoveFromAlbum("fish-1"), progression.ErrFishNotFound)
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	tg := newTestGame(t, 0)
	s := tg.Snapshot()
	s.Player.UnlockedScenes[0] = "moon"
	s.Inventory.Lures[0].Quantity = 99
	s.Tasks[0].Progress = 42

	fresh := tg.Snapshot()
	assert.Equal(t, progression.StartingScene, fresh.Player.UnlockedScenes[0])
	assert.Equal(t, 1, fresh.Inventory.Lures[0].Quantity)
	assert.Zero(t, fresh.Tasks[0].Progress)
}

func TestRestore_PublishesRestored(t *testing.T) {
	tg := newTestGame(t, 0)
	snap := tg.Snapshot()
	snap.Player.Coins = 5
	tg.notifications()

	tg.Restore(snap)

	var kinds []events.Kind
	for len(tg.events) > 0 {
		kinds = append(kinds, (<-tg.events).Kind)
	}
	assert.Contains(t, kinds, events.KindRestored)
	assert.Equal(t, 5, tg.Snapshot().Player.Coins)
}

func TestRestore_SanitizesSceneAndScreen(t *testing.T) {
	tg := newTestGame(t, 0)
	s := tg.Snapshot()
	s.Scene = "deep_sea"
	s.Screen = "arcade"
	s.Player.Coins = 4321

	tg.Restore(s)

	got := tg.Snapshot()
	assert.Equal(t, progression.StartingScene, got.Scene)
	assert.Equal(t, progression.ScreenMainMenu, got.Screen)
	assert.Equal(t, 4321, got.Player.Coins)
	assert.Equal(t, fishing.StageIdle, got.Fishing.Stage)
}

func TestAdvanceClock_PublishesEnvironment(t *testing.T) {
	tg := newTestGame(t, 0)
	tg.advanceClock()

	s := tg.Snapshot()
	assert.Equal(t, 1, s.Time.Minute)
	assert.Equal(t, 119, s.Weather.NextChange)

	var kinds []events.Kind
	for len(tg.events) > 0 {
		kinds = append(kinds, (<-tg.events).Kind)
	}
	assert.Contains(t, kinds, events.KindEnvironment)
}

func TestStart_RunsClock(t *testing.T) {
	tg := newTestGame(t, 0, func(o *Options) { o.Timings.ClockTick = 5 * time.Millisecond })
	tg.Start()
	tg.Start()
	require.Eventually(t, func() bool {
		return tg.Snapshot().Time.Minute > 0
	}, time.Second, 5*time.Millisecond)
	tg.Stop()
	tg.Stop()
}

func TestProperty_StateInvariantsHoldAcrossCommands(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tg := newTestGame(rt, rapid.Float64Range(0, 0.999).Draw(rt, "roll"))
		defer tg.Stop()
		steps := rapid.IntRange(1, 60).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 6).Draw(rt, "op") {
			case 0:
				_ = tg.CastLine()
			case 1:
				_ = tg.ReelIn()
			case 2:
				_ = tg.ReleaseReel()
			case 3:
				_ = tg.Acknowledge()
			case 4:
				tg.mu.Lock()
				switch tg.fishing.Stage {
				case fishing.StageCasting:
					tg.land()
				case fishing.StageWaiting:
					tg.biteCheck()
				case fishing.StageHooked, fishing.StageReeling:
					tg.reelTick()
				case fishing.StageFailed:
					tg.finish()
				}
				tg.mu.Unlock()
			case 5:
				_ = tg.BuyEquipment(catalog.SlotLure, "spoon")
			case 6:
				tg.advanceClock()
			}
			s := tg.Snapshot()
			st := s.Fishing
			switch st.Stage {
			case fishing.StageHooked, fishing.StageReeling, fishing.StageCaught:
				if st.TargetFish == nil {
					rt.Fatalf("stage %s without a target fish", st.Stage)
				}
			default:
				if st.TargetFish != nil {
					rt.Fatalf("stage %s with a target fish", st.Stage)
				}
			}
			if st.Tension < 0 || st.Tension > st.MaxTension || st.Progress < 0 || st.Progress > 100 {
				rt.Fatalf("tension %v progress %v out of range", st.Tension, st.Progress)
			}
			if s.Player.Coins < 0 {
				rt.Fatalf("coins went negative: %d", s.Player.Coins)
			}
			if s.Player.TotalFishCaught != len(s.Inventory.CaughtFish) {
				rt.Fatalf("total %d != caught %d", s.Player.TotalFishCaught, len(s.Inventory.CaughtFish))
			}
		}
	})
}
