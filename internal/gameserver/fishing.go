package gameserver

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/lurefish/internal/game/environment"
	"github.com/cory-johannsen/lurefish/internal/game/events"
	"github.com/cory-johannsen/lurefish/internal/game/fishing"
	"github.com/cory-johannsen/lurefish/internal/scripting"
)

// CastLine starts a cast cycle.
//
// Postcondition: outside idle this is a no-op returning nil. A worn-out lure is first
// replaced from its stack when a spare is owned; otherwise it is refused with a warning
// notification and fishing.ErrLureWorn. Otherwise the stage is casting,
// the lure has worn by CastLureWear, and the lure lands after CastDelay.
func (g *Game) CastLine() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.fishing.Stage != fishing.StageIdle {
		g.ignored("cast")
		return nil
	}
	g.replenish()
	next, err := fishing.Cast(g.fishing, g.profile.Equipment.Gear(), g.profile.Player.Skills(),
		g.fishingEnv(), g.currentScene(), g.params, g.roller)
	if errors.Is(err, fishing.ErrLureWorn) {
		g.notify(events.SeverityWarning, "Your %s is worn out. Switch lures or buy a new one.", g.profile.Equipment.Lure.Name)
		return fmt.Errorf("casting %q: %w", g.profile.Equipment.Lure.ID, err)
	}
	if err != nil {
		return err
	}

	g.profile.Equipment.WearLure(g.params.CastLureWear)
	g.fishing = next
	g.bus.Changed(events.KindFishing, events.KindEquipment)
	g.logger.Debug("cast",
		zap.Uint64("cycle", next.Cycle),
		zap.Float64("distance", next.CastDistance),
		zap.Float64("accuracy", next.CastAccuracy),
	)
	g.schedule(g.timings.CastDelay, g.land, fishing.StageCasting)
	return nil
}

// ReelIn registers reel input: a hooked fish starts being reeled, and while reeling
// the input window is refreshed.
//
// Postcondition: a no-op returning nil outside hooked and reeling.
func (g *Game) ReelIn() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	prev := g.fishing.Stage
	next, err := fishing.ReelIn(g.fishing, g.params)
	if err != nil {
		g.ignored("reel")
		return nil
	}
	g.fishing = next
	if prev != next.Stage {
		g.bus.Changed(events.KindFishing)
	}
	return nil
}

// ReleaseReel stops reel input.
//
// Postcondition: a no-op returning nil outside reeling.
func (g *Game) ReleaseReel() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	next, err := fishing.ReleaseReel(g.fishing)
	if err != nil {
		g.ignored("release")
		return nil
	}
	g.fishing = next
	return nil
}

// Acknowledge dismisses a caught or failed result and returns to idle.
//
// Postcondition: a no-op returning nil in any other stage.
func (g *Game) Acknowledge() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.fishing.Stage {
	case fishing.StageCaught, fishing.StageFailed:
		g.timer.Stop()
		g.finish()
	default:
		g.ignored("acknowledge")
	}
	return nil
}

// schedule runs fn after d under the game lock, provided the cast cycle that scheduled
// it is still current and its stage is one of stages.
//
// Precondition: caller holds g.mu.
func (g *Game) schedule(d time.Duration, fn func(), stages ...fishing.Stage) {
	if g.stopped {
		return
	}
	cycle := g.fishing.Cycle
	g.timer.Reset(d, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.stopped || g.fishing.Cycle != cycle || !stageIn(g.fishing.Stage, stages) {
			g.logger.Debug("stale fishing timer",
				zap.Uint64("cycle", cycle),
				zap.Uint64("current_cycle", g.fishing.Cycle),
				zap.String("stage", string(g.fishing.Stage)),
			)
			return
		}
		fn()
	})
}

func stageIn(s fishing.Stage, stages []fishing.Stage) bool {
	for _, want := range stages {
		if s == want {
			return true
		}
	}
	return false
}

// land moves the settled lure to waiting and starts the bite checks.
//
// Precondition: caller holds g.mu; stage is casting.
func (g *Game) land() {
	next, err := fishing.Land(g.fishing)
	if err != nil {
		return
	}
	g.fishing = next
	g.bus.Changed(events.KindFishing)
	g.schedule(g.timings.BiteCheckInterval, g.biteCheck, fishing.StageWaiting)
}

// biteCheck rolls for a bite once. A bite hooks a fish; otherwise the wait continues
// until BiteTimeout ends the cycle.
//
// Precondition: caller holds g.mu; stage is waiting.
func (g *Game) biteCheck() {
	gear := g.profile.Equipment.Gear()
	skills := g.profile.Player.Skills()
	scene := g.currentScene()
	env := g.fishingEnv()
	env.Script = g.scriptModifier()

	chance := fishing.BiteChance(gear, skills, env, scene, g.env.Weather.Condition, g.params)
	if g.roller.Chance("bite", chance) {
		if fish := fishing.SelectFish(g.cat, scene, gear.Lure, env, g.params, g.roller); fish != nil {
			next, err := fishing.Hook(g.fishing, fish, g.params)
			if err == nil {
				g.fishing = next
				g.bus.Changed(events.KindFishing)
				g.notify(events.SeverityInfo, "Fish on! Reel it in!")
				g.logger.Debug("hooked",
					zap.Uint64("cycle", next.Cycle),
					zap.Int("fish", fish.ID),
					zap.Float64("bite_chance", chance),
				)
				g.schedule(g.timings.ReelTickInterval, g.reelTick, fishing.StageHooked, fishing.StageReeling)
				return
			}
		}
	}

	next, err := fishing.Wait(g.fishing, g.timings.BiteCheckInterval.Seconds(), g.timings.BiteTimeout.Seconds(), g.params)
	if err != nil {
		return
	}
	g.fishing = next
	g.bus.Changed(events.KindFishing)
	if next.Stage == fishing.StageIdle {
		g.notify(events.SeverityInfo, "Nothing is biting. Try casting again.")
		g.replenish()
		return
	}
	g.schedule(g.timings.BiteCheckInterval, g.biteCheck, fishing.StageWaiting)
}

// reelTick advances the fight by one ReelTickInterval.
//
// Precondition: caller holds g.mu; stage is hooked or reeling.
func (g *Game) reelTick() {
	prevTension := g.fishing.Tension
	next, err := fishing.Tick(g.fishing, g.timings.ReelTickInterval.Seconds(),
		g.profile.Equipment.Gear(), g.profile.Player.Skills(), g.params)
	if err != nil {
		return
	}
	g.fishing = next
	g.bus.Changed(events.KindFishing)

	switch next.Stage {
	case fishing.StageCaught:
		g.resolveCatch()
	case fishing.StageFailed:
		g.resolveFailure()
	default:
		warn := g.cat.Constants().TensionWarningThreshold
		if warn > 0 && prevTension < warn && next.Tension >= warn {
			g.notify(events.SeverityWarning, "Line tension is high! Ease off the reel.")
		}
		g.schedule(g.timings.ReelTickInterval, g.reelTick, fishing.StageHooked, fishing.StageReeling)
	}
}

// resolveCatch samples the landed fish and applies it to the profile in one step.
//
// Precondition: caller holds g.mu; stage is caught with a target fish.
func (g *Game) resolveCatch() {
	fish := g.fishing.TargetFish
	c := fishing.ResolveCatch(fish, g.params, g.roller)
	res := g.profile.ApplyCatch(g.cat, c, g.scene, g.newID(), g.now())

	g.notify(events.SeveritySuccess, "Caught a %s! %.2f kg, worth %d coins.", fish.Name, c.Weight, c.Value)
	changed := []events.Kind{events.KindPlayer, events.KindInventory, events.KindStatistics}
	if res.LeveledUp() {
		g.notify(events.SeveritySuccess, "Level up! You are now level %d.", res.LevelAfter)
	}
	for _, a := range res.Achievements {
		g.notify(events.SeveritySuccess, "Achievement unlocked: %s (+%d coins)", a.Name, a.Reward)
	}
	if len(res.Achievements) > 0 {
		changed = append(changed, events.KindAchievements)
	}
	for _, t := range res.TasksReady {
		g.notify(events.SeverityInfo, "Task complete: %s. Claim your reward!", t.Name)
	}
	changed = append(changed, events.KindTasks)
	g.bus.Changed(changed...)

	g.logger.Info("fish caught",
		zap.String("instance", res.Fish.InstanceID),
		zap.Int("fish", fish.ID),
		zap.Float64("weight", c.Weight),
		zap.Int("value", c.Value),
		zap.String("scene", g.scene),
	)
}

// resolveFailure wears the gear and returns to idle after ResultDelay.
//
// Precondition: caller holds g.mu; stage is failed.
func (g *Game) resolveFailure() {
	g.profile.Equipment.WearLure(g.params.FailLureWear)
	g.profile.Equipment.WearLine(g.params.FailLineWear)
	g.bus.Changed(events.KindEquipment)

	switch g.fishing.Outcome {
	case fishing.OutcomeLineSnapped:
		g.notify(events.SeverityWarning, "The line snapped! The fish got away.")
	case fishing.OutcomeEscaped:
		g.notify(events.SeverityWarning, "The fish escaped. Reel in faster next time.")
	}
	g.logger.Debug("cycle failed",
		zap.Uint64("cycle", g.fishing.Cycle),
		zap.String("outcome", string(g.fishing.Outcome)),
	)
	g.schedule(g.timings.ResultDelay, g.finish, fishing.StageFailed)
}

// finish returns to idle after a result.
//
// Precondition: caller holds g.mu.
func (g *Game) finish() {
	g.fishing = fishing.Finish(g.fishing, g.params)
	g.bus.Changed(events.KindFishing)
	g.replenish()
}

// replenish swaps a worn-out lure for a fresh one from its stack.
//
// Precondition: caller holds g.mu.
func (g *Game) replenish() {
	if g.profile.ReplenishLure() {
		g.notify(events.SeverityInfo, "Your %s wore out. Tied on a fresh one.", g.profile.Equipment.Lure.Name)
		g.bus.Changed(events.KindEquipment, events.KindInventory)
	}
}

// fishingEnv collects the conditions the fishing formulas read.
//
// Precondition: caller holds g.mu.
func (g *Game) fishingEnv() fishing.Environment {
	return fishing.Environment{
		WindSpeed:     g.env.Weather.WindSpeed,
		WindDirection: g.env.Weather.WindDirection,
		Season:        g.env.Time.Season,
		Period:        g.env.Time.Period(),
		Multiplier:    environment.BiteMultiplier(g.cat, g.env),
		Script:        1,
	}
}

func (g *Game) scriptModifier() float64 {
	if g.scripts == nil {
		return 1
	}
	return g.scripts.BiteModifier(scripting.BiteInfo{
		Scene:   g.scene,
		Weather: g.env.Weather.Condition,
		Period:  g.env.Time.Period(),
		Season:  g.env.Time.Season,
		Hour:    g.env.Time.Hour,
	})
}

func (g *Game) ignored(command string) {
	g.logger.Debug("command ignored in current stage",
		zap.String("command", command),
		zap.String("stage", string(g.fishing.Stage)),
	)
}
