// Package gameserver hosts the Game controller: the single owner of all game state.
// Every command and timer callback runs under one lock, so the fishing state machine,
// the profile, and the environment always change together.
package gameserver

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/lurefish/internal/config"
	"github.com/cory-johannsen/lurefish/internal/game/catalog"
	"github.com/cory-johannsen/lurefish/internal/game/dice"
	"github.com/cory-johannsen/lurefish/internal/game/environment"
	"github.com/cory-johannsen/lurefish/internal/game/events"
	"github.com/cory-johannsen/lurefish/internal/game/fishing"
	"github.com/cory-johannsen/lurefish/internal/game/progression"
	"github.com/cory-johannsen/lurefish/internal/scripting"
)

// ErrInvalidScreen is returned by SetScreen for an unknown screen.
var ErrInvalidScreen = errors.New("invalid screen")

// Timings are the real-time durations that drive the fishing timers and the clock.
type Timings struct {
	CastDelay         time.Duration
	BiteCheckInterval time.Duration
	BiteTimeout       time.Duration
	ReelTickInterval  time.Duration
	ResultDelay       time.Duration
	ClockTick         time.Duration
	NotificationTTL   time.Duration
}

// DefaultTimings returns the shipped pacing.
func DefaultTimings() Timings {
	return Timings{
		CastDelay:         1500 * time.Millisecond,
		BiteCheckInterval: time.Second,
		BiteTimeout:       30 * time.Second,
		ReelTickInterval:  100 * time.Millisecond,
		ResultDelay:       2 * time.Second,
		ClockTick:         6 * time.Second,
		NotificationTTL:   3 * time.Second,
	}
}

// TimingsFromConfig copies the game timings out of the configuration.
func TimingsFromConfig(g config.GameConfig) Timings {
	return Timings{
		CastDelay:         g.CastDelay,
		BiteCheckInterval: g.BiteCheckInterval,
		BiteTimeout:       g.BiteTimeout,
		ReelTickInterval:  g.ReelTickInterval,
		ResultDelay:       g.ResultDelay,
		ClockTick:         g.ClockTick,
		NotificationTTL:   g.NotificationTTL,
	}
}

// BiteModifier supplies the scripted bite-chance factor for a scene.
type BiteModifier interface {
	BiteModifier(info scripting.BiteInfo) float64
}

// Options configures a Game.
type Options struct {
	Catalog *catalog.Catalog
	Params  fishing.Params
	Timings Timings
	Roller  *dice.Roller
	Logger  *zap.Logger
	// Scripts is optional; nil means a bite modifier of 1.
	Scripts BiteModifier
	// Now defaults to time.Now.
	Now func() time.Time
	// NewID defaults to uuid.NewString.
	NewID func() string
}

// Snapshot is a deep copy of the complete game state handed to the view layer and
// the persister.
type Snapshot struct {
	Player       progression.Player        `json:"player"`
	Equipment    progression.Equipment     `json:"equipment"`
	Fishing      fishing.State             `json:"fishing"`
	Inventory    progression.Inventory     `json:"inventory"`
	Achievements []progression.Achievement `json:"achievements"`
	Tasks        []progression.Task        `json:"tasks"`
	Weather      environment.Weather       `json:"weather"`
	Time         environment.GameTime      `json:"time"`
	Settings     progression.Settings      `json:"settings"`
	Scene        string                    `json:"scene"`
	Screen       progression.Screen        `json:"screen"`
	Statistics   progression.Statistics    `json:"statistics"`
}

// Profile reassembles the persistent profile carried by the snapshot.
func (s Snapshot) Profile() progression.Profile {
	return progression.Profile{
		Player:       s.Player,
		Equipment:    s.Equipment,
		Inventory:    s.Inventory,
		Achievements: s.Achievements,
		Tasks:        s.Tasks,
		Settings:     s.Settings,
		Statistics:   s.Statistics,
	}
}

// Game owns all mutable game state.
// It is safe for concurrent use.
type Game struct {
	mu sync.Mutex

	cat     *catalog.Catalog
	params  fishing.Params
	timings Timings
	roller  *dice.Roller
	scripts BiteModifier
	logger  *zap.Logger
	bus     *events.Bus
	now     func() time.Time
	newID   func() string

	profile progression.Profile
	fishing fishing.State
	env     environment.State
	scene   string
	screen  progression.Screen

	timer   *fishing.StageTimer
	stopped bool
	clock   *Clock
}

// New creates a Game holding the state of a new player.
//
// Precondition: opts.Catalog, opts.Roller and opts.Logger must be non-nil.
// Postcondition: the fishing stage is idle and no timer runs until Start.
func New(opts Options) *Game {
	if opts.Catalog == nil {
		panic("gameserver.New: catalog must not be nil")
	}
	if opts.Roller == nil {
		panic("gameserver.New: roller must not be nil")
	}
	if opts.Logger == nil {
		panic("gameserver.New: logger must not be nil")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Game{
		cat:     opts.Catalog,
		params:  opts.Params,
		timings: opts.Timings,
		roller:  opts.Roller,
		scripts: opts.Scripts,
		logger:  opts.Logger,
		bus:     events.NewBus(),
		now:     opts.Now,
		newID:   opts.NewID,
		profile: progression.NewProfile(opts.Catalog),
		fishing: fishing.Idle(0, opts.Params),
		env:     environment.State{Weather: environment.DefaultWeather(), Time: environment.DefaultTime()},
		scene:   progression.StartingScene,
		screen:  progression.ScreenMainMenu,
		timer:   fishing.NewStageTimer(),
	}
}

// Events returns the bus carrying notifications and state-change events.
func (g *Game) Events() *events.Bus {
	return g.bus
}

// Catalog returns the content catalog the game was built with.
func (g *Game) Catalog() *catalog.Catalog {
	return g.cat
}

// Start runs the game clock.
//
// Postcondition: the environment advances one game minute per ClockTick until Stop.
func (g *Game) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopped = false
	if g.clock == nil {
		g.clock = NewClock(g.timings.ClockTick, g.advanceClock)
	}
	if g.clock.Running() {
		return
	}
	g.clock.Start()
	g.logger.Info("game started",
		zap.String("scene", g.scene),
		zap.Duration("clock_tick", g.timings.ClockTick),
	)
}

// Stop halts the clock and every pending fishing timer. Safe to call multiple times.
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopped = true
	g.timer.Stop()
	if g.clock == nil || !g.clock.Running() {
		return
	}
	g.clock.Stop()
	g.logger.Info("game stopped")
}

// Snapshot returns a deep copy of the current state.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *Game) snapshot() Snapshot {
	p := g.profile.Clone()
	st := g.fishing
	if st.TargetFish != nil {
		f := *st.TargetFish
		st.TargetFish = &f
	}
	return Snapshot{
		Player:       p.Player,
		Equipment:    p.Equipment,
		Fishing:      st,
		Inventory:    p.Inventory,
		Achievements: p.Achievements,
		Tasks:        p.Tasks,
		Weather:      g.env.Weather,
		Time:         g.env.Time,
		Settings:     p.Settings,
		Scene:        g.scene,
		Screen:       g.screen,
		Statistics:   p.Statistics,
	}
}

// Restore replaces the persistent state with s, typically the saved game loaded at
// startup. Any running cast cycle is abandoned.
//
// Postcondition: the fishing stage is idle; an unknown or locked scene falls back to
// the starting scene and an unknown screen to the main menu.
func (g *Game) Restore(s Snapshot) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.timer.Stop()

	profile := s.Profile()
	g.profile = profile.Clone()
	if g.profile.Statistics == nil {
		g.profile.Statistics = progression.Statistics{}
	}
	g.env = environment.State{Weather: s.Weather, Time: s.Time}
	g.scene = s.Scene
	if _, ok := g.cat.Scene(s.Scene); !ok || !g.profile.Player.HasScene(s.Scene) {
		g.scene = progression.StartingScene
	}
	g.screen = s.Screen
	if !g.screen.Valid() {
		g.screen = progression.ScreenMainMenu
	}
	g.fishing = fishing.Idle(g.fishing.Cycle+1, g.params)
	g.bus.Changed(events.KindRestored)
	g.logger.Info("game state restored",
		zap.Int("level", g.profile.Player.Level),
		zap.Int("coins", g.profile.Player.Coins),
		zap.Int("caught", len(g.profile.Inventory.CaughtFish)),
		zap.String("scene", g.scene),
	)
}

// notify publishes a notification.
//
// Precondition: caller holds g.mu.
func (g *Game) notify(sev events.Severity, format string, args ...any) {
	g.bus.Publish(events.Event{
		Kind:     events.KindNotification,
		Message:  fmt.Sprintf(format, args...),
		Severity: sev,
		TTL:      g.timings.NotificationTTL,
	})
}

// reject reports a refused command to the player and returns err.
func (g *Game) reject(err error, format string, args ...any) error {
	g.notify(events.SeverityError, format, args...)
	g.logger.Debug("command rejected", zap.Error(err))
	return err
}

func (g *Game) currentScene() *catalog.Scene {
	scene, ok := g.cat.Scene(g.scene)
	if !ok {
		// Restore guarantees a known scene; the starting scene is always in a valid catalog.
		scene, _ = g.cat.Scene(progression.StartingScene)
	}
	return scene
}

// advanceClock moves the environment forward one game minute.
func (g *Game) advanceClock() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stopped {
		return
	}
	next, change := environment.Advance(g.env, g.cat, g.roller)
	g.env = next
	g.bus.Changed(events.KindEnvironment)
	if !change.Any() {
		return
	}
	g.bus.Changed(events.KindGameState)
	if change.Season {
		g.notify(events.SeverityInfo, "%s has arrived.", g.seasonName(next.Time.Season))
	}
	if change.Weather {
		g.notify(events.SeverityInfo, "The weather changes to %s.", g.weatherName(next.Weather.Condition))
		g.logger.Debug("weather changed",
			zap.String("condition", next.Weather.Condition),
			zap.Float64("temperature", next.Weather.Temperature),
			zap.Float64("wind_speed", next.Weather.WindSpeed),
		)
	}
}

func (g *Game) seasonName(id string) string {
	if s, ok := g.cat.Season(id); ok {
		return s.Name
	}
	return id
}

func (g *Game) weatherName(id string) string {
	if w, ok := g.cat.Weather(id); ok {
		return w.Name
	}
	return id
}
