package savegame

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/lurefish/internal/game/events"
	"github.com/cory-johannsen/lurefish/internal/gameserver"
	"github.com/cory-johannsen/lurefish/internal/storage"
)

// Default debounce delays per event kind.
var DefaultDebounce = map[events.Kind]time.Duration{
	events.KindSettings:     500 * time.Millisecond,
	events.KindAchievements: 500 * time.Millisecond,
	events.KindPlayer:       time.Second,
	events.KindEquipment:    time.Second,
	events.KindInventory:    time.Second,
	events.KindTasks:        time.Second,
	events.KindGameState:    time.Second,
	events.KindStatistics:   time.Second,
}

// saveTimeout bounds one background write.
const saveTimeout = 5 * time.Second

// eventBuffer absorbs bursts of state changes between debounce triggers.
const eventBuffer = 256

// Game is the state the persister observes and restores.
type Game interface {
	Snapshot() gameserver.Snapshot
	Restore(gameserver.Snapshot)
	Events() *events.Bus
}

// Persister writes each part of the game state shortly after it changes, one
// debounced write per key, plus a full save on a fixed interval.
type Persister struct {
	saves     *Saves
	game      Game
	delays    map[events.Kind]time.Duration
	debouncer *storage.Debouncer
	autosave  *storage.AutoSaver
	logger    *zap.Logger

	mu      sync.Mutex
	ch      chan events.Event
	done    chan struct{}
	stopped chan struct{}
}

// NewPersister creates a stopped Persister. Delays missing from delays use
// DefaultDebounce.
//
// Precondition: saves, game and logger must be non-nil.
func NewPersister(saves *Saves, game Game, delays map[events.Kind]time.Duration, logger *zap.Logger) *Persister {
	if saves == nil || game == nil || logger == nil {
		panic("savegame.NewPersister: saves, game and logger must not be nil")
	}
	merged := make(map[events.Kind]time.Duration, len(DefaultDebounce))
	for k, d := range DefaultDebounce {
		merged[k] = d
	}
	for k, d := range delays {
		if _, ok := keyOf[k]; ok {
			merged[k] = d
		}
	}
	return &Persister{
		saves:     saves,
		game:      game,
		delays:    merged,
		debouncer: storage.NewDebouncer(),
		autosave:  storage.NewAutoSaver(logger),
		logger:    logger,
	}
}

// DelaysFromConfig converts configured debounce delays keyed by kind name.
func DelaysFromConfig(cfg map[string]time.Duration) map[events.Kind]time.Duration {
	out := make(map[events.Kind]time.Duration, len(cfg))
	for k, d := range cfg {
		out[events.Kind(k)] = d
	}
	return out
}

// Restore loads the saved game into the game.
func (p *Persister) Restore(ctx context.Context) {
	p.game.Restore(p.saves.Load(ctx))
}

// Import writes pending changes, imports doc, and reloads the game from storage.
//
// Postcondition: on a document that is not a JSON object nothing changes.
func (p *Persister) Import(ctx context.Context, doc []byte) (storage.ImportResult, error) {
	p.debouncer.Flush()
	res, err := p.saves.Manager().ImportSnapshot(ctx, doc)
	if err != nil {
		return res, err
	}
	p.Restore(ctx)
	return res, nil
}

// Reset deletes the saved game and restores a new game.
func (p *Persister) Reset(ctx context.Context) error {
	p.debouncer.Flush()
	err := p.saves.Manager().RemoveAll(ctx)
	p.Restore(ctx)
	return err
}

// Start subscribes to state changes and schedules the auto-save every interval.
// Calling Start on a running Persister is a no-op.
func (p *Persister) Start(autoSaveInterval time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		return
	}
	p.ch = make(chan events.Event, eventBuffer)
	p.done = make(chan struct{})
	p.stopped = make(chan struct{})
	p.game.Events().Subscribe(p.ch)
	go p.run(p.ch, p.done, p.stopped)
	p.autosave.Start(p.SaveAll, autoSaveInterval)
	p.logger.Info("persister started", zap.Duration("autosave_interval", autoSaveInterval))
}

func (p *Persister) run(ch <-chan events.Event, done <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	for {
		select {
		case <-done:
			return
		case ev := <-ch:
			p.changed(ev.Kind)
		}
	}
}

func (p *Persister) changed(kind events.Kind) {
	key, ok := keyOf[kind]
	if !ok {
		return
	}
	p.debouncer.Trigger(key, p.delays[kind], func() {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := p.saves.SaveKey(ctx, key, p.game.Snapshot()); err != nil {
			p.logger.Error("debounced save failed", zap.String("key", key), zap.Error(err))
		}
	})
}

// SaveAll writes the full current state now.
func (p *Persister) SaveAll(ctx context.Context) error {
	if err := p.saves.SaveAll(ctx, p.game.Snapshot()); err != nil {
		return err
	}
	p.logger.Debug("full save complete")
	return nil
}

// SaveNow writes the full state through the auto-saver, bypassing its timer.
func (p *Persister) SaveNow(ctx context.Context) error {
	if err := p.autosave.SaveNow(ctx); err != nil {
		if errors.Is(err, storage.ErrNoSaveFunc) {
			return p.SaveAll(ctx)
		}
		return err
	}
	return nil
}

// Pending reports how many keys wait for their debounced write.
func (p *Persister) Pending() int {
	return p.debouncer.Pending()
}

// Stop unsubscribes, cancels the auto-save, writes every pending key and then the
// full state once more.
func (p *Persister) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.ch == nil {
		p.mu.Unlock()
		return nil
	}
	p.game.Events().Unsubscribe(p.ch)
	close(p.done)
	<-p.stopped
	p.ch = nil
	p.mu.Unlock()

	p.autosave.Stop()
	p.debouncer.Flush()
	err := p.SaveAll(ctx)
	p.logger.Info("persister stopped")
	return err
}
