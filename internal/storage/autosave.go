package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultAutoSaveInterval is the auto-save period used when none is configured.
const DefaultAutoSaveInterval = time.Minute

// ErrNoSaveFunc is returned by SaveNow before any schedule was started.
var ErrNoSaveFunc = errors.New("no auto-save function registered")

// SaveFunc persists the complete game state.
type SaveFunc func(ctx context.Context) error

// AutoSaver calls a save function on a fixed interval. At most one schedule is active.
type AutoSaver struct {
	mu     sync.Mutex
	fn     SaveFunc
	cancel context.CancelFunc
	done   chan struct{}
	logger *zap.Logger
}

// NewAutoSaver creates an idle AutoSaver.
//
// Precondition: logger must be non-nil.
func NewAutoSaver(logger *zap.Logger) *AutoSaver {
	if logger == nil {
		panic("storage.NewAutoSaver: logger must not be nil")
	}
	return &AutoSaver{logger: logger}
}

// Start schedules fn every interval, replacing any active schedule.
//
// Precondition: fn must be non-nil. A non-positive interval uses DefaultAutoSaveInterval.
// Postcondition: exactly one schedule is active.
func (a *AutoSaver) Start(fn SaveFunc, interval time.Duration) {
	if fn == nil {
		panic("storage.AutoSaver.Start: fn must not be nil")
	}
	if interval <= 0 {
		interval = DefaultAutoSaveInterval
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	a.fn = fn
	a.cancel = cancel
	a.done = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := fn(ctx); err != nil && ctx.Err() == nil {
					a.logger.Error("auto-save failed", zap.Error(err))
				}
			}
		}
	}()
	a.logger.Debug("auto-save scheduled", zap.Duration("interval", interval))
}

// Stop cancels the active schedule, if any, and waits for a save in progress.
func (a *AutoSaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
}

func (a *AutoSaver) stopLocked() {
	if a.cancel == nil {
		return
	}
	a.cancel()
	<-a.done
	a.cancel = nil
	a.done = nil
}

// Active reports whether a schedule is running.
func (a *AutoSaver) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancel != nil
}

// SaveNow runs the most recently started save function immediately.
func (a *AutoSaver) SaveNow(ctx context.Context) error {
	a.mu.Lock()
	fn := a.fn
	a.mu.Unlock()
	if fn == nil {
		return ErrNoSaveFunc
	}
	return fn(ctx)
}
