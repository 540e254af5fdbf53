package gameserver

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Clock calls a function once per game minute, where a game minute is a fixed
// span of real time.
type Clock struct {
	interval time.Duration
	onMinute func()
	minutes  atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewClock creates a stopped Clock.
//
// Precondition: interval > 0 and onMinute must be non-nil.
func NewClock(interval time.Duration, onMinute func()) *Clock {
	if interval <= 0 {
		panic("gameserver.NewClock: interval must be positive")
	}
	if onMinute == nil {
		panic("gameserver.NewClock: onMinute must not be nil")
	}
	return &Clock{interval: interval, onMinute: onMinute}
}

// Minutes returns how many game minutes have passed while the clock ran.
func (c *Clock) Minutes() uint64 {
	return c.minutes.Load()
}

// Running reports whether the clock is started.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

// Start begins counting minutes. Starting a running clock does nothing.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.run(ctx)
}

// Stop halts the clock without waiting for a minute already being delivered.
// Safe to call multiple times.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel == nil {
		return
	}
	c.cancel()
	c.cancel = nil
}

func (c *Clock) run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			c.minutes.Add(1)
			c.onMinute()
		}
	}
}
