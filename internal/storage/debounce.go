package storage

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of calls per key: fn runs once, delay after the last
// Trigger for that key.
type Debouncer struct {
	mu      sync.Mutex
	pending map[string]*debounced
	stopped bool
}

type debounced struct {
	timer *time.Timer
	fn    func()
}

// NewDebouncer returns a Debouncer with nothing pending.
func NewDebouncer() *Debouncer {
	return &Debouncer{pending: make(map[string]*debounced)}
}

// Trigger (re)starts the delay for key. Only the fn of the latest Trigger runs.
//
// Postcondition: a no-op after Stop.
func (d *Debouncer) Trigger(key string, delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
	}
	e := &debounced{fn: fn}
	e.timer = time.AfterFunc(delay, func() {
		d.mu.Lock()
		if d.pending[key] != e {
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.mu.Unlock()
		e.fn()
	})
	d.pending[key] = e
}

// Pending reports how many keys are waiting to fire.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Flush runs every pending call now, on the caller's goroutine.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	fns := make([]func(), 0, len(d.pending))
	for k, e := range d.pending {
		e.timer.Stop()
		fns = append(fns, e.fn)
		delete(d.pending, k)
	}
	d.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Stop cancels every pending call and ignores later Triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for k, e := range d.pending {
		e.timer.Stop()
		delete(d.pending, k)
	}
}
