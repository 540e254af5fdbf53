package fishing

import (
	"sync"
	"time"
)

// StageTimer fires a callback after a configurable duration unless stopped or reset.
// Only the most recently scheduled callback can fire. It is safe for concurrent use.
type StageTimer struct {
	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// NewStageTimer creates an idle timer with nothing scheduled.
func NewStageTimer() *StageTimer {
	return &StageTimer{}
}

// Reset cancels any pending callback and schedules onFire after d.
// onFire is called in a separate goroutine.
//
// Precondition: d > 0; onFire must not be nil.
// Postcondition: onFire will be called after d from now unless Stop or Reset is called first.
func (st *StageTimer) Reset(d time.Duration, onFire func()) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.timer != nil {
		st.timer.Stop()
	}
	st.gen++
	gen := st.gen
	st.timer = time.AfterFunc(d, func() {
		st.mu.Lock()
		current := st.gen == gen
		st.mu.Unlock()
		if current {
			onFire()
		}
	})
}

// Stop prevents the pending callback from firing. Safe to call multiple times.
//
// Postcondition: no callback scheduled before Stop will be called after Stop returns,
// unless it had already started running.
func (st *StageTimer) Stop() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.gen++
	if st.timer != nil {
		st.timer.Stop()
	}
}
