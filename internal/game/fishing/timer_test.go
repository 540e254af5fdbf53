package fishing_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/cory-johannsen/lurefish/internal/game/fishing"
)

func TestStageTimer_Fires(t *testing.T) {
	var called atomic.Int32
	st := fishing.NewStageTimer()
	st.Reset(20*time.Millisecond, func() {
		called.Add(1)
	})
	time.Sleep(60 * time.Millisecond)
	if called.Load() != 1 {
		t.Fatalf("expected callback called once, got %d", called.Load())
	}
}

func TestStageTimer_Stop_PreventsCallback(t *testing.T) {
	var called atomic.Int32
	st := fishing.NewStageTimer()
	st.Reset(50*time.Millisecond, func() {
		called.Add(1)
	})
	st.Stop()
	time.Sleep(80 * time.Millisecond)
	if called.Load() != 0 {
		t.Fatalf("expected callback not called, got %d", called.Load())
	}
}

func TestStageTimer_Reset_ReplacesCallback(t *testing.T) {
	var first, second atomic.Int32
	st := fishing.NewStageTimer()
	st.Reset(30*time.Millisecond, func() {
		first.Add(1)
	})
	st.Reset(10*time.Millisecond, func() {
		second.Add(1)
	})
	time.Sleep(70 * time.Millisecond)
	if first.Load() != 0 {
		t.Fatalf("expected replaced callback not called, got %d", first.Load())
	}
	if second.Load() != 1 {
		t.Fatalf("expected new callback called once, got %d", second.Load())
	}
}

func TestStageTimer_StopIdempotent(t *testing.T) {
	st := fishing.NewStageTimer()
	// Stop before anything was scheduled must not panic.
	st.Stop()
	st.Reset(50*time.Millisecond, func() {})
	st.Stop()
	st.Stop()
}
