package gameserver_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/lurefish/internal/gameserver"
)

func TestClock_CallsOncePerMinute(t *testing.T) {
	var calls atomic.Int64
	clk := gameserver.NewClock(10*time.Millisecond, func() { calls.Add(1) })
	clk.Start()
	t.Cleanup(clk.Stop)

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	assert.True(t, clk.Running())
	assert.GreaterOrEqual(t, clk.Minutes(), uint64(3))
}

func TestClock_StopHalts(t *testing.T) {
	var calls atomic.Int64
	clk := gameserver.NewClock(5*time.Millisecond, func() { calls.Add(1) })
	clk.Start()
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, time.Second, time.Millisecond)

	clk.Stop()
	clk.Stop()
	assert.False(t, clk.Running())
	time.Sleep(20 * time.Millisecond)
	before := clk.Minutes()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, before, clk.Minutes())
}

func TestClock_StartTwiceRunsOneLoop(t *testing.T) {
	var calls atomic.Int64
	clk := gameserver.NewClock(20*time.Millisecond, func() { calls.Add(1) })
	clk.Start()
	clk.Start()
	t.Cleanup(clk.Stop)

	time.Sleep(110 * time.Millisecond)
	assert.LessOrEqual(t, calls.Load(), int64(6))
}

func TestClock_RestartAfterStop(t *testing.T) {
	var calls atomic.Int64
	clk := gameserver.NewClock(5*time.Millisecond, func() { calls.Add(1) })
	clk.Start()
	clk.Stop()
	clk.Start()
	t.Cleanup(clk.Stop)

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, time.Millisecond)
}

func TestNewClock_Panics(t *testing.T) {
	assert.Panics(t, func() { gameserver.NewClock(0, func() {}) })
	assert.Panics(t, func() { gameserver.NewClock(time.Second, nil) })
}
