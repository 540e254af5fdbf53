package storage_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/lurefish/internal/storage"
)

func counter(n *atomic.Int32) storage.SaveFunc {
	return func(context.Context) error {
		n.Add(1)
		return nil
	}
}

func TestAutoSaver_FiresOnInterval(t *testing.T) {
	a := storage.NewAutoSaver(zap.NewNop())
	defer a.Stop()
	var n atomic.Int32
	a.Start(counter(&n), 10*time.Millisecond)

	assert.Eventually(t, func() bool { return n.Load() >= 2 }, time.Second, 5*time.Millisecond)
	assert.True(t, a.Active())
}

func TestAutoSaver_RestartLeavesOneSchedule(t *testing.T) {
	a := storage.NewAutoSaver(zap.NewNop())
	defer a.Stop()
	var first, second atomic.Int32
	a.Start(counter(&first), 5*time.Millisecond)
	require.Eventually(t, func() bool { return first.Load() >= 1 }, time.Second, time.Millisecond)

	a.Start(counter(&second), 5*time.Millisecond)
	frozen := first.Load()
	require.Eventually(t, func() bool { return second.Load() >= 3 }, time.Second, time.Millisecond)
	assert.Equal(t, frozen, first.Load(), "the replaced schedule must not fire again")
}

func TestAutoSaver_Stop(t *testing.T) {
	a := storage.NewAutoSaver(zap.NewNop())
	var n atomic.Int32
	a.Start(counter(&n), 5*time.Millisecond)
	require.Eventually(t, func() bool { return n.Load() >= 1 }, time.Second, time.Millisecond)

	a.Stop()
	a.Stop()
	assert.False(t, a.Active())
	stopped := n.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, n.Load())
}

func TestAutoSaver_SaveNow(t *testing.T) {
	a := storage.NewAutoSaver(zap.NewNop())
	require.ErrorIs(t, a.SaveNow(context.Background()), storage.ErrNoSaveFunc)

	var n atomic.Int32
	a.Start(counter(&n), time.Hour)
	defer a.Stop()
	require.NoError(t, a.SaveNow(context.Background()))
	assert.Equal(t, int32(1), n.Load())
}

func TestAutoSaver_LogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	a := storage.NewAutoSaver(zap.New(core))
	defer a.Stop()
	a.Start(func(context.Context) error { return errors.New("disk full") }, 5*time.Millisecond)

	assert.Eventually(t, func() bool {
		return logs.FilterMessage("auto-save failed").Len() > 0
	}, time.Second, 5*time.Millisecond)
}

func TestAutoSaver_DefaultInterval(t *testing.T) {
	a := storage.NewAutoSaver(zap.NewNop())
	defer a.Stop()
	var n atomic.Int32
	a.Start(counter(&n), 0)
	assert.True(t, a.Active())
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, n.Load())
}

func TestAutoSaver_Panics(t *testing.T) {
	assert.Panics(t, func() { storage.NewAutoSaver(nil) })
	assert.Panics(t, func() { storage.NewAutoSaver(zap.NewNop()).Start(nil, time.Second) })
}
