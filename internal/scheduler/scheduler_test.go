package scheduler

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
)

func TestRunOnStart(t *testing.T) {
	var calls atomic.Int32
	done := make(chan struct{})
	s := New("@every 1h", true, func(context.Context) error {
		if calls.Add(1) == 1 {
			close(done)
		}
		return nil
	}, nil)

	require.NoError(t, s.Start(context.Background()))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run on start")
	}
	s.Stop()

	assert.Equal(t, int32(1), calls.Load())
}

func TestNoRunOnStart(t *testing.T) {
	var calls atomic.Int32
	s := New("@every 1h", false, func(context.Context) error {
		calls.Add(1)
		return nil
	}, nil)

	require.NoError(t, s.Start(context.Background()))
	s.Stop()

	assert.Equal(t, int32(0), calls.Load())
}

func TestInvalidSpec(t *testing.T) {
	s := New("every now and then", false, func(context.Context) error { return nil }, nil)
	assert.Error(t, s.Start(context.Background()))
}

func TestTaskErrorLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := New("@every 1h", true, func(context.Context) error {
		return errors.New("store is locked")
	}, zap.New(core))

	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool {
		return logs.FilterMessage("scheduled run failed").Len() == 1
	}, 2*time.Second, 10*time.Millisecond)
	s.Stop()

	entry := logs.FilterMessage("scheduled run failed").All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "store is locked", entry.ContextMap()["error"])
}

func TestCancelledContextSkipsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	s := New("@every 1h", true, func(context.Context) error {
		calls.Add(1)
		return nil
	}, nil)

	require.NoError(t, s.Start(ctx))
	s.Stop()

	assert.Equal(t, int32(0), calls.Load())
}
