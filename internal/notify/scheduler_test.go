package notify_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/todo-api/internal/notify"
)

type countingRunner struct {
	calls atomic.Int64
}

func (r *countingRunner) RunOnce(context.Context) (notify.SweepResult, error) {
	r.calls.Add(1)
	return notify.SweepResult{}, nil
}

func TestSchedulerRunsOnStart(t *testing.T) {
	t.Parallel()

	runner := &countingRunner{}
	s := notify.NewScheduler(runner, notify.SchedulerConfig{Interval: time.Hour, RunOnStart: true}, nil)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return runner.calls.Load() == 1 }, 5*time.Second, 5*time.Millisecond)
}

func TestSchedulerTicks(t *testing.T) {
	t.Parallel()

	runner := &countingRunner{}
	s := notify.NewScheduler(runner, notify.SchedulerConfig{Interval: 10 * time.Millisecond}, nil)
	require.NoError(t, s.Start(context.Background()))

	assert.Eventually(t, func() bool { return runner.calls.Load() >= 3 }, 5*time.Second, 5*time.Millisecond)

	s.Stop()
	after := runner.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, runner.calls.Load())
}

func TestSchedulerStartTwice(t *testing.T) {
	t.Parallel()

	s := notify.NewScheduler(&countingRunner{}, notify.SchedulerConfig{Interval: time.Hour}, nil)
	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), notify.ErrSchedulerRunning)

	s.Stop()
	s.Stop()

	// A stopped scheduler can be started again.
	require.NoError(t, s.Start(context.Background()))
	s.Stop()
}

func TestSchedulerStopsWithContext(t *testing.T) {
	t.Parallel()

	runner := &countingRunner{}
	ctx, cancel := context.WithCancel(context.Background())
	s := notify.NewScheduler(runner, notify.SchedulerConfig{Interval: 10 * time.Millisecond}, nil)
	require.NoError(t, s.Start(ctx))

	assert.Eventually(t, func() bool { return runner.calls.Load() >= 1 }, 5*time.Second, 5*time.Millisecond)
	cancel()
	s.Stop()
}
