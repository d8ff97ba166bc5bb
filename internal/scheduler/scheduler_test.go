package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendwise/trendbot/internal/pipeline"
)

type countingRunner struct {
	calls  atomic.Int32
	result pipeline.CycleResult
	err    error
}

func (r *countingRunner) RunCycle(ctx context.Context) (pipeline.CycleResult, error) {
	r.calls.Add(1)
	return r.result, r.err
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestStart_RunsImmediately(t *testing.T) {
	runner := &countingRunner{result: pipeline.CycleResult{Generated: 2}}
	s := New(runner, time.Hour)

	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, func() bool { return runner.calls.Load() == 1 })

	stats := s.Stats()
	assert.True(t, stats.IsRunning)
	assert.Equal(t, 2, stats.ArticlesGenerated)
	assert.NotNil(t, stats.LastRun)
	require.NotNil(t, stats.NextRun)
	assert.True(t, stats.NextRun.After(time.Now()))
}

func TestStart_WhileRunningIsNoOp(t *testing.T) {
	runner := &countingRunner{}
	s := New(runner, time.Hour)

	s.Start(context.Background())
	defer s.Stop()
	waitFor(t, func() bool { return runner.calls.Load() == 1 })

	s.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), runner.calls.Load(), "second Start must not trigger another immediate run")
}

func TestStop(t *testing.T) {
	runner := &countingRunner{}
	s := New(runner, 10*time.Millisecond)

	s.Start(context.Background())
	waitFor(t, func() bool { return runner.calls.Load() >= 1 })
	s.Stop()

	calls := runner.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, runner.calls.Load(), "no runs after Stop")

	stats := s.Stats()
	assert.False(t, stats.IsRunning)
	assert.Nil(t, stats.NextRun)

	// Stopping twice is safe.
	s.Stop()
}

func TestTicksKeepRunning(t *testing.T) {
	runner := &countingRunner{result: pipeline.CycleResult{Generated: 1}}
	s := New(runner, 15*time.Millisecond)

	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, func() bool { return runner.calls.Load() >= 3 })
	assert.GreaterOrEqual(t, s.Stats().ArticlesGenerated, 3)
}

func TestStats_SuccessRate(t *testing.T) {
	runner := &countingRunner{result: pipeline.CycleResult{Generated: 3, Failed: 1}}
	s := New(runner, time.Hour)

	s.TriggerNow(context.Background())

	stats := s.Stats()
	assert.Equal(t, 3, stats.ArticlesGenerated)
	assert.Equal(t, 1, stats.Errors)
	assert.InDelta(t, 75.0, stats.SuccessRatePercent, 0.01)
}

func TestStats_CycleErrorCounts(t *testing.T) {
	runner := &countingRunner{err: fmt.Errorf("no trends available from any source")}
	s := New(runner, time.Hour)

	s.TriggerNow(context.Background())

	stats := s.Stats()
	assert.Equal(t, 1, stats.Errors)
	assert.Zero(t, stats.ArticlesGenerated)
	assert.InDelta(t, 0.0, stats.SuccessRatePercent, 0.01)
}

func TestTriggerNow_WhileStopped(t *testing.T) {
	runner := &countingRunner{result: pipeline.CycleResult{Generated: 1}}
	s := New(runner, time.Hour)

	s.TriggerNow(context.Background())
	assert.Equal(t, int32(1), runner.calls.Load())
	assert.False(t, s.Stats().IsRunning)
	assert.Equal(t, 1, s.Stats().ArticlesGenerated)
}
