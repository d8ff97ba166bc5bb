// Package scheduler owns the repeating publication task and its run stats.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/trendwise/trendbot/internal/pipeline"
)

// Runner is the unit of work the scheduler repeats. Satisfied by
// *pipeline.Pipeline.
type Runner interface {
	RunCycle(ctx context.Context) (pipeline.CycleResult, error)
}

// Stats is a point-in-time snapshot of the bot's lifetime counters.
// They reset only on process restart.
type Stats struct {
	IsRunning          bool       `json:"is_running"`
	LastRun            *time.Time `json:"last_run"`
	ArticlesGenerated  int        `json:"articles_generated"`
	Errors             int        `json:"errors"`
	SuccessRatePercent float64    `json:"success_rate_percent"`
	NextRun            *time.Time `json:"next_run,omitempty"`
}

// Scheduler runs the pipeline once immediately on Start, then on a fixed
// interval until Stop. There is no backoff and no jitter; this is a plain
// polling timer.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	logger   *slog.Logger

	mu        sync.Mutex
	running   bool
	stop      chan struct{}
	lastRun   time.Time
	nextRun   time.Time
	generated int
	errors    int
}

// New creates a stopped scheduler.
func New(runner Runner, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   slog.Default(),
	}
}

// Start transitions to Running and launches the timer loop. Calling Start
// while already Running is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	stop := s.stop
	s.mu.Unlock()

	s.logger.Info("scheduler started", "interval", s.interval)
	go s.loop(ctx, stop)
}

func (s *Scheduler) loop(ctx context.Context, stop chan struct{}) {
	s.runOnce(ctx, stop)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.markStopped()
			return
		case <-stop:
			return
		case <-ticker.C:
			s.runOnce(ctx, stop)
		}
	}
}

// runOnce executes one cycle unless the stop token fired after the tick,
// so Stop also cancels a fired-but-not-yet-started cycle.
func (s *Scheduler) runOnce(ctx context.Context, stop chan struct{}) {
	select {
	case <-stop:
		return
	case <-ctx.Done():
		return
	default:
	}

	s.mu.Lock()
	s.nextRun = time.Now().Add(s.interval)
	s.mu.Unlock()

	start := time.Now()
	result, err := s.runner.RunCycle(ctx)

	s.mu.Lock()
	s.lastRun = start
	s.generated += result.Generated
	s.errors += result.Failed
	if err != nil {
		s.errors++
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("cycle failed", "error", err, "duration", time.Since(start))
		return
	}
	s.logger.Info("cycle finished",
		"generated", result.Generated,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"duration", time.Since(start),
	)
}

// Stop transitions to Stopped. It prevents future scheduled invocations but
// does not interrupt a cycle already in flight.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stop)
	s.nextRun = time.Time{}
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) markStopped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.nextRun = time.Time{}
}

// TriggerNow runs one cycle immediately on the caller's goroutine,
// independent of the timer. Stats are updated the same way. Manual runs
// are allowed while stopped.
func (s *Scheduler) TriggerNow(ctx context.Context) {
	s.mu.Lock()
	stop := s.stop
	if !s.running {
		// A nil or fresh token never fires, so the run proceeds.
		stop = make(chan struct{})
	}
	s.mu.Unlock()
	s.runOnce(ctx, stop)
}

// Stats returns a snapshot of the lifetime counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		IsRunning:         s.running,
		ArticlesGenerated: s.generated,
		Errors:            s.errors,
	}
	if !s.lastRun.IsZero() {
		t := s.lastRun
		stats.LastRun = &t
	}
	if s.running && !s.nextRun.IsZero() {
		t := s.nextRun
		stats.NextRun = &t
	}
	if total := s.generated + s.errors; total > 0 {
		stats.SuccessRatePercent = float64(s.generated) / float64(total) * 100
	}
	return stats
}
