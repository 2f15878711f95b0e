package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/todo-api/internal/redact"
)

// SweepRunner runs a single sweep.
type SweepRunner interface {
	RunOnce(ctx context.Context) (SweepResult, error)
}

// SchedulerConfig holds configuration for the Scheduler.
type SchedulerConfig struct {
	// Interval between sweeps. If zero, defaults to one minute.
	Interval time.Duration

	// RunOnStart triggers a sweep immediately instead of waiting one interval.
	RunOnStart bool
}

// Scheduler triggers sweeps on a fixed interval. Sweeps never overlap within
// one Scheduler; a tick that fires during a sweep is dropped.
type Scheduler struct {
	runner SweepRunner
	config SchedulerConfig
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a Scheduler for runner.
func NewScheduler(runner SweepRunner, config SchedulerConfig, logger *slog.Logger) *Scheduler {
	if config.Interval <= 0 {
		config.Interval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		runner: runner,
		config: config,
		logger: logger.With(slog.String("component", "notification_scheduler")),
	}
}

// Start launches the ticker loop. The loop ends when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrSchedulerRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	s.logger.Info("starting notification scheduler",
		slog.Duration("interval", s.config.Interval),
		slog.Bool("run_on_start", s.config.RunOnStart))

	go s.loop(ctx, s.done)
	return nil
}

// Stop cancels the loop and waits for any running sweep to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Info("notification scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	if s.config.RunOnStart {
		s.sweep(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	if _, err := s.runner.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("scheduled sweep failed", slog.String("error", redact.Error(err)))
	}
}
