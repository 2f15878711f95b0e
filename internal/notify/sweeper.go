package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/platform/logger"
	"github.com/phrazzld/todo-api/internal/redact"
	"github.com/phrazzld/todo-api/internal/store"
)

// DefaultLockKey is the lease key shared by all sweeping processes.
const DefaultLockKey = "todo:notify:sweep"

// SweeperConfig holds configuration for the Sweeper.
type SweeperConfig struct {
	// BatchSize is the page size used to walk the due set. Every due task is
	// still visited in one sweep; zero selects them all in a single query.
	BatchSize int

	// LockKey and LockTTL configure the optional sweep lease.
	LockKey string
	LockTTL time.Duration

	// Now returns the sweep's reference time. Nil means time.Now.
	Now func() time.Time
}

// SweepResult summarises one sweep.
type SweepResult struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration

	Selected  int
	Pages     int
	Processed int
	Succeeded int
	Failed    int
	Skipped   int

	// Deferred counts selected tasks that were never enqueued.
	Deferred int
	// InFlight counts enqueued tasks whose result was not collected before the sweep returned.
	InFlight int

	// LeaseContended is set when another process held the sweep lease.
	LeaseContended bool
}

// Sweeper runs one selection and dispatch cycle at a time.
type Sweeper struct {
	tasks    store.TaskStore
	queue    *JobQueue
	locker   Locker
	recorder Recorder
	config   SweeperConfig
	logger   *slog.Logger
}

// SweeperOption configures optional Sweeper collaborators.
type SweeperOption func(*Sweeper)

// WithLocker makes every sweep acquire a lease before selecting tasks.
func WithLocker(l Locker) SweeperOption {
	return func(s *Sweeper) { s.locker = l }
}

// WithRecorder attaches a Recorder for outcome and sweep measurements.
func WithRecorder(r Recorder) SweeperOption {
	return func(s *Sweeper) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewSweeper creates a Sweeper that feeds queue. A WorkerPool must be
// consuming queue for sweeps to make progress.
func NewSweeper(tasks store.TaskStore, queue *JobQueue, config SweeperConfig, logger *slog.Logger, opts ...SweeperOption) *Sweeper {
	if config.LockKey == "" {
		config.LockKey = DefaultLockKey
	}
	if config.LockTTL <= 0 {
		config.LockTTL = time.Minute
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Sweeper{
		tasks:    tasks,
		queue:    queue,
		recorder: nopRecorder{},
		config:   config,
		logger:   logger.With(slog.String("component", "notification_sweeper")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunOnce walks every due, unnotified task page by page and dispatches each
// through the worker pool. A page is fully collected before the next is read.
// Only a failure to query the store is returned as an error; per-task
// failures are counted in the result.
func (s *Sweeper) RunOnce(ctx context.Context) (SweepResult, error) {
	now := s.config.Now().UTC()
	result := SweepResult{RunID: uuid.NewString(), StartedAt: now}
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("run_id", result.RunID))
	ctx = logger.WithLogger(ctx, log)

	start := time.Now()

	if s.locker != nil {
		release, acquired, err := s.locker.Acquire(ctx, s.config.LockKey, s.config.LockTTL)
		switch {
		case err != nil:
			log.Warn("failed to acquire sweep lease, sweeping without it",
				slog.String("error", redact.Error(err)))
		case !acquired:
			log.Info("sweep lease held by another process, skipping sweep")
			result.LeaseContended = true
			result.Duration = time.Since(start)
			s.recorder.ObserveSweep(result, nil)
			return result, nil
		default:
			defer func() {
				if err := release(context.WithoutCancel(ctx)); err != nil {
					log.Warn("failed to release sweep lease", slog.String("error", redact.Error(err)))
				}
			}()
		}
	}

	log.Debug("checking for due tasks", slog.Time("now", now), slog.Int("batch_size", s.config.BatchSize))

	page := store.Page{Limit: s.config.BatchSize}
	for {
		tasks, err := s.tasks.SelectDueUnnotified(ctx, now, page)
		if err != nil {
			err = fmt.Errorf("failed to select due tasks: %w", err)
			log.Error("sweep failed", slog.String("error", redact.Error(err)), slog.Int("pages", result.Pages))
			result.Duration = time.Since(start)
			s.recorder.ObserveSweep(result, err)
			return result, err
		}
		if len(tasks) == 0 {
			break
		}

		result.Pages++
		result.Selected += len(tasks)
		log.Info("found due tasks", slog.Int("count", len(tasks)), slog.Int("page", result.Pages))

		if !s.dispatch(ctx, tasks, &result) {
			break
		}
		if page.Limit <= 0 || len(tasks) < page.Limit {
			break
		}
		page.After = store.CursorAfter(tasks[len(tasks)-1])
	}

	if result.Selected == 0 {
		log.Debug("no due tasks found")
		result.Duration = time.Since(start)
		s.recorder.ObserveSweep(result, nil)
		return result, nil
	}

	result.Duration = time.Since(start)

	log.Info("sweep completed",
		slog.Int("selected", result.Selected),
		slog.Int("pages", result.Pages),
		slog.Int("processed", result.Processed),
		slog.Int("succeeded", result.Succeeded),
		slog.Int("failed", result.Failed),
		slog.Int("skipped", result.Skipped),
		slog.Int("deferred", result.Deferred),
		slog.Int("in_flight", result.InFlight),
		slog.Duration("duration", result.Duration))

	s.recorder.ObserveSweep(result, nil)
	return result, nil
}

// dispatch enqueues one page of tasks and collects their results. It reports
// whether the sweep may move on to the next page.
func (s *Sweeper) dispatch(ctx context.Context, tasks []domain.Task, result *SweepResult) bool {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Buffered so workers never block on a sweep that stopped collecting.
	results := make(chan Result, len(tasks))

	enqueued := 0
	for _, task := range tasks {
		if err := s.queue.Enqueue(ctx, Job{Task: task, RunID: result.RunID, results: results}); err != nil {
			log.Warn("stopped enqueueing due tasks",
				slog.String("error", err.Error()),
				slog.Int("remaining", len(tasks)-enqueued))
			break
		}
		enqueued++
	}
	result.Deferred += len(tasks) - enqueued

	processed := 0
collect:
	for processed < enqueued {
		select {
		case r := <-results:
			processed++
			s.recorder.ObserveOutcome(r.Outcome)
			switch {
			case r.Outcome == OutcomeDelivered:
				result.Succeeded++
			case r.Outcome.Skipped():
				result.Skipped++
			case r.Outcome.Failed():
				result.Failed++
			default:
				log.Error("unknown dispatch outcome",
					slog.String("task_id", r.TaskID),
					slog.String("outcome", string(r.Outcome)))
				result.Failed++
			}
		case <-ctx.Done():
			break collect
		case <-s.queue.Done():
			break collect
		}
	}
	result.Processed += processed
	result.InFlight += enqueued - processed

	return enqueued == len(tasks) && processed == enqueued && ctx.Err() == nil
}
