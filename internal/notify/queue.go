package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/phrazzld/todo-api/internal/domain"
)

// Job is one due task handed from a sweep to the worker pool.
type Job struct {
	Task  domain.Task
	RunID string

	// results receives exactly one Result once the job has been processed.
	results chan<- Result
}

// JobQueue is a bounded, closable queue of jobs.
// Enqueue blocks while the queue is full.
type JobQueue struct {
	jobs      chan Job
	done      chan struct{}
	closeOnce sync.Once
	logger    *slog.Logger
}

// NewJobQueue creates a new job queue with the specified buffer size.
func NewJobQueue(size int, logger *slog.Logger) *JobQueue {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &JobQueue{
		jobs:   make(chan Job, size),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Enqueue adds a job to the queue, waiting for capacity.
// It returns ctx.Err() if ctx ends first and ErrQueueClosed once the queue is closed.
func (q *JobQueue) Enqueue(ctx context.Context, job Job) error {
	// Fail fast when closed even if there is spare capacity.
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}

	select {
	case q.jobs <- job:
		q.logger.Debug("job enqueued",
			"task_id", job.Task.ID,
			"run_id", job.RunID,
			"queue_len", len(q.jobs),
			"queue_cap", cap(q.jobs))
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the queue from accepting jobs. Jobs still buffered are dropped
// by the workers; they were never marked, so the next sweep selects them again.
func (q *JobQueue) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
		q.logger.Info("job queue closed", "dropped", len(q.jobs))
	})
}

// Done is closed when the queue is closed.
func (q *JobQueue) Done() <-chan struct{} {
	return q.done
}

// Len returns the number of buffered jobs.
func (q *JobQueue) Len() int {
	return len(q.jobs)
}
