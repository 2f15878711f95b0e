package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/platform/logger"
)

// HandlerFunc processes one task and reports its outcome.
type HandlerFunc func(ctx context.Context, task domain.Task) Result

// WorkerPoolConfig holds configuration options for the worker pool.
type WorkerPoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start.
	// If zero or negative, defaults to 1.
	WorkerCount int
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig with reasonable defaults.
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		WorkerCount: 4,
	}
}

// WorkerPool manages a pool of worker goroutines that process jobs
// from a JobQueue.
type WorkerPool struct {
	queue       *JobQueue
	handler     HandlerFunc
	workerCount int
	wg          sync.WaitGroup
	startOnce   sync.Once
	logger      *slog.Logger
}

// NewWorkerPool creates a new worker pool with the specified configuration.
func NewWorkerPool(queue *JobQueue, handler HandlerFunc, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}

	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	return &WorkerPool{
		queue:       queue,
		handler:     handler,
		workerCount: workerCount,
		logger:      logger.With(slog.String("component", "worker_pool")),
	}
}

// Start launches the workers. Calling Start more than once has no effect.
func (p *WorkerPool) Start() {
	p.startOnce.Do(func() {
		for i := 0; i < p.workerCount; i++ {
			p.wg.Add(1)
			go p.worker(i)
		}
		p.logger.Info("worker pool started", "worker_count", p.workerCount)
	})
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (p *WorkerPool) Stop() {
	p.queue.Close()
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)

	for {
		// Prefer shutdown over picking up another job.
		select {
		case <-p.queue.done:
			p.logger.Debug("stopping worker", "worker_id", id)
			return
		default:
		}

		select {
		case <-p.queue.done:
			p.logger.Debug("stopping worker", "worker_id", id)
			return
		case job := <-p.queue.jobs:
			job.results <- p.process(job, id)
		}
	}
}

// process runs the handler for one job. The job context is not tied to pool
// shutdown, so a marked task is never abandoned between mark and send.
func (p *WorkerPool) process(job Job, workerID int) (result Result) {
	log := p.logger.With(
		slog.String("task_id", job.Task.ID),
		slog.String("run_id", job.RunID),
		slog.Int("worker_id", workerID),
	)
	ctx := logger.WithLogger(context.Background(), log)

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while processing task", "panic", r)
			result = Result{TaskID: job.Task.ID, Outcome: OutcomeError, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	return p.handler(ctx, job.Task)
}
