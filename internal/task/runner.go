package task

import (
	"context"
	"log/slog"
	"time"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// TaskTimeout is the wall-clock limit of one task run
	TaskTimeout time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
		TaskTimeout: 30 * time.Minute,
	}
}

// TaskRunner manages background task processing: a bounded queue feeding a
// worker pool.
type TaskRunner struct {
	queue  *TaskQueue
	pool   *WorkerPool
	logger *slog.Logger
}

// NewTaskRunner creates a new TaskRunner. Call Start before submitting.
func NewTaskRunner(config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	logger = logger.With("component", "task_runner")
	queue := NewTaskQueue(config.QueueSize, logger)
	pool := NewWorkerPool(queue, WorkerPoolConfig{
		WorkerCount: config.WorkerCount,
		TaskTimeout: config.TaskTimeout,
	}, logger)

	return &TaskRunner{
		queue:  queue,
		pool:   pool,
		logger: logger,
	}
}

// SetErrorHandler allows setting a custom error handler function
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.pool.SetErrorHandler(handler)
}

// Submit queues task for asynchronous execution without blocking.
// Returns ErrQueueFull or ErrQueueClosed when the task cannot be accepted.
func (r *TaskRunner) Submit(task Task) error {
	return r.queue.Enqueue(task)
}

// Pending returns the number of queued tasks not yet picked up by a worker.
func (r *TaskRunner) Pending() int {
	return r.queue.Len()
}

// Start begins processing tasks.
func (r *TaskRunner) Start() {
	r.pool.Start()
}

// Stop rejects new submissions and waits for queued and running tasks to
// finish, cancelling them if ctx expires first.
func (r *TaskRunner) Stop(ctx context.Context) error {
	r.queue.Close()
	return r.pool.Stop(ctx)
}
