package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

var (
	// ErrTaskPanicked wraps a panic recovered while executing a task.
	ErrTaskPanicked = errors.New("task panicked")

	// ErrTaskAbandoned is recorded on tasks still queued when shutdown
	// cancelled the pool.
	ErrTaskAbandoned = errors.New("task abandoned at shutdown")
)

// failer is implemented by tasks that own a record which must be marked
// failed when the task will never run.
type failer interface {
	Fail(ctx context.Context, cause error)
}

// WorkerPool manages a pool of worker goroutines that process tasks
// from a task queue. It handles graceful shutdown and worker lifecycle.
type WorkerPool struct {
	// taskQueue provides read access to the tasks to be processed
	taskQueue TaskSource

	// workerCount is the number of concurrent workers to start
	workerCount int

	// taskTimeout bounds a single Execute call; zero means no limit
	taskTimeout time.Duration

	// wg tracks active worker goroutines for clean shutdown
	wg sync.WaitGroup

	// ctx is cancelled when shutdown can no longer wait for running tasks
	ctx    context.Context
	cancel context.CancelFunc

	logger *slog.Logger

	// errorHandler is called when a task execution fails
	// If nil, errors are only logged
	errorHandler func(task Task, err error)

	startOnce sync.Once
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start
	// If zero or negative, defaults to 1
	WorkerCount int

	// TaskTimeout is the wall-clock limit of one task run.
	TaskTimeout time.Duration
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig with reasonable defaults
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		WorkerCount: 2,
		TaskTimeout: 30 * time.Minute,
	}
}

// NewWorkerPool creates a new worker pool with the specified configuration
func NewWorkerPool(taskQueue TaskSource, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		taskQueue:   taskQueue,
		workerCount: workerCount,
		taskTimeout: config.TaskTimeout,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// SetErrorHandler sets the callback for failed task runs. Call before Start.
func (p *WorkerPool) SetErrorHandler(handler func(task Task, err error)) {
	p.errorHandler = handler
}

// Start launches the worker goroutines. Subsequent calls are no-ops.
func (p *WorkerPool) Start() {
	p.startOnce.Do(func() {
		p.logger.Info("starting worker pool", "worker_count", p.workerCount)
		for i := 0; i < p.workerCount; i++ {
			p.wg.Add(1)
			go p.worker(i)
		}
	})
}

// Stop waits for the workers to drain the queue, which the caller must have
// closed. If ctx expires first, running tasks are cancelled, tasks still
// queued are failed without running, and Stop returns ctx.Err() once every
// worker has returned.
func (p *WorkerPool) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		p.logger.Info("worker pool stopped")
		return nil
	case <-ctx.Done():
		p.logger.Warn("worker pool shutdown deadline reached, cancelling running tasks")
		p.cancel()
		<-done
		return ctx.Err()
	}
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)
	for {
		select {
		case <-p.ctx.Done():
			p.abandonQueued(id)
			p.logger.Debug("stopping worker", "worker_id", id)
			return
		case task, ok := <-p.taskQueue.Tasks():
			if !ok {
				p.logger.Debug("task channel closed, stopping worker", "worker_id", id)
				return
			}
			if p.ctx.Err() != nil {
				p.abandon(task, id)
				continue
			}
			p.process(task, id)
		}
	}
}

// abandonQueued fails every task still buffered once the pool is cancelled.
func (p *WorkerPool) abandonQueued(workerID int) {
	for {
		select {
		case task, ok := <-p.taskQueue.Tasks():
			if !ok {
				return
			}
			p.abandon(task, workerID)
		default:
			return
		}
	}
}

func (p *WorkerPool) abandon(task Task, workerID int) {
	err := fmt.Errorf("%w: %w", ErrTaskAbandoned, p.ctx.Err())
	p.logger.Warn("abandoning queued task",
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID)

	if f, ok := task.(failer); ok {
		f.Fail(p.ctx, err)
	}
	if p.errorHandler != nil {
		p.errorHandler(task, err)
	}
}

func (p *WorkerPool) process(task Task, workerID int) {
	log := p.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	start := time.Now()
	log.Info("processing task")

	if err := p.run(task, log); err != nil {
		log.Error("task execution failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		if p.errorHandler != nil {
			p.errorHandler(task, err)
		}
		return
	}

	log.Info("task completed successfully", "duration_ms", time.Since(start).Milliseconds())
}

// run executes task under the pool context and the per-task timeout,
// converting a panic into ErrTaskPanicked.
func (p *WorkerPool) run(task Task, log *slog.Logger) (err error) {
	ctx := p.ctx
	if p.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.taskTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("task panic recovered", "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()

	return task.Execute(ctx)
}
