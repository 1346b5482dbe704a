package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// TaskQueue is a bounded, non-blocking TaskSource. Submissions past capacity
// are refused rather than queued.
type TaskQueue struct {
	mu     sync.Mutex
	ch     chan Task
	closed bool
	logger *slog.Logger
}

func NewTaskQueue(capacity int, logger *slog.Logger) *TaskQueue {
	return &TaskQueue{
		ch:     make(chan Task, max(capacity, 1)),
		logger: logger,
	}
}

// Enqueue buffers t or fails immediately with ErrQueueFull or ErrQueueClosed.
func (q *TaskQueue) Enqueue(t Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.ch <- t:
	default:
		return fmt.Errorf("%w: %d tasks waiting", ErrQueueFull, cap(q.ch))
	}

	q.logger.Debug("task enqueued",
		"task_id", t.ID(),
		"task_type", t.Type(),
		"pending", len(q.ch))
	return nil
}

// Close refuses further submissions. Buffered tasks are still delivered.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
	q.logger.Info("task queue closed", "pending", len(q.ch))
}

// Len is the number of tasks waiting for a worker.
func (q *TaskQueue) Len() int { return len(q.ch) }

func (q *TaskQueue) Tasks() <-chan Task { return q.ch }
