// Package memstore provides an in-process TaskBackend. Records live for the
// lifetime of the process and are invisible to other processes.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/tahina-randria/finary-icons-platform/internal/domain"
	"github.com/tahina-randria/finary-icons-platform/internal/store"
)

// TaskBackend keeps task records in a map guarded by a single mutex.
// It stores and returns deep copies so no caller aliases stored state.
type TaskBackend struct {
	mu    sync.Mutex
	tasks map[string]*domain.GenerationTask
}

// NewTaskBackend creates an empty in-process backend.
func NewTaskBackend() *TaskBackend {
	return &TaskBackend{tasks: make(map[string]*domain.GenerationTask)}
}

var _ store.TaskBackend = (*TaskBackend)(nil)

// Name implements store.TaskBackend.
func (b *TaskBackend) Name() string { return "memory" }

// Ping implements store.TaskBackend. The in-process backend is always reachable.
func (b *TaskBackend) Ping(context.Context) error { return nil }

// Create implements store.TaskBackend.
func (b *TaskBackend) Create(_ context.Context, task *domain.GenerationTask) error {
	if task == nil || task.ID == "" {
		return fmt.Errorf("%w: task must have an ID", store.ErrInvalidEntity)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks[task.ID] = task.Clone()
	return nil
}

// CreateIfAbsent implements store.TaskBackend.
func (b *TaskBackend) CreateIfAbsent(_ context.Context, task *domain.GenerationTask) error {
	if task == nil || task.ID == "" {
		return fmt.Errorf("%w: task must have an ID", store.ErrInvalidEntity)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.tasks[task.ID]; ok {
		return fmt.Errorf("%w: %s", store.ErrDuplicateTask, task.ID)
	}
	b.tasks[task.ID] = task.Clone()
	return nil
}

// Update implements store.TaskBackend. The mutate function runs under the
// lock against a copy, which replaces the stored record only on success.
func (b *TaskBackend) Update(_ context.Context, id string, mutate store.MutateFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	current, ok := b.tasks[id]
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrTaskNotFound, id)
	}

	next := current.Clone()
	if err := mutate(next); err != nil {
		return err
	}
	b.tasks[id] = next
	return nil
}

// Get implements store.TaskBackend.
func (b *TaskBackend) Get(_ context.Context, id string) (*domain.GenerationTask, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	task, ok := b.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrTaskNotFound, id)
	}
	return task.Clone(), nil
}

// Exists implements store.TaskBackend.
func (b *TaskBackend) Exists(_ context.Context, id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.tasks[id]
	return ok, nil
}

// Len returns the number of stored records.
func (b *TaskBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.tasks)
}
