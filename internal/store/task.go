package store

import (
	"context"

	"github.com/tahina-randria/finary-icons-platform/internal/domain"
)

// MutateFunc edits a task in place inside an atomic update. Returning an
// error aborts the update and leaves the stored record unchanged.
type MutateFunc func(task *domain.GenerationTask) error

// TaskBackend persists generation task records keyed by task ID.
//
// Implementations must make Update linearizable per task ID: the mutate
// function observes the latest committed record and no concurrent write to
// the same ID is lost. Get returns a snapshot the caller may modify freely.
type TaskBackend interface {
	// Name identifies the backend in logs and health output.
	Name() string

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Create stores task, overwriting any existing record with the same ID.
	Create(ctx context.Context, task *domain.GenerationTask) error

	// CreateIfAbsent stores task only when no record has its ID.
	// Returns ErrDuplicateTask otherwise.
	CreateIfAbsent(ctx context.Context, task *domain.GenerationTask) error

	// Update loads the record, applies mutate and stores the result.
	// Returns ErrTaskNotFound when no record exists.
	Update(ctx context.Context, id string, mutate MutateFunc) error

	// Get returns the record or ErrTaskNotFound.
	Get(ctx context.Context, id string) (*domain.GenerationTask, error)

	// Exists reports whether a record exists for id.
	Exists(ctx context.Context, id string) (bool, error)
}
