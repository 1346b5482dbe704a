package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tahina-randria/finary-icons-platform/internal/domain"
	"github.com/tahina-randria/finary-icons-platform/internal/redact"
	"github.com/tahina-randria/finary-icons-platform/internal/store"
)

// Mode identifies which backend currently serves a TaskStore.
type Mode int

const (
	// ModePrimary means operations go to the durable, shared backend.
	ModePrimary Mode = iota
	// ModeSecondary means the store has degraded to the in-process backend.
	ModeSecondary
)

func (m Mode) String() string {
	if m == ModePrimary {
		return "primary"
	}
	return "secondary"
}

// TaskStore provides atomic create/read/update of task records.
//
// It starts on the primary backend and moves to the secondary backend the
// first time the primary is unreachable or fails an operation; the failed
// operation is then retried on the secondary. The move is permanent for the
// life of the store and records written to the primary are not migrated.
type TaskStore struct {
	primary   store.TaskBackend
	secondary store.TaskBackend
	logger    *slog.Logger
	now       func() time.Time

	mu         sync.RWMutex
	mode       Mode
	degradedBy error
}

// NewTaskStore creates a store and pings primary. A nil or unreachable
// primary starts the store directly in ModeSecondary.
func NewTaskStore(ctx context.Context, primary, secondary store.TaskBackend, logger *slog.Logger) (*TaskStore, error) {
	if secondary == nil {
		return nil, errors.New("secondary task backend cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	s := &TaskStore{
		primary:   primary,
		secondary: secondary,
		logger:    logger.With("component", "task_store"),
		now:       func() time.Time { return time.Now().UTC() },
		mode:      ModePrimary,
	}

	if primary == nil {
		s.mode = ModeSecondary
		s.logger.Info("no primary task backend configured, using in-process backend",
			"backend", secondary.Name())
		return s, nil
	}

	if err := primary.Ping(ctx); err != nil {
		s.degrade(ctx, "ping", err)
		return s, nil
	}

	s.logger.Info("task store using primary backend", "backend", primary.Name())
	return s, nil
}

// Mode reports the backend currently in use.
func (s *TaskStore) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// BackendName returns the name of the backend currently in use.
func (s *TaskStore) BackendName() string {
	backend, _ := s.active()
	return backend.Name()
}

// DegradedBy returns the error that caused the downgrade, or nil.
func (s *TaskStore) DegradedBy() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degradedBy
}

// Create initializes a PENDING record for id, overwriting any existing one.
func (s *TaskStore) Create(ctx context.Context, id string, sourceType domain.SourceType, sourceData json.RawMessage) (*domain.GenerationTask, error) {
	record, err := domain.NewGenerationTask(id, sourceType, sourceData, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	err = s.run(ctx, "create", func(b store.TaskBackend) error {
		return b.Create(ctx, record)
	})
	if err != nil {
		return nil, err
	}
	return record.Clone(), nil
}

// CreateUnique is Create for callers that treat re-creation as an error.
// Returns store.ErrDuplicateTask when a record already exists for id.
func (s *TaskStore) CreateUnique(ctx context.Context, id string, sourceType domain.SourceType, sourceData json.RawMessage) (*domain.GenerationTask, error) {
	record, err := domain.NewGenerationTask(id, sourceType, sourceData, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	err = s.run(ctx, "create_unique", func(b store.TaskBackend) error {
		return b.CreateIfAbsent(ctx, record)
	})
	if err != nil {
		return nil, err
	}
	return record.Clone(), nil
}

// Update applies patch to the record for id.
// Returns store.ErrTaskNotFound for unknown or expired ids and
// domain.ErrTaskTerminal once the record is COMPLETED or FAILED.
func (s *TaskStore) Update(ctx context.Context, id string, patch domain.TaskPatch) error {
	return s.run(ctx, "update", func(b store.TaskBackend) error {
		return b.Update(ctx, id, func(t *domain.GenerationTask) error {
			return t.Apply(patch, s.now())
		})
	})
}

// Get returns a snapshot of the record or store.ErrTaskNotFound.
func (s *TaskStore) Get(ctx context.Context, id string) (*domain.GenerationTask, error) {
	var record *domain.GenerationTask
	err := s.run(ctx, "get", func(b store.TaskBackend) error {
		var err error
		record, err = b.Get(ctx, id)
		return err
	})
	return record, err
}

// Exists reports whether a record exists for id.
func (s *TaskStore) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.run(ctx, "exists", func(b store.TaskBackend) error {
		var err error
		exists, err = b.Exists(ctx, id)
		return err
	})
	return exists, err
}

func (s *TaskStore) active() (store.TaskBackend, Mode) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.mode == ModePrimary {
		return s.primary, ModePrimary
	}
	return s.secondary, ModeSecondary
}

// run executes op on the active backend. A backend failure on the primary
// degrades the store and reruns op on the secondary.
func (s *TaskStore) run(ctx context.Context, op string, fn func(store.TaskBackend) error) error {
	backend, mode := s.active()
	err := fn(backend)
	if err == nil || mode == ModeSecondary || !shouldDegrade(ctx, err) {
		return err
	}

	s.degrade(ctx, op, err)
	return fn(s.secondary)
}

// degrade moves the store to ModeSecondary. Only the first call logs.
func (s *TaskStore) degrade(ctx context.Context, op string, cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeSecondary {
		return
	}
	s.mode = ModeSecondary
	s.degradedBy = cause

	primaryName := "none"
	if s.primary != nil {
		primaryName = s.primary.Name()
	}
	s.logger.WarnContext(ctx, "primary task backend unavailable, degrading permanently to in-process backend",
		"primary", primaryName,
		"secondary", s.secondary.Name(),
		"operation", op,
		"error", redact.Error(cause))
}

// shouldDegrade separates backend failures from outcomes the caller must see.
func shouldDegrade(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, store.ErrDuplicate),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, store.ErrUpdateFailed),
		errors.Is(err, domain.ErrTaskTerminal),
		errors.Is(err, domain.ErrInvalidTaskStatus),
		errors.Is(err, domain.ErrValidation):
		return false
	}
	return true
}
