package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tahina-randria/finary-icons-platform/internal/domain"
	"github.com/tahina-randria/finary-icons-platform/internal/redact"
	"github.com/tahina-randria/finary-icons-platform/internal/store"
	"github.com/tahina-randria/finary-icons-platform/internal/task"
)

// youTubeTaskPrefix starts every task id created for a YouTube request.
const youTubeTaskPrefix = "gen_yt_"

// Estimated run time of a concepts-only request, and of each concept when
// icons are generated.
const (
	conceptsOnlyEstimate      = 30
	secondsPerConceptEstimate = 3
)

// TaskStore is the part of task.TaskStore the service relies on.
type TaskStore interface {
	Create(ctx context.Context, id string, sourceType domain.SourceType, sourceData json.RawMessage) (*domain.GenerationTask, error)
	Get(ctx context.Context, id string) (*domain.GenerationTask, error)
}

// TaskRunner accepts pipeline runs for asynchronous execution.
type TaskRunner interface {
	Submit(t task.Task) error
}

// YouTubeTaskFactory builds the pipeline run for a task record.
type YouTubeTaskFactory interface {
	CreateTask(taskID string, source domain.YouTubeSource) (*task.YouTubeGenerationTask, error)
}

// GenerationConfig bounds caller-supplied request parameters.
type GenerationConfig struct {
	DefaultMaxConcepts int
	MaxConceptsLimit   int
}

// YouTubeRequest is a request to generate icons from a YouTube video.
// Zero values select the defaults: DefaultMaxConcepts and medium priority.
type YouTubeRequest struct {
	URL          string
	MaxConcepts  int
	MinPriority  domain.ConceptPriority
	AutoGenerate bool
}

// SubmitResult acknowledges an accepted generation request.
type SubmitResult struct {
	TaskID               string            `json:"task_id"`
	Status               domain.TaskStatus `json:"status"`
	Message              string            `json:"message"`
	EstimatedTimeSeconds int               `json:"estimated_time_seconds"`
}

// TaskStatusView is the externally visible status of a task.
type TaskStatusView struct {
	TaskID            string                     `json:"task_id"`
	Status            domain.TaskStatus          `json:"status"`
	Progress          int                        `json:"progress"`
	Message           *string                    `json:"message"`
	CreatedAt         time.Time                  `json:"created_at"`
	UpdatedAt         time.Time                  `json:"updated_at"`
	CompletedAt       *time.Time                 `json:"completed_at"`
	Error             *string                    `json:"error"`
	Transcript        []domain.TranscriptSegment `json:"transcript"`
	ExtractedConcepts []domain.Concept           `json:"extracted_concepts"`
	GeneratedIcons    []string                   `json:"generated_icons"`
}

// GenerationService creates generation tasks and reports their status.
type GenerationService struct {
	store   TaskStore
	runner  TaskRunner
	factory YouTubeTaskFactory
	config  GenerationConfig
	newID   func() string
	logger  *slog.Logger
}

// NewGenerationService creates a GenerationService.
// It returns an error if any of the required dependencies are nil.
func NewGenerationService(
	taskStore TaskStore,
	runner TaskRunner,
	factory YouTubeTaskFactory,
	config GenerationConfig,
	logger *slog.Logger,
) (*GenerationService, error) {
	if taskStore == nil {
		return nil, newGenerationError("create_service", "taskStore cannot be nil", nil)
	}
	if runner == nil {
		return nil, newGenerationError("create_service", "runner cannot be nil", nil)
	}
	if factory == nil {
		return nil, newGenerationError("create_service", "factory cannot be nil", nil)
	}
	if config.MaxConceptsLimit < 1 || config.DefaultMaxConcepts < 1 || config.DefaultMaxConcepts > config.MaxConceptsLimit {
		return nil, newGenerationError("create_service", "invalid max concepts bounds", nil)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &GenerationService{
		store:   taskStore,
		runner:  runner,
		factory: factory,
		config:  config,
		newID:   newYouTubeTaskID,
		logger:  logger.With(slog.String("component", "generation_service")),
	}, nil
}

func newYouTubeTaskID() string {
	return youTubeTaskPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// EstimatedTimeSeconds returns the rough run time reported to callers.
func EstimatedTimeSeconds(maxConcepts int, autoGenerate bool) int {
	if !autoGenerate {
		return conceptsOnlyEstimate
	}
	return maxConcepts * secondsPerConceptEstimate
}

func (s *GenerationService) normalize(req YouTubeRequest) (domain.YouTubeSource, error) {
	src := domain.YouTubeSource{
		URL:          strings.TrimSpace(req.URL),
		MaxConcepts:  req.MaxConcepts,
		MinPriority:  req.MinPriority,
		AutoGenerate: req.AutoGenerate,
	}
	if src.URL == "" {
		return src, fmt.Errorf("%w: youtube_url is required", ErrInvalidRequest)
	}
	if src.MaxConcepts == 0 {
		src.MaxConcepts = s.config.DefaultMaxConcepts
	}
	if src.MaxConcepts < 1 || src.MaxConcepts > s.config.MaxConceptsLimit {
		return src, fmt.Errorf("%w: max_concepts must be between 1 and %d", ErrInvalidRequest, s.config.MaxConceptsLimit)
	}
	priority, err := domain.ParsePriority(string(src.MinPriority))
	if err != nil {
		return src, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	src.MinPriority = priority
	return src, nil
}

// SubmitYouTube creates a PENDING task and queues its pipeline run.
// Returns ErrInvalidRequest for rejected parameters and ErrBusy when the
// runner cannot accept the run; in the latter case the record is marked FAILED.
func (s *GenerationService) SubmitYouTube(ctx context.Context, req YouTubeRequest) (*SubmitResult, error) {
	src, err := s.normalize(req)
	if err != nil {
		return nil, err
	}

	data, err := src.Encode()
	if err != nil {
		return nil, newGenerationError("submit", "failed to encode source", err)
	}

	taskID := s.newID()
	log := s.logger.With(slog.String("task_id", taskID))

	// The run is built first so a factory error never leaves a PENDING record.
	run, err := s.factory.CreateTask(taskID, src)
	if err != nil {
		log.Error("failed to build pipeline run", "error", err)
		return nil, newGenerationError("submit", "failed to build task", err)
	}

	record, err := s.store.Create(ctx, taskID, domain.SourceYouTube, data)
	if err != nil {
		log.Error("failed to create task record", "error", redact.Error(err))
		return nil, newGenerationError("submit", "failed to create task", err)
	}

	if err := s.runner.Submit(run); err != nil {
		log.Warn("task runner rejected pipeline run", "error", err)
		run.Fail(ctx, err)
		if errors.Is(err, task.ErrQueueFull) || errors.Is(err, task.ErrQueueClosed) {
			return nil, fmt.Errorf("%w: %w", ErrBusy, err)
		}
		return nil, newGenerationError("submit", "failed to queue task", err)
	}

	log.Info("youtube generation task submitted",
		"max_concepts", src.MaxConcepts,
		"min_priority", src.MinPriority,
		"auto_generate", src.AutoGenerate)

	return &SubmitResult{
		TaskID:               record.ID,
		Status:               record.Status,
		Message:              fmt.Sprintf("YouTube processing task created. Will extract up to %d concepts.", src.MaxConcepts),
		EstimatedTimeSeconds: EstimatedTimeSeconds(src.MaxConcepts, src.AutoGenerate),
	}, nil
}

// GetStatus returns the status projection of a task.
// Returns ErrTaskNotFound when the id is unknown or has expired.
func (s *GenerationService) GetStatus(ctx context.Context, taskID string) (*TaskStatusView, error) {
	record, err := s.store.Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, newGenerationError("get_status", "failed to read task", err)
	}
	return ProjectStatus(record), nil
}

// ProjectStatus maps a task record to its status payload. Empty message and
// error become null, and result fields stay null until produced.
func ProjectStatus(t *domain.GenerationTask) *TaskStatusView {
	view := &TaskStatusView{
		TaskID:            t.ID,
		Status:            t.Status,
		Progress:          t.Progress,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
		CompletedAt:       t.CompletedAt,
		Transcript:        t.Transcript,
		ExtractedConcepts: t.ExtractedConcepts,
		GeneratedIcons:    t.GeneratedIcons,
	}
	if t.Message != "" {
		msg := t.Message
		view.Message = &msg
	}
	if t.Error != "" {
		e := t.Error
		view.Error = &e
	}
	return view
}
