package task

import (
	"log/slog"
	"strings"
	"time"

	"github.com/tahina-randria/finary-icons-platform/internal/domain"
	"github.com/tahina-randria/finary-icons-platform/internal/generation"
)

// DefaultIconConcurrency is the number of concepts processed at once.
const DefaultIconConcurrency = 1

// YouTubeTaskDeps holds the collaborators shared by every YouTube run.
// Backgrounds and Storage are optional and must be left nil, not set to a
// typed nil, when unconfigured.
type YouTubeTaskDeps struct {
	Updater     TaskUpdater
	Transcripts generation.TranscriptFetcher
	Concepts    generation.ConceptExtractor
	Images      generation.ImageGenerator
	Backgrounds generation.BackgroundRemover
	Storage     generation.IconStorage

	// Concurrency bounds per-concept work; values below 1 mean 1.
	Concurrency int

	// Now overrides the clock used for icon file names.
	Now func() time.Time
}

// YouTubeTaskFactory creates YouTubeGenerationTask instances.
type YouTubeTaskFactory struct {
	deps   YouTubeTaskDeps
	logger *slog.Logger
}

// NewYouTubeTaskFactory validates the required collaborators.
func NewYouTubeTaskFactory(deps YouTubeTaskDeps, logger *slog.Logger) (*YouTubeTaskFactory, error) {
	switch {
	case deps.Updater == nil:
		return nil, ErrNilTaskUpdater
	case deps.Transcripts == nil:
		return nil, ErrNilTranscriptFetcher
	case deps.Concepts == nil:
		return nil, ErrNilConceptExtractor
	case deps.Images == nil:
		return nil, ErrNilImageGenerator
	case logger == nil:
		return nil, ErrNilLogger
	}
	if deps.Concurrency < 1 {
		deps.Concurrency = DefaultIconConcurrency
	}
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	return &YouTubeTaskFactory{
		deps:   deps,
		logger: logger.With(slog.String("component", "youtube_task_factory")),
	}, nil
}

// StorageConfigured reports whether generated icons will be persisted.
func (f *YouTubeTaskFactory) StorageConfigured() bool {
	return f.deps.Storage != nil
}

// CreateTask builds the run for an existing task record.
func (f *YouTubeTaskFactory) CreateTask(taskID string, source domain.YouTubeSource) (*YouTubeGenerationTask, error) {
	if taskID == "" {
		return nil, ErrEmptyTaskID
	}
	if strings.TrimSpace(source.URL) == "" {
		return nil, ErrEmptyVideoURL
	}
	if source.MinPriority == "" {
		source.MinPriority = domain.PriorityMedium
	}

	return &YouTubeGenerationTask{
		id:          taskID,
		source:      source,
		updater:     f.deps.Updater,
		transcripts: f.deps.Transcripts,
		concepts:    f.deps.Concepts,
		images:      f.deps.Images,
		backgrounds: f.deps.Backgrounds,
		storage:     f.deps.Storage,
		concurrency: f.deps.Concurrency,
		now:         f.deps.Now,
		logger: f.logger.With(
			slog.String("component", "youtube_generation_task"),
			slog.String("task_id", taskID),
		),
	}, nil
}
