package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/tahina-randria/finary-icons-platform/internal/domain"
	"github.com/tahina-randria/finary-icons-platform/internal/generation"
	"github.com/tahina-randria/finary-icons-platform/internal/redact"
	"golang.org/x/sync/errgroup"
)

// Progress checkpoints of a YouTube generation run.
const (
	progressFetchingTranscript = 5
	progressTranscriptReady    = 20
	progressExtractingConcepts = 25
	progressConceptsReady      = 40
	progressGenerationStart    = 45
	progressGenerationSpan     = 35
	progressCompleted          = 100
)

// failurePrefix starts the error of every failed YouTube run.
const failurePrefix = "YouTube generation failed: "

// Common errors
var (
	// ErrAllItemsFailed is returned when no concept produced an icon.
	ErrAllItemsFailed = errors.New("failed to generate any icons")

	ErrNilTaskUpdater       = errors.New("task updater cannot be nil")
	ErrNilTranscriptFetcher = errors.New("transcript fetcher cannot be nil")
	ErrNilConceptExtractor  = errors.New("concept extractor cannot be nil")
	ErrNilImageGenerator    = errors.New("image generator cannot be nil")
	ErrNilLogger            = errors.New("logger cannot be nil")
	ErrEmptyTaskID          = errors.New("task ID cannot be empty")
	ErrEmptyVideoURL        = errors.New("video URL cannot be empty")
)

// TaskUpdater is the write side of TaskStore used by pipeline runs.
type TaskUpdater interface {
	Update(ctx context.Context, id string, patch domain.TaskPatch) error
}

// generationProgress maps completed concepts onto the 45..80 band.
func generationProgress(completed, total int) int {
	if total <= 0 {
		return progressGenerationStart
	}
	return progressGenerationStart + completed*progressGenerationSpan/total
}

// conceptOutcome is the result of one concept attempt.
type conceptOutcome struct {
	iconID string
	stored bool
	err    error
}

func (o conceptOutcome) generated() bool {
	return o.err == nil && o.iconID != ""
}

// YouTubeGenerationTask turns the transcript of a YouTube video into icons.
type YouTubeGenerationTask struct {
	id          string
	source      domain.YouTubeSource
	updater     TaskUpdater
	transcripts generation.TranscriptFetcher
	concepts    generation.ConceptExtractor
	images      generation.ImageGenerator
	backgrounds generation.BackgroundRemover
	storage     generation.IconStorage
	concurrency int
	now         func() time.Time
	logger      *slog.Logger
}

var _ Task = (*YouTubeGenerationTask)(nil)

// ID returns the task record identifier.
func (t *YouTubeGenerationTask) ID() string {
	return t.id
}

// Type returns the task type identifier
func (t *YouTubeGenerationTask) Type() string {
	return TaskTypeYouTubeGeneration
}

// Execute runs the pipeline and always leaves the record COMPLETED or FAILED.
// Every failure, including a recovered panic, is recorded through Fail.
func (t *YouTubeGenerationTask) Execute(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("pipeline panic recovered", "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
			t.Fail(ctx, err)
		}
	}()

	t.logger.Info("starting youtube generation task",
		"max_concepts", t.source.MaxConcepts,
		"min_priority", t.source.MinPriority,
		"auto_generate", t.source.AutoGenerate)

	if err := t.run(ctx); err != nil {
		t.Fail(ctx, err)
		return err
	}
	return nil
}

// Fail marks the record FAILED with cause. It is the only path to FAILED and
// still writes when ctx is already cancelled or past its deadline.
func (t *YouTubeGenerationTask) Fail(ctx context.Context, cause error) {
	msg := failurePrefix + redact.Error(cause)
	t.logger.Error("youtube generation task failed", "error", redact.Error(cause))

	patch := domain.TaskPatch{}.WithError(msg).WithMessage(msg)
	if err := t.updater.Update(context.WithoutCancel(ctx), t.id, patch); err != nil {
		t.logger.Error("failed to record task failure", "error", redact.Error(err))
	}
}

func (t *YouTubeGenerationTask) update(ctx context.Context, stage string, patch domain.TaskPatch) error {
	if err := t.updater.Update(ctx, t.id, patch); err != nil {
		return fmt.Errorf("failed to update task during %s: %w", stage, err)
	}
	return nil
}

func (t *YouTubeGenerationTask) run(ctx context.Context) error {
	// A run dequeued after shutdown must not reach the collaborators.
	if err := ctx.Err(); err != nil {
		return err
	}

	// Stage 1: transcript
	log := t.logger.With("stage", "transcript")
	err := t.update(ctx, "transcript", domain.TaskPatch{}.
		WithStatus(domain.TaskStatusProcessing).
		WithProgress(progressFetchingTranscript).
		WithMessage("Extracting YouTube transcript..."))
	if err != nil {
		return err
	}

	segments, err := t.transcripts.FetchTranscript(ctx, t.source.URL)
	if err != nil {
		return fmt.Errorf("%w: failed to extract transcript: %w", generation.ErrUpstreamUnavailable, err)
	}
	if len(segments) == 0 {
		return fmt.Errorf("%w: %w", generation.ErrUpstreamUnavailable, generation.ErrNoTranscript)
	}
	log.Info("transcript extracted", "segments", len(segments))

	err = t.update(ctx, "transcript", domain.TaskPatch{}.
		WithProgress(progressTranscriptReady).
		WithMessage(fmt.Sprintf("Transcript extracted (%d segments)", len(segments))).
		WithTranscript(segments))
	if err != nil {
		return err
	}

	// Stage 2: concepts
	log = t.logger.With("stage", "concepts")
	err = t.update(ctx, "concepts", domain.TaskPatch{}.
		WithStatus(domain.TaskStatusExtractingConcepts).
		WithProgress(progressExtractingConcepts).
		WithMessage("Analyzing transcript..."))
	if err != nil {
		return err
	}

	extracted, err := t.concepts.ExtractConcepts(ctx, domain.JoinTranscript(segments), t.source.MaxConcepts)
	if err != nil {
		return fmt.Errorf("%w: failed to extract concepts: %w", generation.ErrUpstreamUnavailable, err)
	}
	concepts := domain.FilterConcepts(extracted, t.source.MinPriority, t.source.MaxConcepts)
	if len(concepts) == 0 {
		return fmt.Errorf("%w: %w", generation.ErrUpstreamUnavailable, generation.ErrNoConcepts)
	}
	log.Info("concepts extracted",
		"extracted", len(extracted),
		"kept", len(concepts))

	err = t.update(ctx, "concepts", domain.TaskPatch{}.
		WithProgress(progressConceptsReady).
		WithMessage(fmt.Sprintf("Extracted %d concepts", len(concepts))).
		WithConcepts(concepts))
	if err != nil {
		return err
	}

	if !t.source.AutoGenerate {
		return t.update(ctx, "completion", domain.TaskPatch{}.
			WithStatus(domain.TaskStatusCompleted).
			WithProgress(progressCompleted).
			WithMessage(fmt.Sprintf("Concept extraction completed. %d concepts ready for generation.", len(concepts))))
	}

	// Stage 3: icons
	err = t.update(ctx, "icons", domain.TaskPatch{}.
		WithStatus(domain.TaskStatusGeneratingImages).
		WithProgress(progressGenerationStart).
		WithMessage("Starting icon generation..."))
	if err != nil {
		return err
	}

	outcomes, err := t.generateIcons(ctx, concepts)
	if err != nil {
		return err
	}

	summary := summarize(outcomes, t.storage != nil)
	if summary.generated == 0 {
		return fmt.Errorf("%w (%d concepts attempted)", ErrAllItemsFailed, len(concepts))
	}

	t.logger.Info("youtube generation task completed",
		"generated", summary.generated,
		"stored", summary.stored,
		"failed", len(outcomes)-summary.generated)

	return t.update(ctx, "completion", domain.TaskPatch{}.
		WithStatus(domain.TaskStatusCompleted).
		WithProgress(progressCompleted).
		WithMessage(summary.message()))
}

// iconTracker serializes progress publication for the per-concept loop so
// pollers never see progress or the icon list move backwards.
type iconTracker struct {
	mu        sync.Mutex
	total     int
	completed int
	outcomes  []conceptOutcome
	done      []bool
}

func newIconTracker(total int) *iconTracker {
	return &iconTracker{
		total:    total,
		outcomes: make([]conceptOutcome, total),
		done:     make([]bool, total),
	}
}

// publish runs fn with the tracker locked.
func (tr *iconTracker) publish(fn func() error) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return fn()
}

// record stores the outcome of concept idx. Caller holds mu.
func (tr *iconTracker) record(idx int, o conceptOutcome) {
	tr.outcomes[idx] = o
	tr.done[idx] = true
	tr.completed++
}

// icons returns generated icon ids in extraction order. Caller holds mu.
func (tr *iconTracker) icons() []string {
	ids := make([]string, 0, tr.completed)
	for i, o := range tr.outcomes {
		if tr.done[i] && o.generated() {
			ids = append(ids, o.iconID)
		}
	}
	return ids
}

func (t *YouTubeGenerationTask) generateIcons(ctx context.Context, concepts []domain.Concept) ([]conceptOutcome, error) {
	tracker := newIconTracker(len(concepts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.concurrency)

	for idx, concept := range concepts {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					t.logger.Error("icon progress publication panicked",
						"concept", concept.Name, "panic", r, "stack", string(debug.Stack()))
					err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
				}
			}()

			if err := gctx.Err(); err != nil {
				return err
			}

			err = tracker.publish(func() error {
				return t.update(gctx, "icons", domain.TaskPatch{}.
					WithProgress(generationProgress(tracker.completed, tracker.total)).
					WithMessage(fmt.Sprintf("Generating icon %d/%d: %s", idx+1, tracker.total, concept.Name)))
			})
			if err != nil {
				return err
			}

			outcome := t.attemptConcept(gctx, concept)
			if err := gctx.Err(); err != nil {
				return err
			}

			return tracker.publish(func() error {
				tracker.record(idx, outcome)
				return t.update(gctx, "icons", domain.TaskPatch{}.
					WithProgress(generationProgress(tracker.completed, tracker.total)).
					WithIcons(tracker.icons()))
			})
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tracker.outcomes, nil
}

// attemptConcept runs processConcept and turns a panic into a failed
// outcome, so one broken concept is skipped like any other failure.
func (t *YouTubeGenerationTask) attemptConcept(ctx context.Context, concept domain.Concept) (outcome conceptOutcome) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("concept panic recovered, skipping concept",
				"stage", "icons", "concept", concept.Name, "panic", r, "stack", string(debug.Stack()))
			outcome = conceptOutcome{err: fmt.Errorf("%w: %v", ErrTaskPanicked, r)}
		}
	}()
	return t.processConcept(ctx, concept)
}

// processConcept generates, cleans and stores one icon. Failures are
// reported in the outcome, never returned.
func (t *YouTubeGenerationTask) processConcept(ctx context.Context, concept domain.Concept) conceptOutcome {
	log := t.logger.With("stage", "icons", "concept", concept.Name)

	image, err := t.images.GenerateImage(ctx, concept)
	if err != nil {
		log.Warn("icon generation failed, skipping concept", "error", redact.Error(err))
		return conceptOutcome{err: err}
	}

	if t.backgrounds != nil {
		cleaned, err := t.backgrounds.RemoveBackground(ctx, image.Data)
		switch {
		case err != nil:
			log.Warn("background removal failed, keeping original image", "error", redact.Error(err))
		case len(cleaned) == 0:
			log.Warn("background removal returned no data, keeping original image")
		default:
			image = &generation.GeneratedImage{Data: cleaned, MIMEType: "image/png", Prompt: image.Prompt}
		}
	}

	fileName := generation.IconFileName(concept.Name, t.now())
	outcome := conceptOutcome{iconID: fileName}
	if t.storage == nil {
		log.Info("icon generated", "file_name", fileName)
		return outcome
	}

	iconID, err := t.storage.StoreIcon(ctx, concept, image, fileName)
	if err != nil {
		log.Error("icon storage failed, icon not stored", "file_name", fileName, "error", redact.Error(err))
		return outcome
	}
	outcome.iconID = iconID
	outcome.stored = true
	log.Info("icon generated and stored", "icon_id", iconID)
	return outcome
}

type generationSummary struct {
	generated         int
	stored            int
	storageConfigured bool
}

func summarize(outcomes []conceptOutcome, storageConfigured bool) generationSummary {
	s := generationSummary{storageConfigured: storageConfigured}
	for _, o := range outcomes {
		if !o.generated() {
			continue
		}
		s.generated++
		if o.stored {
			s.stored++
		}
	}
	return s
}

func (s generationSummary) message() string {
	switch {
	case s.stored > 0 && s.stored == s.generated:
		return fmt.Sprintf("Successfully generated and stored %d icons!", s.stored)
	case s.stored > 0:
		return fmt.Sprintf("Successfully generated and stored %d icons! (%d more generated but not stored)",
			s.stored, s.generated-s.stored)
	case s.storageConfigured:
		return fmt.Sprintf("Successfully generated %d icons! (storage failed - icons not stored)", s.generated)
	default:
		return fmt.Sprintf("Successfully generated %d icons! (storage not configured - icons not stored)", s.generated)
	}
}
