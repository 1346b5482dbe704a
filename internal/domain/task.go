package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"
)

// SourceType identifies what triggered a generation task.
type SourceType string

// Known source types.
const (
	SourceYouTube SourceType = "youtube"
)

// Default message for a freshly created task.
const MessageTaskCreated = "Task created"

// Validation errors for GenerationTask.
var (
	ErrEmptyTaskID     = errors.New("task ID cannot be empty")
	ErrEmptySourceType = errors.New("task source type cannot be empty")
)

// GenerationTask is the persisted state of one generation request.
//
// Records are mutated only through Apply. Slices that are nil have not been
// produced yet and serialize as null.
type GenerationTask struct {
	ID                string              `json:"task_id"`
	Status            TaskStatus          `json:"status"`
	Progress          int                 `json:"progress"`
	Message           string              `json:"message,omitempty"`
	SourceType        SourceType          `json:"source_type"`
	SourceData        json.RawMessage     `json:"source_data,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	CompletedAt       *time.Time          `json:"completed_at,omitempty"`
	Error             string              `json:"error,omitempty"`
	Transcript        []TranscriptSegment `json:"transcript"`
	ExtractedConcepts []Concept           `json:"extracted_concepts"`
	GeneratedIcons    []string            `json:"generated_icons"`
}

// NewGenerationTask returns a PENDING record at progress 0.
func NewGenerationTask(id string, sourceType SourceType, sourceData json.RawMessage, now time.Time) (*GenerationTask, error) {
	t := &GenerationTask{
		ID:         id,
		Status:     TaskStatusPending,
		Progress:   0,
		Message:    MessageTaskCreated,
		SourceType: sourceType,
		SourceData: slices.Clone(sourceData),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks identity fields and the status invariants.
func (t *GenerationTask) Validate() error {
	if t.ID == "" {
		return ErrEmptyTaskID
	}
	if t.SourceType == "" {
		return ErrEmptySourceType
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTaskStatus, t.Status)
	}
	if t.Progress < 0 || t.Progress > 100 {
		return fmt.Errorf("%w: progress %d out of range", ErrValidation, t.Progress)
	}
	if t.Status == TaskStatusFailed && t.Error == "" {
		return fmt.Errorf("%w: failed task without error", ErrValidation)
	}
	if t.Status == TaskStatusCompleted && (t.CompletedAt == nil || t.Progress != 100) {
		return fmt.Errorf("%w: completed task without completion timestamp or full progress", ErrValidation)
	}
	return nil
}

// Apply merges a sparse patch into the record.
//
// An error in the patch forces FAILED regardless of the requested status. A
// status that would move the task backwards is ignored, and progress only
// grows. Reaching a terminal status stamps CompletedAt once, and COMPLETED
// pins progress to 100. Terminal records reject every patch.
func (t *GenerationTask) Apply(p TaskPatch, now time.Time) error {
	if t.Status.IsTerminal() {
		return fmt.Errorf("%w: %s is %s", ErrTaskTerminal, t.ID, t.Status)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTaskStatus, *p.Status)
	}

	if p.Message != nil {
		t.Message = *p.Message
	}
	if p.Progress != nil {
		t.Progress = max(t.Progress, min(max(*p.Progress, 0), 100))
	}
	if p.Transcript != nil {
		t.Transcript = slices.Clone(p.Transcript)
	}
	if p.ExtractedConcepts != nil {
		t.ExtractedConcepts = slices.Clone(p.ExtractedConcepts)
	}
	if p.GeneratedIcons != nil {
		t.GeneratedIcons = slices.Clone(p.GeneratedIcons)
	}

	switch {
	case p.Error != nil:
		t.Error = *p.Error
		if t.Error == "" {
			t.Error = "task failed"
		}
		t.Status = TaskStatusFailed
	case p.Status != nil && !p.Status.Precedes(t.Status):
		t.Status = *p.Status
		if t.Status == TaskStatusFailed && t.Error == "" {
			t.Error = "task failed"
		}
	}

	if t.Status == TaskStatusCompleted {
		t.Progress = 100
	}
	if t.Status.IsTerminal() && t.CompletedAt == nil {
		completedAt := now
		t.CompletedAt = &completedAt
	}
	t.UpdatedAt = now
	return nil
}

// Clone returns a deep copy so callers can never alias stored state.
func (t *GenerationTask) Clone() *GenerationTask {
	if t == nil {
		return nil
	}
	c := *t
	c.SourceData = slices.Clone(t.SourceData)
	if t.CompletedAt != nil {
		completedAt := *t.CompletedAt
		c.CompletedAt = &completedAt
	}
	c.Transcript = slices.Clone(t.Transcript)
	c.ExtractedConcepts = slices.Clone(t.ExtractedConcepts)
	c.GeneratedIcons = slices.Clone(t.GeneratedIcons)
	return &c
}

// TaskPatch is a sparse update for a GenerationTask. Nil fields are left
// untouched; a non-nil empty slice replaces the stored value with an empty one.
type TaskPatch struct {
	Status            *TaskStatus
	Progress          *int
	Message           *string
	Error             *string
	Transcript        []TranscriptSegment
	ExtractedConcepts []Concept
	GeneratedIcons    []string
}

// WithStatus sets the requested status.
func (p TaskPatch) WithStatus(s TaskStatus) TaskPatch {
	p.Status = &s
	return p
}

// WithProgress sets the requested progress.
func (p TaskPatch) WithProgress(progress int) TaskPatch {
	p.Progress = &progress
	return p
}

// WithMessage sets the human readable status line.
func (p TaskPatch) WithMessage(msg string) TaskPatch {
	p.Message = &msg
	return p
}

// WithError marks the patch as a failure.
func (p TaskPatch) WithError(msg string) TaskPatch {
	p.Error = &msg
	return p
}

// WithTranscript publishes the transcript.
func (p TaskPatch) WithTranscript(segments []TranscriptSegment) TaskPatch {
	p.Transcript = nonNil(segments)
	return p
}

// WithConcepts publishes the extracted concepts.
func (p TaskPatch) WithConcepts(concepts []Concept) TaskPatch {
	p.ExtractedConcepts = nonNil(concepts)
	return p
}

// WithIcons republishes the generated icon identifiers.
func (p TaskPatch) WithIcons(icons []string) TaskPatch {
	p.GeneratedIcons = nonNil(icons)
	return p
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// YouTubeSource is the source data of a task triggered by a YouTube video.
type YouTubeSource struct {
	URL          string          `json:"youtube_url"`
	MaxConcepts  int             `json:"max_concepts"`
	MinPriority  ConceptPriority `json:"min_priority"`
	AutoGenerate bool            `json:"auto_generate"`
}

// Encode returns the source data as stored on the task record.
func (s YouTubeSource) Encode() (json.RawMessage, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode youtube source: %w", err)
	}
	return data, nil
}

// DecodeYouTubeSource reads the source data of a YouTube task.
func DecodeYouTubeSource(t *GenerationTask) (YouTubeSource, error) {
	var src YouTubeSource
	if t.SourceType != SourceYouTube {
		return src, fmt.Errorf("%w: source type %q is not %q", ErrValidation, t.SourceType, SourceYouTube)
	}
	if err := json.Unmarshal(t.SourceData, &src); err != nil {
		return src, fmt.Errorf("%w: malformed youtube source: %v", ErrValidation, err)
	}
	if src.MinPriority == "" {
		src.MinPriority = PriorityMedium
	}
	return src, nil
}
