package redisstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tahina-randria/finary-icons-platform/internal/domain"
)

// TimestampFormat is the textual encoding of every timestamp in a stored record.
const TimestampFormat = time.RFC3339Nano

// ErrCorruptRecord is returned when a stored value cannot be decoded.
var ErrCorruptRecord = errors.New("corrupt task record")

// taskDocument is the stored JSON layout of a task. Timestamps are text and
// the status is its tag, so the value is readable with redis-cli.
type taskDocument struct {
	ID                string                     `json:"task_id"`
	Status            string                     `json:"status"`
	Progress          int                        `json:"progress"`
	Message           string                     `json:"message,omitempty"`
	SourceType        string                     `json:"source_type"`
	SourceData        json.RawMessage            `json:"source_data,omitempty"`
	CreatedAt         string                     `json:"created_at"`
	UpdatedAt         string                     `json:"updated_at"`
	CompletedAt       *string                    `json:"completed_at"`
	Error             string                     `json:"error,omitempty"`
	Transcript        []domain.TranscriptSegment `json:"transcript"`
	ExtractedConcepts []domain.Concept           `json:"extracted_concepts"`
	GeneratedIcons    []string                   `json:"generated_icons"`
}

// EncodeTask serializes a task for storage.
func EncodeTask(t *domain.GenerationTask) ([]byte, error) {
	doc := taskDocument{
		ID:                t.ID,
		Status:            string(t.Status),
		Progress:          t.Progress,
		Message:           t.Message,
		SourceType:        string(t.SourceType),
		SourceData:        t.SourceData,
		CreatedAt:         formatTime(t.CreatedAt),
		UpdatedAt:         formatTime(t.UpdatedAt),
		Error:             t.Error,
		Transcript:        t.Transcript,
		ExtractedConcepts: t.ExtractedConcepts,
		GeneratedIcons:    t.GeneratedIcons,
	}
	if t.CompletedAt != nil {
		completedAt := formatTime(*t.CompletedAt)
		doc.CompletedAt = &completedAt
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode task %s: %w", t.ID, err)
	}
	return data, nil
}

// DecodeTask inverts EncodeTask.
func DecodeTask(data []byte) (*domain.GenerationTask, error) {
	var doc taskDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}

	status, err := domain.ParseTaskStatus(doc.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	createdAt, err := parseTime(doc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: created_at: %v", ErrCorruptRecord, err)
	}
	updatedAt, err := parseTime(doc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: updated_at: %v", ErrCorruptRecord, err)
	}

	t := &domain.GenerationTask{
		ID:                doc.ID,
		Status:            status,
		Progress:          doc.Progress,
		Message:           doc.Message,
		SourceType:        domain.SourceType(doc.SourceType),
		SourceData:        doc.SourceData,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
		Error:             doc.Error,
		Transcript:        doc.Transcript,
		ExtractedConcepts: doc.ExtractedConcepts,
		GeneratedIcons:    doc.GeneratedIcons,
	}
	if doc.CompletedAt != nil {
		completedAt, err := parseTime(*doc.CompletedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: completed_at: %v", ErrCorruptRecord, err)
		}
		t.CompletedAt = &completedAt
	}
	return t, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimestampFormat, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
