package domain

import "fmt"

// TaskStatus is the lifecycle stage of a generation task.
type TaskStatus string

// Task status values, in pipeline order.
const (
	TaskStatusPending             TaskStatus = "pending"
	TaskStatusProcessing          TaskStatus = "processing"
	TaskStatusExtractingConcepts  TaskStatus = "extracting_concepts"
	TaskStatusGeneratingImages    TaskStatus = "generating_images"
	TaskStatusRemovingBackgrounds TaskStatus = "removing_backgrounds"
	TaskStatusUploading           TaskStatus = "uploading"
	TaskStatusCompleted           TaskStatus = "completed"
	TaskStatusFailed              TaskStatus = "failed"
)

// statusRank orders statuses along the pipeline. A task never moves to a
// lower rank. FAILED outranks everything so it is reachable from any stage.
var statusRank = map[TaskStatus]int{
	TaskStatusPending:             0,
	TaskStatusProcessing:          1,
	TaskStatusExtractingConcepts:  2,
	TaskStatusGeneratingImages:    3,
	TaskStatusRemovingBackgrounds: 4,
	TaskStatusUploading:           5,
	TaskStatusCompleted:           6,
	TaskStatusFailed:              7,
}

// ParseTaskStatus converts a textual tag back into a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTaskStatus, s)
	}
	return status, nil
}

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// IsTerminal reports whether s is COMPLETED or FAILED.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// Precedes reports whether s comes strictly before other in the pipeline.
func (s TaskStatus) Precedes(other TaskStatus) bool {
	return statusRank[s] < statusRank[other]
}

func (s TaskStatus) String() string {
	return string(s)
}
