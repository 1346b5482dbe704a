package domain

import "errors"

var (
	// ErrValidation is wrapped by task record checks that reject malformed
	// state.
	ErrValidation = errors.New("validation failed")

	ErrInvalidTaskStatus = errors.New("invalid task status")
	ErrInvalidPriority   = errors.New("invalid concept priority")

	// ErrTaskTerminal rejects patches to COMPLETED or FAILED tasks.
	ErrTaskTerminal = errors.New("task is in a terminal state")
)
