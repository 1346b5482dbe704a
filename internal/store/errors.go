package store

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every backend. Callers match with errors.Is.
var (
	ErrNotFound           = errors.New("entity not found")
	ErrDuplicate          = errors.New("entity already exists")
	ErrInvalidEntity      = errors.New("invalid entity")
	ErrBackendUnavailable = errors.New("store backend unavailable")

	// ErrUpdateFailed means an optimistic update gave up after repeated
	// conflicting writes.
	ErrUpdateFailed = errors.New("update failed")

	// ErrTaskNotFound also covers tasks whose TTL elapsed.
	ErrTaskNotFound  = fmt.Errorf("%w: task", ErrNotFound)
	ErrIconNotFound  = fmt.Errorf("%w: icon", ErrNotFound)
	ErrDuplicateTask = fmt.Errorf("%w: task", ErrDuplicate)
)

// OpError records which backend operation failed on which entity kind.
type OpError struct {
	Entity string
	Op     string
	Detail string
	Err    error
}

func (e *OpError) Error() string {
	msg := e.Entity + " " + e.Op + ": " + e.Detail
	if e.Err == nil {
		return msg
	}
	return msg + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error { return e.Err }

// NewOpError wraps err with the entity kind, operation and a short detail.
func NewOpError(entity, op, detail string, err error) *OpError {
	return &OpError{Entity: entity, Op: op, Detail: detail, Err: err}
}
