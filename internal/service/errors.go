package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in ServiceError
// 3. The API layer maps service errors to HTTP status codes
var (
	// ErrInvalidRequest indicates the request parameters were rejected.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidRequest = errors.New("invalid generation request")

	// ErrTaskNotFound indicates the task id is unknown or has expired.
	// API layer should map this to HTTP 404 Not Found.
	ErrTaskNotFound = errors.New("generation task not found")

	// ErrBusy indicates the task queue cannot accept more work.
	// API layer should map this to HTTP 503 Service Unavailable.
	ErrBusy = errors.New("generation queue is full")

	// ErrCatalogUnavailable indicates the icon catalog is not configured.
	// API layer should map this to HTTP 503 Service Unavailable.
	ErrCatalogUnavailable = errors.New("icon catalog is not configured")

	// ErrIconNotFound indicates the icon does not exist in the catalog.
	// API layer should map this to HTTP 404 Not Found.
	ErrIconNotFound = errors.New("icon not found")
)

// ServiceError wraps an unexpected failure with the operation that produced it.
type ServiceError struct {
	Service   string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

func newGenerationError(operation, message string, err error) error {
	return &ServiceError{Service: "generation service", Operation: operation, Message: message, Err: err}
}

func newCatalogError(operation, message string, err error) error {
	return &ServiceError{Service: "icon catalog", Operation: operation, Message: message, Err: err}
}
