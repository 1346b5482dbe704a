package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tahina-randria/finary-icons-platform/internal/api/shared"
	"github.com/tahina-randria/finary-icons-platform/internal/domain"
	"github.com/tahina-randria/finary-icons-platform/internal/service"
	"github.com/tahina-randria/finary-icons-platform/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Bad request errors
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrIconNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Capacity and configuration errors
	case errors.Is(err, service.ErrBusy),
		errors.Is(err, service.ErrCatalogUnavailable):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		// Built from request parameters only
		return capitalize(strings.TrimPrefix(err.Error(), service.ErrInvalidRequest.Error()+": "))

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation):
		return "Invalid entity data"

	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, service.ErrIconNotFound),
		errors.Is(err, store.ErrIconNotFound):
		return "Icon not found"

	case errors.Is(err, service.ErrBusy):
		return "Too many generation tasks in progress, retry later"

	case errors.Is(err, service.ErrCatalogUnavailable):
		return "Icon catalog is not configured"

	default:
		return "An unexpected error occurred"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// SanitizeValidationError turns validator failures into a short message
// naming the first offending JSON field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}

	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe))
}

func getValidationTagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required field"
	case "url":
		return "invalid URL"
	case "youtube_url":
		return "not a YouTube video URL"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the response for err. defaultMsg replaces the
// generic message of unmapped errors when set.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		msg = defaultMsg
	}

	var opts []shared.ResponseOption
	if status == http.StatusNotFound {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, msg, err, opts...)
}
