package api

import (
	"context"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/tahina-randria/finary-icons-platform/internal/api/shared"
	"github.com/tahina-randria/finary-icons-platform/internal/domain"
	"github.com/tahina-randria/finary-icons-platform/internal/platform/logger"
	"github.com/tahina-randria/finary-icons-platform/internal/platform/youtube"
	"github.com/tahina-randria/finary-icons-platform/internal/service"
)

// GenerationService is the use-case surface the generation handler needs.
type GenerationService interface {
	SubmitYouTube(ctx context.Context, req service.YouTubeRequest) (*service.SubmitResult, error)
	GetStatus(ctx context.Context, taskID string) (*service.TaskStatusView, error)
}

// GenerationHandler handles icon generation requests and status polling.
type GenerationHandler struct {
	generation GenerationService
	validator  *validator.Validate
}

// NewGenerationHandler creates a new GenerationHandler
func NewGenerationHandler(generation GenerationService) *GenerationHandler {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("youtube_url", func(fl validator.FieldLevel) bool {
		_, err := youtube.VideoID(fl.Field().String())
		return err == nil
	})
	v.RegisterTagNameFunc(jsonFieldName)

	return &GenerationHandler{
		generation: generation,
		validator:  v,
	}
}

// GenerateFromYouTube handles POST /api/generate/youtube.
// The pipeline runs asynchronously, so success is 202 Accepted.
func (h *GenerationHandler) GenerateFromYouTube(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), slog.Default())

	var req GenerateYouTubeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	svcReq := service.YouTubeRequest{
		URL:          req.YouTubeURL,
		MinPriority:  domain.ConceptPriority(req.MinPriority),
		AutoGenerate: true,
	}
	if req.MaxConcepts != nil {
		svcReq.MaxConcepts = *req.MaxConcepts
	}
	if req.AutoGenerate != nil {
		svcReq.AutoGenerate = *req.AutoGenerate
	}

	result, err := h.generation.SubmitYouTube(r.Context(), svcReq)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create YouTube generation task")
		return
	}

	log.Info("youtube generation accepted", "task_id", result.TaskID)
	shared.RespondWithJSON(w, r, http.StatusAccepted, result)
}

// GetStatus handles GET /api/generate/status/{task_id}.
func (h *GenerationHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")
	if taskID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Task ID is required")
		return
	}

	view, err := h.generation.GetStatus(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task status")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// jsonFieldName reports validation failures by their JSON field name.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}
