package api

import (
	"net/http"

	"github.com/tahina-randria/finary-icons-platform/internal/api/shared"
)

// TaskStoreStatus reports which backend serves task records.
type TaskStoreStatus interface {
	BackendName() string
	DegradedBy() error
}

// HealthHandler reports liveness and the task store backend in use.
type HealthHandler struct {
	tasks   TaskStoreStatus
	pending func() int
	catalog bool
}

// NewHealthHandler creates a HealthHandler. pending may be nil.
func NewHealthHandler(tasks TaskStoreStatus, pending func() int, catalogConfigured bool) *HealthHandler {
	return &HealthHandler{tasks: tasks, pending: pending, catalog: catalogConfigured}
}

// Health handles GET /health. A degraded task store still answers 200.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "ok",
		TaskStore: h.tasks.BackendName(),
		Degraded:  h.tasks.DegradedBy() != nil,
		Catalog:   h.catalog,
	}
	if h.pending != nil {
		resp.Pending = h.pending()
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
