package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tahina-randria/finary-icons-platform/internal/api/shared"
	"github.com/tahina-randria/finary-icons-platform/internal/domain"
	"github.com/tahina-randria/finary-icons-platform/internal/store"
)

// IconCatalog is the read side of the icon catalog.
type IconCatalog interface {
	ListIcons(ctx context.Context, filter store.IconFilter) (*store.IconPage, error)
	GetIcon(ctx context.Context, id string) (*domain.Icon, error)
}

// IconHandler serves the icon catalog.
type IconHandler struct {
	catalog IconCatalog
}

// NewIconHandler creates a new IconHandler
func NewIconHandler(catalog IconCatalog) *IconHandler {
	return &IconHandler{catalog: catalog}
}

// ListIcons handles GET /api/icons?search=&category=&page=&page_size=.
func (h *IconHandler) ListIcons(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.IconFilter{
		Search:   query.Get("search"),
		Category: query.Get("category"),
	}

	var ok bool
	if filter.Page, ok = intQueryParam(w, r, "page"); !ok {
		return
	}
	if filter.PageSize, ok = intQueryParam(w, r, "page_size"); !ok {
		return
	}

	page, err := h.catalog.ListIcons(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list icons")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, iconListResponse(page))
}

// GetIcon handles GET /api/icons/{id}.
func (h *IconHandler) GetIcon(w http.ResponseWriter, r *http.Request) {
	icon, err := h.catalog.GetIcon(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get icon")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, IconResponse{Icon: icon, Success: true})
}

// intQueryParam parses an optional integer query parameter; absent is 0.
// It writes a 400 response and returns false when the value is malformed.
func intQueryParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+name+": must be an integer")
		return 0, false
	}
	return v, true
}
