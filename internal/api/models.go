package api

import (
	"github.com/tahina-randria/finary-icons-platform/internal/domain"
	"github.com/tahina-randria/finary-icons-platform/internal/store"
)

// GenerateYouTubeRequest is the payload of POST /api/generate/youtube.
// Omitted fields take the service defaults; auto_generate defaults to true.
type GenerateYouTubeRequest struct {
	YouTubeURL   string `json:"youtube_url"   validate:"required,url,youtube_url"`
	MaxConcepts  *int   `json:"max_concepts"  validate:"omitempty,min=1"`
	MinPriority  string `json:"min_priority"  validate:"omitempty,oneof=high medium low"`
	AutoGenerate *bool  `json:"auto_generate"`
}

// IconListResponse is the payload of GET /api/icons.
type IconListResponse struct {
	Icons    []domain.Icon `json:"icons"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Success  bool          `json:"success"`
}

// IconResponse is the payload of GET /api/icons/{id}.
type IconResponse struct {
	Icon    *domain.Icon `json:"icon"`
	Success bool         `json:"success"`
}

// HealthResponse is the payload of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	TaskStore string `json:"task_store"`
	Degraded  bool   `json:"degraded"`
	Catalog   bool   `json:"catalog"`
	Pending   int    `json:"pending_tasks"`
}

func iconListResponse(page *store.IconPage) IconListResponse {
	icons := page.Icons
	if icons == nil {
		icons = []domain.Icon{}
	}
	return IconListResponse{
		Icons:    icons,
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
		Success:  true,
	}
}
