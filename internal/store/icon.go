package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/tahina-randria/finary-icons-platform/internal/domain"
)

// IconFilter narrows catalog listings.
type IconFilter struct {
	Search   string
	Category string
	Page     int
	PageSize int
}

// Offset returns the row offset for the filter's page. Pages start at 1.
func (f IconFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// IconPage is one page of catalog results.
type IconPage struct {
	Icons    []domain.Icon `json:"icons"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// IconStore persists the icon catalog.
type IconStore interface {
	// Create inserts a new icon record.
	Create(ctx context.Context, icon *domain.Icon) error

	// GetByID returns the icon or ErrIconNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Icon, error)

	// List returns icons matching filter, newest first.
	List(ctx context.Context, filter IconFilter) (*IconPage, error)
}
