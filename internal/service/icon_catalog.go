package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tahina-randria/finary-icons-platform/internal/domain"
	"github.com/tahina-randria/finary-icons-platform/internal/generation"
	"github.com/tahina-randria/finary-icons-platform/internal/redact"
	"github.com/tahina-randria/finary-icons-platform/internal/store"
)

// Catalog paging bounds.
const (
	DefaultIconPageSize = 20
	MaxIconPageSize     = 100
)

// ObjectStorage uploads image bytes and returns their public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// IconCatalog stores generated images and serves the icon catalog.
//
// Either dependency may be nil. Without objects, StoreIcon fails; without
// icons, uploads are not recorded and reads return ErrCatalogUnavailable.
type IconCatalog struct {
	objects ObjectStorage
	icons   store.IconStore
	logger  *slog.Logger
}

var _ generation.IconStorage = (*IconCatalog)(nil)

// NewIconCatalog creates an IconCatalog.
func NewIconCatalog(objects ObjectStorage, icons store.IconStore, logger *slog.Logger) *IconCatalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &IconCatalog{
		objects: objects,
		icons:   icons,
		logger:  logger.With(slog.String("component", "icon_catalog")),
	}
}

// CanStore reports whether StoreIcon can persist images.
func (c *IconCatalog) CanStore() bool {
	return c.objects != nil
}

// Configured reports whether catalog reads are available.
func (c *IconCatalog) Configured() bool {
	return c.icons != nil
}

// StoreIcon uploads image under fileName and records it in the catalog.
// It returns the catalog id, or the public URL when no catalog is configured.
func (c *IconCatalog) StoreIcon(ctx context.Context, concept domain.Concept, image *generation.GeneratedImage, fileName string) (string, error) {
	if c.objects == nil {
		return "", newCatalogError("store_icon", "object storage is not configured", ErrCatalogUnavailable)
	}
	if image == nil || len(image.Data) == 0 {
		return "", newCatalogError("store_icon", "image is empty", generation.ErrInvalidInput)
	}

	imageURL, err := c.objects.Upload(ctx, fileName, image.Data, image.MIMEType)
	if err != nil {
		return "", newCatalogError("store_icon", "upload failed", err)
	}

	if c.icons == nil {
		c.logger.Debug("icon uploaded without catalog record", "file_name", fileName)
		return imageURL, nil
	}

	icon, err := domain.NewIcon(concept, image.Prompt, imageURL)
	if err != nil {
		return "", newCatalogError("store_icon", "invalid icon", err)
	}
	if err := c.icons.Create(ctx, icon); err != nil {
		c.logger.Error("failed to record uploaded icon",
			"file_name", fileName,
			"image_url", redact.String(imageURL),
			"error", redact.Error(err))
		return "", newCatalogError("store_icon", "failed to record icon", err)
	}

	c.logger.Info("icon stored", "icon_id", icon.ID, "file_name", fileName)
	return icon.ID.String(), nil
}

// ListIcons returns one page of the catalog. Page defaults to 1 and page
// size to DefaultIconPageSize; sizes above MaxIconPageSize are rejected.
func (c *IconCatalog) ListIcons(ctx context.Context, filter store.IconFilter) (*store.IconPage, error) {
	if c.icons == nil {
		return nil, ErrCatalogUnavailable
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = DefaultIconPageSize
	}
	if filter.Page < 1 {
		return nil, fmt.Errorf("%w: page must be at least 1", ErrInvalidRequest)
	}
	if filter.PageSize < 1 || filter.PageSize > MaxIconPageSize {
		return nil, fmt.Errorf("%w: page_size must be between 1 and %d", ErrInvalidRequest, MaxIconPageSize)
	}

	page, err := c.icons.List(ctx, filter)
	if err != nil {
		return nil, newCatalogError("list_icons", "failed to list icons", err)
	}
	return page, nil
}

// GetIcon returns one icon. Malformed ids are reported as ErrIconNotFound.
func (c *IconCatalog) GetIcon(ctx context.Context, id string) (*domain.Icon, error) {
	if c.icons == nil {
		return nil, ErrCatalogUnavailable
	}
	iconID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrIconNotFound
	}

	icon, err := c.icons.GetByID(ctx, iconID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrIconNotFound
		}
		return nil, newCatalogError("get_icon", "failed to get icon", err)
	}
	return icon, nil
}
