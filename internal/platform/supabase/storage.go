// Package supabase uploads icon images to Supabase storage over its REST API.
package supabase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tahina-randria/finary-icons-platform/internal/generation"
)

// Config configures a Storage client.
type Config struct {
	URL        string
	ServiceKey string
	Bucket     string
	Timeout    time.Duration
}

// Storage uploads objects into one bucket.
type Storage struct {
	baseURL    string
	serviceKey string
	bucket     string
	client     *http.Client
	logger     *slog.Logger
}

// NewStorage validates cfg and creates a client.
func NewStorage(cfg Config, logger *slog.Logger) (*Storage, error) {
	if cfg.URL == "" || cfg.ServiceKey == "" {
		return nil, fmt.Errorf("%w: supabase URL and service key are required", generation.ErrInvalidConfig)
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: supabase bucket cannot be empty", generation.ErrInvalidConfig)
	}
	if _, err := url.ParseRequestURI(cfg.URL); err != nil {
		return nil, fmt.Errorf("%w: invalid supabase URL: %v", generation.ErrInvalidConfig, err)
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Storage{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		serviceKey: cfg.ServiceKey,
		bucket:     cfg.Bucket,
		client:     &http.Client{Timeout: timeout},
		logger:     logger.With("component", "supabase_storage", "bucket", cfg.Bucket),
	}, nil
}

// PublicURL returns the public URL of an object in the bucket.
func (s *Storage) PublicURL(name string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, url.PathEscape(name))
}

// Upload stores data under name and returns its public URL.
func (s *Storage) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: object name cannot be empty", generation.ErrInvalidInput)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: object data cannot be empty", generation.ErrInvalidInput)
	}
	if contentType == "" {
		contentType = "image/png"
	}

	target := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("failed to upload %s: unexpected status %d: %s",
			name, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	s.logger.InfoContext(ctx, "object uploaded", "name", name, "bytes", len(data))
	return s.PublicURL(name), nil
}
