// Package replicate removes image backgrounds through the Replicate
// predictions API.
package replicate

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tahina-randria/finary-icons-platform/internal/generation"
)

const maxImageSize = 32 << 20

// Prediction states reported by Replicate.
const (
	statusStarting   = "starting"
	statusProcessing = "processing"
	statusSucceeded  = "succeeded"
	statusFailed     = "failed"
	statusCanceled   = "canceled"
)

// Config configures a BackgroundRemover.
type Config struct {
	APIToken     string
	ModelVersion string
	BaseURL      string
	PollInterval time.Duration
	Timeout      time.Duration
}

type predictionRequest struct {
	Version string          `json:"version"`
	Input   predictionInput `json:"input"`
}

type predictionInput struct {
	Image        string `json:"image"`
	OutputFormat string `json:"output_format"`
}

type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  any             `json:"error"`
}

// outputURL returns the first URL in the prediction output, which is either
// a single string or a list of strings depending on the model.
func (p prediction) outputURL() (string, error) {
	var single string
	if err := json.Unmarshal(p.Output, &single); err == nil && single != "" {
		return single, nil
	}
	var list []string
	if err := json.Unmarshal(p.Output, &list); err == nil && len(list) > 0 && list[0] != "" {
		return list[0], nil
	}
	return "", fmt.Errorf("%w: prediction %s has no output URL", generation.ErrInvalidResponse, p.ID)
}

// BackgroundRemover implements generation.BackgroundRemover.
type BackgroundRemover struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

var _ generation.BackgroundRemover = (*BackgroundRemover)(nil)

// NewBackgroundRemover validates cfg and creates a remover.
func NewBackgroundRemover(cfg Config, logger *slog.Logger) (*BackgroundRemover, error) {
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("%w: replicate API token cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelVersion == "" {
		return nil, fmt.Errorf("%w: replicate model version cannot be empty", generation.ErrInvalidConfig)
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.replicate.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}

	return &BackgroundRemover{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger.With("component", "replicate_bg_removal"),
	}, nil
}

// RemoveBackground implements generation.BackgroundRemover. It creates a
// prediction, polls it until it settles and downloads the result.
func (r *BackgroundRemover) RemoveBackground(ctx context.Context, image []byte) ([]byte, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: image cannot be empty", generation.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(predictionRequest{
		Version: r.cfg.ModelVersion,
		Input: predictionInput{
			Image:        "data:image/png;base64," + base64.StdEncoding.EncodeToString(image),
			OutputFormat: "png",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode prediction request: %w", err)
	}

	var p prediction
	if err := r.doJSON(ctx, http.MethodPost, r.cfg.BaseURL+"/v1/predictions", body, &p); err != nil {
		return nil, fmt.Errorf("failed to create prediction: %w", err)
	}
	r.logger.DebugContext(ctx, "prediction created", "prediction_id", p.ID)

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()
	for p.Status == statusStarting || p.Status == statusProcessing || p.Status == "" {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("prediction %s did not finish: %w", p.ID, ctx.Err())
		case <-ticker.C:
		}
		if err := r.doJSON(ctx, http.MethodGet, r.cfg.BaseURL+"/v1/predictions/"+p.ID, nil, &p); err != nil {
			return nil, fmt.Errorf("failed to poll prediction %s: %w", p.ID, err)
		}
	}

	switch p.Status {
	case statusSucceeded:
	case statusFailed, statusCanceled:
		return nil, fmt.Errorf("%w: prediction %s %s: %v", generation.ErrGenerationFailed, p.ID, p.Status, p.Error)
	default:
		return nil, fmt.Errorf("%w: prediction %s has unknown status %q", generation.ErrInvalidResponse, p.ID, p.Status)
	}

	outputURL, err := p.outputURL()
	if err != nil {
		return nil, err
	}
	result, err := r.download(ctx, outputURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download prediction %s output: %w", p.ID, err)
	}

	r.logger.InfoContext(ctx, "background removed", "prediction_id", p.ID, "bytes", len(result))
	return result, nil
}

func (r *BackgroundRemover) doJSON(ctx context.Context, method, url string, body []byte, out *prediction) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+r.cfg.APIToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", generation.ErrInvalidResponse, err)
	}
	return nil
}

func (r *BackgroundRemover) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty output image", generation.ErrInvalidResponse)
	}
	return data, nil
}
