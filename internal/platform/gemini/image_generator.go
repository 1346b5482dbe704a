package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tahina-randria/finary-icons-platform/internal/domain"
	"github.com/tahina-randria/finary-icons-platform/internal/generation"
	"google.golang.org/genai"
)

// ImageGenerator implements generation.ImageGenerator with an Imagen model.
type ImageGenerator struct {
	models  imageModel
	model   string
	prompts *generation.Prompts
	logger  *slog.Logger
}

var _ generation.ImageGenerator = (*ImageGenerator)(nil)

// NewImageGenerator creates a generator that calls model through client.
func NewImageGenerator(client *genai.Client, model string, prompts *generation.Prompts, logger *slog.Logger) (*ImageGenerator, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: gemini client cannot be nil", generation.ErrInvalidConfig)
	}
	return newImageGenerator(client.Models, model, prompts, logger)
}

func newImageGenerator(models imageModel, model string, prompts *generation.Prompts, logger *slog.Logger) (*ImageGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if model == "" {
		return nil, fmt.Errorf("%w: image model name cannot be empty", generation.ErrInvalidConfig)
	}
	if prompts == nil {
		return nil, fmt.Errorf("%w: prompts cannot be nil", generation.ErrInvalidConfig)
	}

	return &ImageGenerator{
		models:  models,
		model:   model,
		prompts: prompts,
		logger:  logger.With("component", "gemini_images", "model", model),
	}, nil
}

// GenerateImage implements generation.ImageGenerator.
func (g *ImageGenerator) GenerateImage(ctx context.Context, concept domain.Concept) (*generation.GeneratedImage, error) {
	prompt, err := g.prompts.IconPrompt(concept)
	if err != nil {
		return nil, err
	}

	g.logger.DebugContext(ctx, "generating icon image", "concept", concept.Name)

	resp, err := g.models.GenerateImages(ctx, g.model, prompt, &genai.GenerateImagesConfig{
		AspectRatio:    "1:1",
		OutputMIMEType: "image/png",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", generation.ErrGenerationFailed, concept.Name, err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 {
		return nil, fmt.Errorf("%w: no images generated for %s", generation.ErrGenerationFailed, concept.Name)
	}

	first := resp.GeneratedImages[0]
	if first.RAIFilteredReason != "" {
		return nil, fmt.Errorf("%w: %s", generation.ErrContentBlocked, first.RAIFilteredReason)
	}
	if first.Image == nil || len(first.Image.ImageBytes) == 0 {
		return nil, fmt.Errorf("%w: empty image for %s", generation.ErrGenerationFailed, concept.Name)
	}

	mimeType := first.Image.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}

	return &generation.GeneratedImage{
		Data:     first.Image.ImageBytes,
		MIMEType: mimeType,
		Prompt:   prompt,
	}, nil
}
