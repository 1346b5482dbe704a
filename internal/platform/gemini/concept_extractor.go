package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tahina-randria/finary-icons-platform/internal/domain"
	"github.com/tahina-randria/finary-icons-platform/internal/generation"
	"google.golang.org/genai"
)

// ConceptExtractor implements generation.ConceptExtractor with a Gemini text model.
type ConceptExtractor struct {
	models  contentModel
	model   string
	prompts *generation.Prompts
	retry   generation.RetryPolicy
	logger  *slog.Logger
}

var _ generation.ConceptExtractor = (*ConceptExtractor)(nil)

// NewConceptExtractor creates an extractor that calls model through client.
func NewConceptExtractor(
	client *genai.Client,
	model string,
	prompts *generation.Prompts,
	retry generation.RetryPolicy,
	logger *slog.Logger,
) (*ConceptExtractor, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: gemini client cannot be nil", generation.ErrInvalidConfig)
	}
	return newConceptExtractor(client.Models, model, prompts, retry, logger)
}

func newConceptExtractor(
	models contentModel,
	model string,
	prompts *generation.Prompts,
	retry generation.RetryPolicy,
	logger *slog.Logger,
) (*ConceptExtractor, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	if prompts == nil {
		return nil, fmt.Errorf("%w: prompts cannot be nil", generation.ErrInvalidConfig)
	}

	return &ConceptExtractor{
		models:  models,
		model:   model,
		prompts: prompts,
		retry:   retry,
		logger:  logger.With("component", "gemini_concepts", "model", model),
	}, nil
}

// ExtractConcepts implements generation.ConceptExtractor.
func (e *ConceptExtractor) ExtractConcepts(ctx context.Context, transcript string, maxConcepts int) ([]domain.Concept, error) {
	prompt, err := e.prompts.ConceptPrompt(transcript, maxConcepts)
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "extracting concepts",
		"transcript_length", len(transcript),
		"max_concepts", maxConcepts)

	var concepts []domain.Concept
	err = generation.WithRetry(ctx, e.logger, e.retry, "extract_concepts", func(ctx context.Context) error {
		text, err := e.generate(ctx, prompt)
		if err != nil {
			return err
		}
		concepts, err = generation.ParseConcepts(text, maxConcepts)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "concepts extracted", "count", len(concepts))
	return concepts, nil
}

func (e *ConceptExtractor) generate(ctx context.Context, prompt string) (string, error) {
	temperature := float32(0.7)
	resp, err := e.models.GenerateContent(ctx, e.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      &temperature,
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{
			Text: "You are an expert at analyzing content and extracting visual concepts for icon generation. You always return valid JSON.",
		}}},
	})
	if err != nil {
		return "", err
	}
	return responseText(resp)
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	switch {
	case resp == nil:
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	case resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "":
		return "", fmt.Errorf("%w: prompt blocked: %s", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	case len(resp.Candidates) == 0:
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}
