// Package openai implements generation.ConceptExtractor on OpenAI chat
// models through the eino model abstraction.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tahina-randria/finary-icons-platform/internal/domain"
	"github.com/tahina-randria/finary-icons-platform/internal/generation"
)

const systemPrompt = "You are an expert at analyzing content and extracting visual concepts for icon generation. You always return valid JSON."

// Config configures the OpenAI chat model.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// NewChatModel creates an eino chat model for OpenAI.
func NewChatModel(ctx context.Context, cfg Config) (model.BaseChatModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: openai model cannot be empty", generation.ErrInvalidConfig)
	}

	modelConfig := &einoopenai.ChatModelConfig{
		APIKey: cfg.APIKey,
		Model:  cfg.Model,
	}
	if cfg.BaseURL != "" {
		modelConfig.BaseURL = cfg.BaseURL
	}
	if cfg.MaxTokens > 0 {
		maxTokens := cfg.MaxTokens
		modelConfig.MaxCompletionTokens = &maxTokens
	}
	if cfg.Temperature > 0 {
		temperature := cfg.Temperature
		modelConfig.Temperature = &temperature
	}
	if cfg.Timeout > 0 {
		modelConfig.Timeout = cfg.Timeout
	} else {
		modelConfig.Timeout = 60 * time.Second
	}

	chatModel, err := einoopenai.NewChatModel(ctx, modelConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create OpenAI chat model: %v", generation.ErrInvalidConfig, err)
	}
	return chatModel, nil
}

// ConceptExtractor implements generation.ConceptExtractor with a chat model.
type ConceptExtractor struct {
	chat    model.BaseChatModel
	prompts *generation.Prompts
	retry   generation.RetryPolicy
	logger  *slog.Logger
}

var _ generation.ConceptExtractor = (*ConceptExtractor)(nil)

// NewConceptExtractor wraps chat.
func NewConceptExtractor(chat model.BaseChatModel, prompts *generation.Prompts, retry generation.RetryPolicy, logger *slog.Logger) (*ConceptExtractor, error) {
	if chat == nil {
		return nil, fmt.Errorf("%w: chat model cannot be nil", generation.ErrInvalidConfig)
	}
	if prompts == nil {
		return nil, fmt.Errorf("%w: prompts cannot be nil", generation.ErrInvalidConfig)
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &ConceptExtractor{
		chat:    chat,
		prompts: prompts,
		retry:   retry,
		logger:  logger.With("component", "openai_concepts"),
	}, nil
}

// ExtractConcepts implements generation.ConceptExtractor.
func (e *ConceptExtractor) ExtractConcepts(ctx context.Context, transcript string, maxConcepts int) ([]domain.Concept, error) {
	prompt, err := e.prompts.ConceptPrompt(transcript, maxConcepts)
	if err != nil {
		return nil, err
	}

	msgs := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(prompt),
	}

	var concepts []domain.Concept
	err = generation.WithRetry(ctx, e.logger, e.retry, "extract_concepts", func(ctx context.Context) error {
		result, err := e.chat.Generate(ctx, msgs)
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("%w: nil message", generation.ErrInvalidResponse)
		}
		concepts, err = generation.ParseConcepts(result.Content, maxConcepts)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "concepts extracted", "count", len(concepts))
	return concepts, nil
}
