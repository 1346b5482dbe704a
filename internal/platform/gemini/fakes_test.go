package gemini

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tahina-randria/finary-icons-platform/internal/generation"
	"google.golang.org/genai"
)

type fakeContentModel struct {
	GenerateContentFn func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	calls             int
}

func (f *fakeContentModel) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	return f.GenerateContentFn(ctx, model, contents, config)
}

type fakeImageModel struct {
	GenerateImagesFn func(ctx context.Context, model string, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

func (f *fakeImageModel) GenerateImages(ctx context.Context, model string, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	return f.GenerateImagesFn(ctx, model, prompt, config)
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Parts: []*genai.Part{{Text: text}}},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPrompts(t *testing.T) *generation.Prompts {
	t.Helper()
	prompts, err := generation.NewPrompts("")
	require.NoError(t, err)
	return prompts
}

var fastRetry = generation.RetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond}
