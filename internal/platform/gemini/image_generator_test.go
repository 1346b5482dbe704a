package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tahina-randria/finary-icons-platform/internal/domain"
	"github.com/tahina-randria/finary-icons-platform/internal/generation"
	"google.golang.org/genai"
)

var voiture = domain.Concept{Name: "Voiture", Category: "vehicules", Priority: domain.PriorityHigh, VisualDescription: "red sedan"}

func TestGenerateImage(t *testing.T) {
	models := &fakeImageModel{
		GenerateImagesFn: func(_ context.Context, model string, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
			assert.Equal(t, "imagen-3.0-generate-002", model)
			assert.Contains(t, prompt, "Voiture")
			assert.Equal(t, "1:1", config.AspectRatio)
			return &genai.GenerateImagesResponse{GeneratedImages: []*genai.GeneratedImage{
				{Image: &genai.Image{ImageBytes: []byte("png-bytes")}},
				{Image: &genai.Image{ImageBytes: []byte("second")}},
			}}, nil
		},
	}
	gen, err := newImageGenerator(models, "imagen-3.0-generate-002", testPrompts(t), testLogger())
	require.NoError(t, err)

	img, err := gen.GenerateImage(context.Background(), voiture)

	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), img.Data)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Contains(t, img.Prompt, "red sedan")
}

func TestGenerateImageErrors(t *testing.T) {
	tests := []struct {
		name     string
		response *genai.GenerateImagesResponse
		err      error
		wantErr  error
	}{
		{name: "api error", err: errors.New("quota"), wantErr: generation.ErrGenerationFailed},
		{name: "no images", response: &genai.GenerateImagesResponse{}, wantErr: generation.ErrGenerationFailed},
		{
			name: "filtered",
			response: &genai.GenerateImagesResponse{GeneratedImages: []*genai.GeneratedImage{
				{RAIFilteredReason: "blocked"},
			}},
			wantErr: generation.ErrContentBlocked,
		},
		{
			name: "empty bytes",
			response: &genai.GenerateImagesResponse{GeneratedImages: []*genai.GeneratedImage{
				{Image: &genai.Image{}},
			}},
			wantErr: generation.ErrGenerationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			models := &fakeImageModel{
				GenerateImagesFn: func(context.Context, string, string, *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
					return tt.response, tt.err
				},
			}
			gen, err := newImageGenerator(models, "imagen", testPrompts(t), testLogger())
			require.NoError(t, err)

			_, err = gen.GenerateImage(context.Background(), voiture)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
