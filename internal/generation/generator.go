package generation

import (
	"context"

	"github.com/tahina-randria/finary-icons-platform/internal/domain"
)

// TranscriptFetcher acquires the timed transcript of a video.
type TranscriptFetcher interface {
	// FetchTranscript returns the transcript segments in playback order.
	// It fails when no transcript is available in any attempted language.
	FetchTranscript(ctx context.Context, videoURL string) ([]domain.TranscriptSegment, error)
}

// ConceptExtractor turns transcript text into icon concepts.
type ConceptExtractor interface {
	// ExtractConcepts returns at most maxConcepts concepts in the order the
	// model produced them. It fails when the model response cannot be parsed.
	ExtractConcepts(ctx context.Context, transcript string, maxConcepts int) ([]domain.Concept, error)
}

// GeneratedImage is the output of an ImageGenerator.
type GeneratedImage struct {
	Data     []byte
	MIMEType string
	Prompt   string
}

// ImageGenerator renders one icon image for a concept.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, concept domain.Concept) (*GeneratedImage, error)
}

// BackgroundRemover strips the background from an image. Optional.
type BackgroundRemover interface {
	RemoveBackground(ctx context.Context, image []byte) ([]byte, error)
}

// IconStorage uploads an image and registers it in the catalog. Optional.
type IconStorage interface {
	// StoreIcon persists image under fileName and returns the catalog
	// identifier of the new icon.
	StoreIcon(ctx context.Context, concept domain.Concept, image *GeneratedImage, fileName string) (string, error)
}
