package generation

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"text/template"

	"github.com/tahina-randria/finary-icons-platform/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Prompts renders the text prompts sent to models.
type Prompts struct {
	concepts *template.Template
	icon     *template.Template
}

type conceptPromptData struct {
	Categories  []string
	Transcript  string
	MaxConcepts int
}

// NewPrompts loads the built-in templates. A non-empty conceptTemplatePath
// replaces the concept extraction template with the file's content.
func NewPrompts(conceptTemplatePath string) (*Prompts, error) {
	concepts, err := template.ParseFS(templateFS, "templates/concepts.tmpl")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse concept template: %v", ErrInvalidConfig, err)
	}
	if conceptTemplatePath != "" {
		content, err := os.ReadFile(conceptTemplatePath)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v",
				ErrInvalidConfig, conceptTemplatePath, err)
		}
		concepts, err = template.New("concepts").Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse prompt template: %v", ErrInvalidConfig, err)
		}
	}

	icon, err := template.ParseFS(templateFS, "templates/icon.tmpl")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse icon template: %v", ErrInvalidConfig, err)
	}

	return &Prompts{concepts: concepts, icon: icon}, nil
}

// ConceptPrompt renders the extraction prompt for a transcript.
func (p *Prompts) ConceptPrompt(transcript string, maxConcepts int) (string, error) {
	if transcript == "" {
		return "", fmt.Errorf("%w: transcript is empty", ErrInvalidInput)
	}
	if maxConcepts <= 0 {
		return "", fmt.Errorf("%w: max concepts must be positive", ErrInvalidInput)
	}

	var buf bytes.Buffer
	err := p.concepts.Execute(&buf, conceptPromptData{
		Categories:  domain.IconCategories,
		Transcript:  transcript,
		MaxConcepts: maxConcepts,
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute concept template: %w", err)
	}
	return buf.String(), nil
}

// IconPrompt renders the image prompt for a concept.
func (p *Prompts) IconPrompt(concept domain.Concept) (string, error) {
	if concept.Name == "" {
		return "", fmt.Errorf("%w: concept name is empty", ErrInvalidInput)
	}

	var buf bytes.Buffer
	if err := p.icon.Execute(&buf, concept); err != nil {
		return "", fmt.Errorf("failed to execute icon template: %w", err)
	}
	return buf.String(), nil
}
