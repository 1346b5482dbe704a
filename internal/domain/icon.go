package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Validation errors for Icon.
var (
	ErrEmptyIconName     = errors.New("icon name cannot be empty")
	ErrEmptyIconImageURL = errors.New("icon image URL cannot be empty")
)

// Icon is a generated image registered in the catalog.
type Icon struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Prompt    string    `json:"prompt"`
	ImageURL  string    `json:"image_url"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

// NewIcon builds a catalog record for a concept whose image is stored at imageURL.
func NewIcon(concept Concept, prompt, imageURL string) (*Icon, error) {
	icon := &Icon{
		ID:        uuid.New(),
		Name:      concept.Name,
		Category:  concept.Category,
		Prompt:    prompt,
		ImageURL:  imageURL,
		Tags:      []string{concept.Category, string(concept.Priority)},
		CreatedAt: time.Now().UTC(),
	}

	if err := icon.Validate(); err != nil {
		return nil, err
	}
	return icon, nil
}

// Validate checks if the Icon has valid data.
func (i *Icon) Validate() error {
	if i.Name == "" {
		return ErrEmptyIconName
	}
	if i.ImageURL == "" {
		return ErrEmptyIconImageURL
	}
	return nil
}
