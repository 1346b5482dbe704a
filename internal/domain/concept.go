package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ConceptPriority ranks how useful a concept is as an icon.
type ConceptPriority string

// Concept priorities.
const (
	PriorityHigh   ConceptPriority = "high"
	PriorityMedium ConceptPriority = "medium"
	PriorityLow    ConceptPriority = "low"
)

var priorityRank = map[ConceptPriority]int{
	PriorityLow:    0,
	PriorityMedium: 1,
	PriorityHigh:   2,
}

// IconCategories lists the catalog categories a concept may belong to.
var IconCategories = []string{
	"finance_investissement",
	"immobilier",
	"vehicules",
	"metiers",
	"objets",
	"lieux",
	"devises",
	"actions",
	"etats",
	"organismes",
	"nourriture",
	"sport",
}

// Validation errors for Concept.
var (
	ErrEmptyConceptName     = errors.New("concept name cannot be empty")
	ErrEmptyConceptCategory = errors.New("concept category cannot be empty")
)

// ParsePriority normalizes a priority tag. An empty tag yields medium.
func ParsePriority(s string) (ConceptPriority, error) {
	p := ConceptPriority(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return PriorityMedium, nil
	}
	if _, ok := priorityRank[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
	return p, nil
}

// AtLeast reports whether p is at or above min.
func (p ConceptPriority) AtLeast(min ConceptPriority) bool {
	return priorityRank[p] >= priorityRank[min]
}

// Concept is a visual idea extracted from a transcript that can become an icon.
type Concept struct {
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Priority          ConceptPriority `json:"priority"`
	VisualDescription string          `json:"visual_description"`
	Context           string          `json:"context,omitempty"`
}

// Validate checks the fields every downstream stage depends on.
func (c Concept) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyConceptName
	}
	if strings.TrimSpace(c.Category) == "" {
		return ErrEmptyConceptCategory
	}
	if _, ok := priorityRank[c.Priority]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, c.Priority)
	}
	return nil
}

// FilterConcepts keeps concepts at or above min, preserving order, and caps
// the result at max entries when max is positive.
func FilterConcepts(concepts []Concept, min ConceptPriority, max int) []Concept {
	filtered := make([]Concept, 0, len(concepts))
	for _, c := range concepts {
		if !c.Priority.AtLeast(min) {
			continue
		}
		filtered = append(filtered, c)
		if max > 0 && len(filtered) == max {
			break
		}
	}
	return filtered
}

// TranscriptSegment is one timed piece of a video transcript.
type TranscriptSegment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// JoinTranscript concatenates segment texts separated by spaces.
func JoinTranscript(segments []TranscriptSegment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if text := strings.TrimSpace(s.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
