package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tahina-randria/finary-icons-platform/internal/domain"
)

// conceptSchema is the shape models are asked to return for each concept.
type conceptSchema struct {
	Name              string `json:"name"`
	Category          string `json:"category"`
	Priority          string `json:"priority"`
	VisualDescription string `json:"visual_description"`
	Context           string `json:"context"`
}

// ParseConcepts decodes a model response into concepts.
//
// It accepts a bare JSON array, an object wrapping the array under any key,
// and either form surrounded by markdown code fences or prose. Items missing
// a name or category, or with an unknown priority, are dropped. The result
// is capped at maxConcepts when positive.
func ParseConcepts(raw string, maxConcepts int) ([]domain.Concept, error) {
	items, err := decodeConceptItems(raw)
	if err != nil {
		return nil, err
	}

	concepts := make([]domain.Concept, 0, len(items))
	for _, item := range items {
		priority, err := domain.ParsePriority(item.Priority)
		if err != nil {
			continue
		}
		c := domain.Concept{
			Name:              strings.TrimSpace(item.Name),
			Category:          strings.ToLower(strings.TrimSpace(item.Category)),
			Priority:          priority,
			VisualDescription: strings.TrimSpace(item.VisualDescription),
			Context:           strings.TrimSpace(item.Context),
		}
		if c.Validate() != nil {
			continue
		}
		concepts = append(concepts, c)
		if maxConcepts > 0 && len(concepts) == maxConcepts {
			break
		}
	}

	return concepts, nil
}

func decodeConceptItems(raw string) ([]conceptSchema, error) {
	text := stripCodeFence(strings.TrimSpace(raw))
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidResponse)
	}

	var items []conceptSchema
	if err := json.Unmarshal([]byte(text), &items); err == nil {
		return items, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &wrapper); err == nil {
		if rawItems, ok := wrapper["concepts"]; ok {
			if err := json.Unmarshal(rawItems, &items); err == nil {
				return items, nil
			}
		}
		for _, rawItems := range wrapper {
			if err := json.Unmarshal(rawItems, &items); err == nil {
				return items, nil
			}
		}
	}

	start, end := strings.Index(text, "["), strings.LastIndex(text, "]")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &items); err == nil {
			return items, nil
		}
	}

	return nil, fmt.Errorf("%w: no concept array found in response", ErrInvalidResponse)
}

func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
