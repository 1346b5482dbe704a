package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tahina-randria/finary-icons-platform/internal/store"
)

func TestBuildIconFilter(t *testing.T) {
	tests := []struct {
		name      string
		filter    store.IconFilter
		wantWhere string
		wantArgs  []any
	}{
		{"empty", store.IconFilter{Page: 1, PageSize: 20}, "", nil},
		{
			"search",
			store.IconFilter{Search: " voiture "},
			" WHERE (name ILIKE $1 OR $2 = ANY(tags))",
			[]any{"%voiture%", "voiture"},
		},
		{
			"category",
			store.IconFilter{Category: "vehicules"},
			" WHERE category = $1",
			[]any{"vehicules"},
		},
		{
			"search and category",
			store.IconFilter{Search: "100%_sure", Category: "finance"},
			" WHERE (name ILIKE $1 OR $2 = ANY(tags)) AND category = $3",
			[]any{`%100\%\_sure%`, "100%_sure", "finance"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildIconFilter(tt.filter)
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
