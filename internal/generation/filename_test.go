package generation_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tahina-randria/finary-icons-platform/internal/generation"
)

func TestIconFileName(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	tests := []struct {
		name   string
		prefix string
	}{
		{name: "Compte Épargne", prefix: "compte_épargne_1700000000_"},
		{name: "  ETF / PEA ", prefix: "etf_pea_1700000000_"},
		{name: "!!!", prefix: "icon_1700000000_"},
	}

	for _, tt := range tests {
		got := generation.IconFileName(tt.name, now)
		assert.Regexp(t, "^"+regexp.QuoteMeta(tt.prefix)+"[0-9a-f]{8}\\.png$", got)
	}

	assert.NotEqual(t, generation.IconFileName("a", now), generation.IconFileName("a", now))
}
