package shared

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetAndGetTraceID(t *testing.T) {
	ctx := context.Background()

	// Verify no trace ID in original context
	assert.Empty(t, GetTraceID(ctx), "Expected empty trace ID in original context")

	ctxWithTrace := SetTraceID(ctx)

	traceID := GetTraceID(ctxWithTrace)
	assert.NotEmpty(t, traceID, "Expected non-empty trace ID after setting")
	assert.Len(t, traceID, TraceIDLength)

	// Original context should remain unchanged
	assert.Empty(t, GetTraceID(ctx), "Expected original context to remain unchanged")
}

func TestGetTraceIDWithInvalidContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), TraceIDKey, 123) // Not a string

	assert.Empty(t, GetTraceID(ctx), "Expected empty trace ID when context has invalid type")
}

func TestWithTraceID(t *testing.T) {
	tests := []struct {
		name    string
		traceID string
		keep    bool
	}{
		{"caller supplied", "req-1234abcd", true},
		{"empty", "", false},
		{"too short", "abc", false},
		{"header injection", "abc\r\nSet-Cookie: x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetTraceID(WithTraceID(context.Background(), tt.traceID))
			if tt.keep {
				assert.Equal(t, tt.traceID, got)
				return
			}
			assert.NotEqual(t, tt.traceID, got)
			assert.Len(t, got, TraceIDLength)
		})
	}
}

func TestGenerateTraceID(t *testing.T) {
	traceID := generateTraceID()
	assert.Len(t, traceID, TraceIDLength, "Expected trace ID length to be 32 hex characters")

	_, err := hex.DecodeString(traceID)
	assert.NoError(t, err, "Expected valid hex string")

	// Generate multiple IDs to ensure uniqueness (probabilistic test)
	const iterations = 1000
	seen := make(map[string]bool, iterations)
	for i := 0; i < iterations; i++ {
		id := generateTraceID()
		assert.False(t, seen[id], "Expected all trace IDs to be unique")
		seen[id] = true
	}
	assert.Len(t, seen, iterations)
}
