package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tahina-randria/finary-icons-platform/internal/api/middleware"
	"github.com/tahina-randria/finary-icons-platform/internal/api/shared"
	"github.com/tahina-randria/finary-icons-platform/internal/platform/logger"
)

func TestTraceMiddleware(t *testing.T) {
	log, buf := logger.NewTestLogger(t)

	var seenTraceID string
	var hasLogger bool
	handler := middleware.TraceMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenTraceID = shared.GetTraceID(r.Context())
		hasLogger = logger.FromContextOrDefault(r.Context(), nil) != nil
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("generates trace id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Len(t, seenTraceID, shared.TraceIDLength)
		assert.True(t, hasLogger)
		assert.Equal(t, seenTraceID, rec.Header().Get(shared.TraceIDHeader))
	})

	t.Run("reuses caller trace id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(shared.TraceIDHeader, "caller-trace-0001")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "caller-trace-0001", seenTraceID)
		assert.Equal(t, "caller-trace-0001", rec.Header().Get(shared.TraceIDHeader))
	})

	entries := buf.EntriesWithMessage(t, "request started")
	require.Len(t, entries, 2)
	assert.Equal(t, "caller-trace-0001", entries[1]["trace_id"])
}

func TestRequestLogger(t *testing.T) {
	log, buf := logger.NewTestLogger(t)

	handler := middleware.TraceMiddleware(log)(middleware.RequestLogger(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte(`{}`))
		})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/generate/youtube", nil))

	entries := buf.EntriesWithMessage(t, "request completed")
	require.Len(t, entries, 1)
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, float64(http.StatusAccepted), entries[0]["status"])
	assert.Equal(t, "/api/generate/youtube", entries[0]["path"])
	assert.Equal(t, float64(2), entries[0]["bytes"])
	assert.NotEmpty(t, entries[0]["trace_id"])
}
