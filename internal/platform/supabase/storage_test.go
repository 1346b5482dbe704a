package supabase

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tahina-randria/finary-icons-platform/internal/generation"
)

func newStorage(t *testing.T, baseURL string) *Storage {
	t.Helper()
	s, err := NewStorage(Config{URL: baseURL, ServiceKey: "service-key", Bucket: "icons"},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return s
}

func TestUpload(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/storage/v1/object/icons/ingenieur_1700000000_0a1b2c3d.png", r.URL.Path)
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = io.WriteString(w, `{"Key":"icons/ingenieur_1700000000_0a1b2c3d.png"}`)
	}))
	defer srv.Close()

	url, err := newStorage(t, srv.URL+"/").Upload(context.Background(),
		"ingenieur_1700000000_0a1b2c3d.png", []byte("png-bytes"), "")

	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/storage/v1/object/public/icons/ingenieur_1700000000_0a1b2c3d.png", url)
	assert.Equal(t, []byte("png-bytes"), gotBody)
}

func TestUploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"error":"Duplicate"}`)
	}))
	defer srv.Close()

	_, err := newStorage(t, srv.URL).Upload(context.Background(), "a.png", []byte("x"), "image/png")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")
	assert.Contains(t, err.Error(), "Duplicate")
}

func TestUploadInvalidInput(t *testing.T) {
	s := newStorage(t, "http://localhost:54321")

	_, err := s.Upload(context.Background(), "", []byte("x"), "")
	assert.ErrorIs(t, err, generation.ErrInvalidInput)

	_, err = s.Upload(context.Background(), "a.png", nil, "")
	assert.ErrorIs(t, err, generation.ErrInvalidInput)
}

func TestNewStorageValidation(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := NewStorage(Config{URL: "http://x", Bucket: "icons"}, logger)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	_, err = NewStorage(Config{URL: "http://x", ServiceKey: "k"}, logger)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	_, err = NewStorage(Config{URL: "::bad", ServiceKey: "k", Bucket: "icons"}, logger)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}
