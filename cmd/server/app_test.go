package main

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tahina-randria/finary-icons-platform/internal/config"
	"github.com/tahina-randria/finary-icons-platform/internal/domain"
	"github.com/tahina-randria/finary-icons-platform/internal/platform/logger"
	"github.com/tahina-randria/finary-icons-platform/internal/task"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "debug"},
		Redis: config.RedisConfig{
			TaskTTL:     24 * time.Hour,
			DialTimeout: 200 * time.Millisecond,
			KeyPrefix:   "icons:task:",
		},
		Task: config.TaskConfig{
			WorkerCount:        1,
			QueueSize:          4,
			Timeout:            time.Minute,
			ConceptConcurrency: 1,
			DefaultMaxConcepts: 10,
			MaxConceptsLimit:   50,
		},
		LLM: config.LLMConfig{
			ConceptProvider: "gemini",
			GeminiAPIKey:    "test-gemini-key",
			OpenAIAPIKey:    "sk-test",
			ConceptModel:    "gemini-2.0-flash",
			OpenAIModel:     "gpt-4-turbo-preview",
			ImageModel:      "imagen-3.0-generate-002",
			MaxRetries:      0,
		},
		YouTube: config.YouTubeConfig{
			Languages: []string{"fr", "en"},
			Timeout:   time.Second,
		},
		Replicate: config.ReplicateConfig{
			ModelVersion: "v1",
			PollInterval: time.Second,
		},
		Supabase: config.SupabaseConfig{Bucket: "icons"},
	}
}

func TestSetupTaskStore(t *testing.T) {
	t.Parallel()

	t.Run("memory only without redis url", func(t *testing.T) {
		t.Parallel()
		log, _ := logger.NewTestLogger(t)

		ts, client, err := setupTaskStore(context.Background(), testConfig(), log)
		require.NoError(t, err)
		assert.Nil(t, client)
		assert.Equal(t, "memory", ts.BackendName())
		assert.Equal(t, task.ModeSecondary, ts.Mode())
		assert.NoError(t, ts.DegradedBy())
	})

	t.Run("redis primary when reachable", func(t *testing.T) {
		t.Parallel()
		log, _ := logger.NewTestLogger(t)
		mr := miniredis.RunT(t)

		cfg := testConfig()
		cfg.Redis.URL = "redis://" + mr.Addr()

		ts, client, err := setupTaskStore(context.Background(), cfg, log)
		require.NoError(t, err)
		require.NotNil(t, client)
		t.Cleanup(func() { _ = client.Close() })

		assert.Equal(t, "redis", ts.BackendName())
		assert.Equal(t, task.ModePrimary, ts.Mode())

		_, err = ts.Create(context.Background(), "gen_yt_000000000001", domain.SourceYouTube, nil)
		require.NoError(t, err)
		assert.True(t, mr.Exists("icons:task:gen_yt_000000000001"))
	})

	t.Run("unreachable redis starts degraded", func(t *testing.T) {
		t.Parallel()
		log, buf := logger.NewTestLogger(t)
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		cfg := testConfig()
		cfg.Redis.URL = "redis://" + addr

		ts, client, err := setupTaskStore(context.Background(), cfg, log)
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })

		assert.Equal(t, "memory", ts.BackendName())
		assert.Error(t, ts.DegradedBy())
		assert.Len(t, buf.EntriesWithMessage(t,
			"primary task backend unavailable, degrading permanently to in-process backend"), 1)
	})

	t.Run("invalid redis url", func(t *testing.T) {
		t.Parallel()
		log, _ := logger.NewTestLogger(t)

		cfg := testConfig()
		cfg.Redis.URL = "http://not-redis"

		_, _, err := setupTaskStore(context.Background(), cfg, log)
		assert.Error(t, err)
	})
}

func TestSetupIconCatalog(t *testing.T) {
	t.Parallel()
	log, _ := logger.NewTestLogger(t)

	catalog, err := setupIconCatalog(testConfig(), nil, log)
	require.NoError(t, err)
	assert.False(t, catalog.CanStore())
	assert.False(t, catalog.Configured())

	cfg := testConfig()
	cfg.Supabase.URL = "https://project.supabase.co"
	cfg.Supabase.ServiceKey = "service-key"

	catalog, err = setupIconCatalog(cfg, nil, log)
	require.NoError(t, err)
	assert.True(t, catalog.CanStore())
	assert.False(t, catalog.Configured())
}

func TestSetupCollaborators(t *testing.T) {
	t.Parallel()

	t.Run("optional background removal left unset", func(t *testing.T) {
		t.Parallel()
		log, _ := logger.NewTestLogger(t)

		deps, err := setupCollaborators(context.Background(), testConfig(), log)
		require.NoError(t, err)
		assert.NotNil(t, deps.Transcripts)
		assert.NotNil(t, deps.Concepts)
		assert.NotNil(t, deps.Images)
		assert.Nil(t, deps.Backgrounds)
		assert.Nil(t, deps.Storage)
	})

	t.Run("openai provider with replicate", func(t *testing.T) {
		t.Parallel()
		log, _ := logger.NewTestLogger(t)

		cfg := testConfig()
		cfg.LLM.ConceptProvider = "openai"
		cfg.Replicate.APIToken = "r8_token"

		deps, err := setupCollaborators(context.Background(), cfg, log)
		require.NoError(t, err)
		assert.NotNil(t, deps.Concepts)
		assert.NotNil(t, deps.Backgrounds)
	})

	t.Run("missing prompt template", func(t *testing.T) {
		t.Parallel()
		log, _ := logger.NewTestLogger(t)

		cfg := testConfig()
		cfg.LLM.PromptTemplatePath = "/nonexistent/concepts.tmpl"

		_, err := setupCollaborators(context.Background(), cfg, log)
		assert.Error(t, err)
	})
}

func TestNewApplicationLifecycle(t *testing.T) {
	log, _ := logger.NewTestLogger(t)

	app, err := newApplication(context.Background(), testConfig(), log)
	require.NoError(t, err)
	require.NotNil(t, app.generation)
	assert.Nil(t, app.db)
	assert.Nil(t, app.redisClient)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	app.cleanupWithContext(ctx)

	assert.ErrorIs(t, app.taskRunner.Submit(&noopTask{}), task.ErrQueueClosed)
}

type noopTask struct{}

func (noopTask) ID() string                    { return "noop" }
func (noopTask) Type() string                  { return "noop" }
func (noopTask) Execute(context.Context) error { return nil }
