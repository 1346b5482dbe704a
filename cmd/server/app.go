package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tahina-randria/finary-icons-platform/internal/config"
	"github.com/tahina-randria/finary-icons-platform/internal/generation"
	"github.com/tahina-randria/finary-icons-platform/internal/platform/gemini"
	"github.com/tahina-randria/finary-icons-platform/internal/platform/memstore"
	"github.com/tahina-randria/finary-icons-platform/internal/platform/openai"
	"github.com/tahina-randria/finary-icons-platform/internal/platform/postgres"
	"github.com/tahina-randria/finary-icons-platform/internal/platform/redisstore"
	"github.com/tahina-randria/finary-icons-platform/internal/platform/replicate"
	"github.com/tahina-randria/finary-icons-platform/internal/platform/supabase"
	"github.com/tahina-randria/finary-icons-platform/internal/platform/youtube"
	"github.com/tahina-randria/finary-icons-platform/internal/service"
	"github.com/tahina-randria/finary-icons-platform/internal/store"
	"github.com/tahina-randria/finary-icons-platform/internal/task"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// Optional infrastructure; nil when not configured
	db          *sql.DB
	redisClient *redis.Client

	taskStore  *task.TaskStore
	taskRunner *task.TaskRunner
	catalog    *service.IconCatalog
	generation *service.GenerationService
}

// newApplication creates a new application instance with all dependencies initialized.
// The task runner is started; cleanup stops it.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	app.taskStore, app.redisClient, err = setupTaskStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up task store: %w", err)
	}

	if cfg.Database.URL != "" {
		app.db, err = setupAppDatabase(ctx, cfg, logger)
		if err != nil {
			app.cleanup()
			return nil, err
		}
	}

	app.catalog, err = setupIconCatalog(cfg, app.db, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to set up icon catalog: %w", err)
	}

	deps, err := setupCollaborators(ctx, cfg, logger)
	if err != nil {
		app.cleanup()
		return nil, err
	}
	deps.Updater = app.taskStore
	deps.Concurrency = cfg.Task.ConceptConcurrency
	if app.catalog.CanStore() {
		deps.Storage = app.catalog
	}

	factory, err := task.NewYouTubeTaskFactory(deps, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create task factory: %w", err)
	}

	app.taskRunner = setupTaskRunner(cfg, logger)

	app.generation, err = service.NewGenerationService(
		app.taskStore,
		app.taskRunner,
		factory,
		service.GenerationConfig{
			DefaultMaxConcepts: cfg.Task.DefaultMaxConcepts,
			MaxConceptsLimit:   cfg.Task.MaxConceptsLimit,
		},
		logger,
	)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create generation service: %w", err)
	}

	logger.Info("Application initialized successfully",
		"task_store", app.taskStore.BackendName(),
		"background_removal", deps.Backgrounds != nil,
		"icon_storage", factory.StorageConfigured(),
		"icon_catalog", app.catalog.Configured())
	return app, nil
}

// setupTaskStore builds the task store. Redis is the primary backend when
// configured; the in-process backend is always the secondary.
func setupTaskStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*task.TaskStore, *redis.Client, error) {
	var (
		primary store.TaskBackend
		client  *redis.Client
	)
	if cfg.Redis.URL != "" {
		var err error
		client, err = redisstore.NewClient(cfg.Redis.URL, cfg.Redis.DialTimeout)
		if err != nil {
			return nil, nil, err
		}
		primary = redisstore.NewTaskBackend(client, redisstore.Options{
			KeyPrefix: cfg.Redis.KeyPrefix,
			TTL:       cfg.Redis.TaskTTL,
		})
	}

	taskStore, err := task.NewTaskStore(ctx, primary, memstore.NewTaskBackend(), logger)
	if err != nil {
		if client != nil {
			_ = client.Close()
		}
		return nil, nil, err
	}
	return taskStore, client, nil
}

// setupIconCatalog composes object storage and the Postgres catalog. Either
// may be absent; the returned catalog reports what it can do.
func setupIconCatalog(cfg *config.Config, db *sql.DB, logger *slog.Logger) (*service.IconCatalog, error) {
	var objects service.ObjectStorage
	if cfg.Supabase.Enabled() {
		storage, err := supabase.NewStorage(supabase.Config{
			URL:        cfg.Supabase.URL,
			ServiceKey: cfg.Supabase.ServiceKey,
			Bucket:     cfg.Supabase.Bucket,
		}, logger)
		if err != nil {
			return nil, err
		}
		objects = storage
	}

	var icons store.IconStore
	if db != nil {
		icons = postgres.NewPostgresIconStore(db, logger)
	}

	return service.NewIconCatalog(objects, icons, logger), nil
}

// setupCollaborators creates the pipeline's external collaborators. Updater,
// Storage and Concurrency are left for the caller.
func setupCollaborators(ctx context.Context, cfg *config.Config, logger *slog.Logger) (task.YouTubeTaskDeps, error) {
	var deps task.YouTubeTaskDeps

	prompts, err := generation.NewPrompts(cfg.LLM.PromptTemplatePath)
	if err != nil {
		return deps, err
	}
	retry := generation.RetryPolicy{
		MaxRetries: cfg.LLM.MaxRetries,
		BaseDelay:  time.Duration(cfg.LLM.RetryDelaySeconds) * time.Second,
	}

	deps.Transcripts, err = youtube.NewTranscriptFetcher(youtube.Config{
		Languages: cfg.YouTube.Languages,
		Timeout:   cfg.YouTube.Timeout,
	}, logger)
	if err != nil {
		return deps, fmt.Errorf("failed to create transcript fetcher: %w", err)
	}

	geminiClient, err := gemini.NewClient(ctx, cfg.LLM.GeminiAPIKey)
	if err != nil {
		return deps, err
	}

	deps.Images, err = gemini.NewImageGenerator(geminiClient, cfg.LLM.ImageModel, prompts, logger)
	if err != nil {
		return deps, fmt.Errorf("failed to create image generator: %w", err)
	}

	switch cfg.LLM.ConceptProvider {
	case "openai":
		chat, err := openai.NewChatModel(ctx, openai.Config{
			APIKey: cfg.LLM.OpenAIAPIKey,
			Model:  cfg.LLM.OpenAIModel,
		})
		if err != nil {
			return deps, err
		}
		deps.Concepts, err = openai.NewConceptExtractor(chat, prompts, retry, logger)
		if err != nil {
			return deps, fmt.Errorf("failed to create concept extractor: %w", err)
		}
	default:
		deps.Concepts, err = gemini.NewConceptExtractor(geminiClient, cfg.LLM.ConceptModel, prompts, retry, logger)
		if err != nil {
			return deps, fmt.Errorf("failed to create concept extractor: %w", err)
		}
	}
	logger.Info("Concept extractor initialized", "provider", cfg.LLM.ConceptProvider)

	if cfg.Replicate.Enabled() {
		deps.Backgrounds, err = replicate.NewBackgroundRemover(replicate.Config{
			APIToken:     cfg.Replicate.APIToken,
			ModelVersion: cfg.Replicate.ModelVersion,
			BaseURL:      cfg.Replicate.BaseURL,
			PollInterval: cfg.Replicate.PollInterval,
		}, logger)
		if err != nil {
			return deps, fmt.Errorf("failed to create background remover: %w", err)
		}
	}

	return deps, nil
}

// setupTaskRunner creates and starts the background task processor.
func setupTaskRunner(cfg *config.Config, logger *slog.Logger) *task.TaskRunner {
	runner := task.NewTaskRunner(task.TaskRunnerConfig{
		WorkerCount: cfg.Task.WorkerCount,
		QueueSize:   cfg.Task.QueueSize,
		TaskTimeout: cfg.Task.Timeout,
	}, logger)

	runner.SetErrorHandler(func(t task.Task, err error) {
		logger.Warn("task finished with error",
			"task_id", t.ID(),
			"task_type", t.Type(),
			"error", err)
	})

	runner.Start()
	return runner
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanupWithContext stops the runner and releases connections. Queued and
// running tasks get until ctx is done to finish.
func (app *application) cleanupWithContext(ctx context.Context) {
	if app.taskRunner != nil {
		if err := app.taskRunner.Stop(ctx); err != nil {
			app.logger.Error("Task runner did not drain before shutdown deadline", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			app.logger.Error("Error closing redis connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}

// cleanup is cleanupWithContext with the default shutdown deadline.
func (app *application) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	app.cleanupWithContext(ctx)
}
