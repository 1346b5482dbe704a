// Package main implements the entry point for the icon generation server,
// which turns YouTube videos into icon sets through a background pipeline
// and serves task status and the icon catalog over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tahina-randria/finary-icons-platform/internal/config"
	"github.com/tahina-randria/finary-icons-platform/internal/platform/logger"
	"github.com/tahina-randria/finary-icons-platform/internal/platform/postgres"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a catalog migration command (up, down, reset, status, version) and exit")
	flag.Parse()

	cfg, appLogger, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *migrateCmd != "" {
		if err := runMigrations(ctx, cfg, *migrateCmd, appLogger); err != nil {
			appLogger.Error("migration failed", "command", *migrateCmd, "error", err)
			os.Exit(1)
		}
		return
	}

	app, err := newApplication(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("failed to build application", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		appLogger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

// initializeApp loads configuration and sets up structured logging.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"concept_provider", cfg.LLM.ConceptProvider)

	if cfg.Redis.URL != "" {
		appLogger.Debug("Redis configuration", "url_present", true, "key_prefix", cfg.Redis.KeyPrefix)
	}
	if cfg.Database.URL != "" {
		appLogger.Debug("Database configuration", "url_present", true)
	}

	return cfg, appLogger, nil
}

// runMigrations applies a goose command to the catalog database.
func runMigrations(ctx context.Context, cfg *config.Config, command string, logger *slog.Logger) error {
	if cfg.Database.URL == "" {
		return fmt.Errorf("database.url must be set to run migrations")
	}

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("Error closing database connection", "error", closeErr)
		}
	}()

	return postgres.Migrate(ctx, db, command, logger)
}
