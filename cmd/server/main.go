// Package main implements the entry point for the OBE curriculum API server,
// which manages study programs, versioned curricula, learning outcomes,
// courses, students, and enrollments.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/akademika/obe-api/internal/config"
	"github.com/akademika/obe-api/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

// run loads configuration, wires the application, and serves until shutdown.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := runMigrations(db, cfg.Database.MigrationsDir, appLogger); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	ctx := context.Background()
	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
