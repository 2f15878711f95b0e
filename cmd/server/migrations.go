package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"github.com/phrazzld/todo-api/internal/config"
	"github.com/phrazzld/todo-api/internal/platform/postgres"
	"github.com/phrazzld/todo-api/internal/platform/sqlite"
)

// runMigrations executes one goose command against the configured database.
func runMigrations(ctx context.Context, cfg config.DatabaseConfig, command string, logger *slog.Logger) error {
	log := logger.With(
		"correlation_id", uuid.NewString(),
		"component", "migrations",
		"command", command,
	)
	start := time.Now()

	db, provider, err := openMigrationProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database connection", "error", err)
		}
	}()

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		for _, r := range results {
			log.Info("applied migration",
				"version", r.Source.Version,
				"path", r.Source.Path,
				"duration_ms", r.Duration.Milliseconds())
		}
		if err != nil {
			return fmt.Errorf("migration up failed: %w", err)
		}
		if len(results) == 0 {
			log.Info("no pending migrations")
		}

	case "down":
		r, err := provider.Down(ctx)
		if err != nil {
			return fmt.Errorf("migration down failed: %w", err)
		}
		log.Info("rolled back migration",
			"version", r.Source.Version,
			"path", r.Source.Path,
			"duration_ms", r.Duration.Milliseconds())

	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("migration status failed: %w", err)
		}
		for _, s := range statuses {
			attrs := []any{"version", s.Source.Version, "path", s.Source.Path, "state", string(s.State)}
			if !s.AppliedAt.IsZero() {
				attrs = append(attrs, "applied_at", s.AppliedAt)
			}
			log.Info("migration status", attrs...)
		}

	case "version":
		version, err := provider.GetDBVersion(ctx)
		if err != nil {
			return fmt.Errorf("migration version failed: %w", err)
		}
		log.Info("database version", "version", version)

	default:
		return fmt.Errorf("unknown migration command %q (want up, down, status or version)", command)
	}

	log.Info("migration operation completed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func openMigrationProvider(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, *goose.Provider, error) {
	var (
		db       *sql.DB
		provider *goose.Provider
		err      error
	)

	switch cfg.Driver {
	case "sqlite":
		conn, cerr := sqlite.Connect(ctx, cfg.URL)
		if cerr != nil {
			return nil, nil, cerr
		}
		db = conn.DB
		provider, err = sqlite.NewMigrationProvider(db)
	case "postgres":
		db, err = openPostgres(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		provider, err = postgres.NewMigrationProvider(db)
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return db, provider, nil
}
