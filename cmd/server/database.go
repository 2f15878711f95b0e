package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/phrazzld/todo-api/internal/config"
	"github.com/phrazzld/todo-api/internal/platform/postgres"
	"github.com/phrazzld/todo-api/internal/platform/sqlite"
	"github.com/phrazzld/todo-api/internal/store"
)

// database bundles the stores of the configured backend.
type database struct {
	conn       *sql.DB
	tasks      store.TaskStore
	identities store.IdentityStore
}

func (d *database) ping(ctx context.Context) error {
	return d.conn.PingContext(ctx)
}

func (d *database) close() error {
	return d.conn.Close()
}

// openDatabase connects to the configured backend. SQLite databases are
// migrated on open; postgres only reports pending migrations.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*database, error) {
	switch cfg.Driver {
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.URL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		logger.Info("database connection established", "driver", cfg.Driver)
		return &database{
			conn:       db.DB.DB,
			tasks:      sqlite.NewTaskStore(db),
			identities: sqlite.NewIdentityStore(db),
		}, nil

	case "postgres":
		db, err := openPostgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		warnPendingMigrations(ctx, db, logger)
		logger.Info("database connection established", "driver", cfg.Driver)
		return &database{
			conn:       db,
			tasks:      postgres.NewPostgresTaskStore(db, logger),
			identities: postgres.NewPostgresIdentityStore(db, logger),
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func warnPendingMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) {
	provider, err := postgres.NewMigrationProvider(db)
	if err != nil {
		logger.Warn("could not inspect migrations", "error", err)
		return
	}
	pending, err := provider.HasPending(ctx)
	if err != nil {
		logger.Warn("could not inspect migrations", "error", err)
		return
	}
	if pending {
		logger.Warn("database has pending migrations, run with -migrate up")
	}
}
