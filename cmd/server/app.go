package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/phrazzld/todo-api/internal/auth"
	"github.com/phrazzld/todo-api/internal/config"
	"github.com/phrazzld/todo-api/internal/notify"
	"github.com/phrazzld/todo-api/internal/platform/metrics"
	"github.com/phrazzld/todo-api/internal/platform/rediscache"
	"github.com/phrazzld/todo-api/internal/platform/telegram"
	"github.com/phrazzld/todo-api/internal/platform/webhook"
	"github.com/phrazzld/todo-api/internal/store"
)

// application holds the wired server components.
type application struct {
	config *config.Config
	logger *slog.Logger

	db    *database
	redis *redis.Client

	identities store.IdentityStore
	adminAuth  auth.TokenService
	registry   *prometheus.Registry

	queue     *notify.JobQueue
	pool      *notify.WorkerPool
	sweeper   *notify.Sweeper
	scheduler *notify.Scheduler
}

func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{config: cfg, logger: logger}

	db, err := openDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	app.db = db
	app.identities = db.identities

	var sweeperOpts []notify.SweeperOption

	if cfg.Redis.Addr != "" {
		client, err := rediscache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			app.cleanup()
			return nil, err
		}
		app.redis = client
		app.identities = rediscache.NewIdentityCache(client, db.identities, cfg.Redis.IdentityTTL, logger)
		sweeperOpts = append(sweeperOpts, notify.WithLocker(rediscache.NewLocker(client)))
		logger.Info("redis identity cache and sweep lease enabled", "addr", cfg.Redis.Addr)
	}

	sender, err := newSender(cfg, logger)
	if err != nil {
		app.cleanup()
		return nil, err
	}

	app.adminAuth, err = auth.NewTokenService(cfg.Auth.JWTSecret, 0)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create admin token service: %w", err)
	}

	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	sweeperOpts = append(sweeperOpts, notify.WithRecorder(metrics.NewRecorder(app.registry)))

	dispatcher := notify.NewDispatcher(db.tasks, app.identities, sender, notify.DispatcherConfig{
		SendTimeout: cfg.Notify.SendTimeout,
	}, logger)

	app.queue = notify.NewJobQueue(cfg.Notify.QueueSize, logger)
	app.pool = notify.NewWorkerPool(app.queue, dispatcher.Process, notify.WorkerPoolConfig{
		WorkerCount: cfg.Notify.WorkerCount,
	}, logger)
	app.sweeper = notify.NewSweeper(db.tasks, app.queue, notify.SweeperConfig{
		BatchSize: cfg.Notify.BatchSize,
		LockTTL:   cfg.Redis.LockTTL,
	}, logger, sweeperOpts...)
	app.scheduler = notify.NewScheduler(app.sweeper, notify.SchedulerConfig{
		Interval:   cfg.Notify.SweepInterval,
		RunOnStart: cfg.Notify.RunOnStart,
	}, logger)

	return app, nil
}

// newSender builds the configured notification transport.
func newSender(cfg *config.Config, logger *slog.Logger) (notify.Sender, error) {
	httpClient := &http.Client{Timeout: cfg.Notify.SendTimeout}

	switch cfg.Notify.Transport {
	case "telegram":
		client, err := telegram.NewClient(cfg.Telegram.APIBaseURL, cfg.Telegram.BotToken, httpClient)
		if err != nil {
			return nil, fmt.Errorf("failed to create telegram client: %w", err)
		}
		return client, nil

	case "webhook":
		var tokens auth.TokenService
		if cfg.Webhook.Secret != "" {
			t, err := auth.NewTokenService(cfg.Webhook.Secret, 0)
			if err != nil {
				return nil, fmt.Errorf("failed to create webhook token service: %w", err)
			}
			tokens = t
		} else {
			logger.Warn("webhook secret not set, notifications are sent unauthenticated")
		}
		return webhook.NewSender(cfg.Webhook.URL, tokens, httpClient, logger)

	default:
		return nil, fmt.Errorf("unsupported notification transport %q", cfg.Notify.Transport)
	}
}

// sweepOnce runs a single sweep and waits for its workers.
func (app *application) sweepOnce(ctx context.Context) error {
	app.pool.Start()
	defer app.pool.Stop()

	result, err := app.sweeper.RunOnce(ctx)
	if err != nil {
		return err
	}
	app.logger.Info("single sweep finished",
		"run_id", result.RunID,
		"selected", result.Selected,
		"succeeded", result.Succeeded,
		"failed", result.Failed)
	return nil
}

// cleanup releases resources in reverse order of creation.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}
	if app.pool != nil {
		app.pool.Stop()
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("failed to close redis client", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.close(); err != nil {
			app.logger.Error("failed to close database", "error", err)
		}
	}
}
