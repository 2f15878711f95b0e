// Package main runs the bot-side relay: it receives notification webhooks
// from the server and forwards them to Telegram.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phrazzld/todo-api/internal/auth"
	"github.com/phrazzld/todo-api/internal/config"
	"github.com/phrazzld/todo-api/internal/platform/logger"
	"github.com/phrazzld/todo-api/internal/platform/telegram"
	"github.com/phrazzld/todo-api/internal/redact"
)

func main() {
	if err := run(); err != nil {
		slog.Error("relay exited with error", "error", redact.Error(err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadRelay()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(logger.LoggerConfig{
		Level:      cfg.Relay.LogLevel,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	client, err := telegram.NewClient(cfg.Telegram.APIBaseURL, cfg.Telegram.BotToken, &http.Client{Timeout: 10 * time.Second})
	if err != nil {
		return err
	}

	var tokens auth.TokenService
	if cfg.Webhook.Secret != "" {
		tokens, err = auth.NewTokenService(cfg.Webhook.Secret, 0)
		if err != nil {
			return fmt.Errorf("failed to create webhook token service: %w", err)
		}
	} else {
		log.Warn("webhook secret not set, accepting unauthenticated notifications")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Relay.Port),
		Handler:           newRouter(client, tokens, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting relay", "port", cfg.Relay.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down relay")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("relay server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("relay shutdown failed: %w", err)
	}
	log.Info("relay shutdown completed")
	return nil
}
