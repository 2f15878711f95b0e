package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phrazzld/todo-api/internal/api"
	apiMiddleware "github.com/phrazzld/todo-api/internal/api/middleware"
	"github.com/phrazzld/todo-api/internal/auth"
)

// setupRouter creates the server's router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	checks := map[string]api.HealthCheck{"database": app.db.ping}
	if app.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return app.redis.Ping(ctx).Err() }
	}

	r.Method(http.MethodGet, "/health", api.NewHealthHandler(checks))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	sweepHandler := api.NewSweepHandler(app.sweeper, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.adminAuth,
		apiMiddleware.WithDeniedSubjects(auth.ServiceSubject))

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Post("/sweeps", sweepHandler.RunSweep)
	})

	return r
}
