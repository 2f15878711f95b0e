package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/todo-api/internal/api"
	apiMiddleware "github.com/phrazzld/todo-api/internal/api/middleware"
	"github.com/phrazzld/todo-api/internal/auth"
)

// newRouter serves POST /notify and GET /health. A nil tokens leaves /notify
// unauthenticated.
func newRouter(sender api.MessageSender, tokens auth.TokenService, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(logger))

	r.Method(http.MethodGet, "/health", api.NewHealthHandler(nil))

	notifyHandler := api.NewNotifyHandler(sender, logger)
	r.Group(func(r chi.Router) {
		if tokens != nil {
			r.Use(apiMiddleware.NewAuthMiddleware(tokens).Authenticate)
		}
		r.Post("/notify", notifyHandler.Notify)
	})

	return r
}
