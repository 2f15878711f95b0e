package api

import (
	"context"
	"net/http"
	"time"

	"github.com/phrazzld/todo-api/internal/api/shared"
	"github.com/phrazzld/todo-api/internal/platform/logger"
	"github.com/phrazzld/todo-api/internal/redact"
)

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// HealthHandler serves GET /health.
type HealthHandler struct {
	checks  map[string]HealthCheck
	timeout time.Duration
}

// NewHealthHandler creates a HealthHandler running checks on every request.
func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

// ServeHTTP answers 200 {"status":"ok"} or 503 {"status":"degraded"}.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			logger.FromContext(r.Context()).Warn("health check failed",
				"check", name,
				"error", redact.Error(err))
			shared.RespondWithStatus(w, r, http.StatusServiceUnavailable, shared.StatusDegraded)
			return
		}
	}
	shared.RespondWithStatus(w, r, http.StatusOK, shared.StatusOK)
}
