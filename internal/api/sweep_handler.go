package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/todo-api/internal/api/shared"
	"github.com/phrazzld/todo-api/internal/notify"
	"github.com/phrazzld/todo-api/internal/platform/logger"
)

// SweepResponse is the body returned by POST /api/sweeps.
type SweepResponse struct {
	RunID          string  `json:"run_id"`
	DurationMS     float64 `json:"duration_ms"`
	Selected       int     `json:"selected"`
	Pages          int     `json:"pages"`
	Processed      int     `json:"processed"`
	Succeeded      int     `json:"succeeded"`
	Failed         int     `json:"failed"`
	Skipped        int     `json:"skipped"`
	Deferred       int     `json:"deferred"`
	InFlight       int     `json:"in_flight"`
	LeaseContended bool    `json:"lease_contended"`
}

// SweepHandler lets operators trigger a sweep on demand.
type SweepHandler struct {
	runner notify.SweepRunner
	logger *slog.Logger
}

// NewSweepHandler creates a new SweepHandler.
func NewSweepHandler(runner notify.SweepRunner, logger *slog.Logger) *SweepHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SweepHandler{runner: runner, logger: logger}
}

// RunSweep handles POST /api/sweeps. The sweep runs on the request context;
// tasks already handed to workers finish even if the client disconnects.
func (h *SweepHandler) RunSweep(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	if subject, ok := shared.GetSubject(r.Context()); ok {
		log = log.With(slog.String("subject", subject))
	}
	log.Info("manual sweep requested")

	result, err := h.runner.RunOnce(logger.WithLogger(r.Context(), log))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Sweep failed", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SweepResponse{
		RunID:          result.RunID,
		DurationMS:     float64(result.Duration.Microseconds()) / 1000,
		Selected:       result.Selected,
		Pages:          result.Pages,
		Processed:      result.Processed,
		Succeeded:      result.Succeeded,
		Failed:         result.Failed,
		Skipped:        result.Skipped,
		Deferred:       result.Deferred,
		InFlight:       result.InFlight,
		LeaseContended: result.LeaseContended,
	})
}
