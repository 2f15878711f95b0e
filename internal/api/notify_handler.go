package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/todo-api/internal/api/shared"
	"github.com/phrazzld/todo-api/internal/platform/logger"
	"github.com/phrazzld/todo-api/internal/platform/webhook"
	"github.com/phrazzld/todo-api/internal/redact"
)

// MessageSender delivers text to a chat.
type MessageSender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// NotifyHandler receives webhook notifications and relays them to the chat.
type NotifyHandler struct {
	sender MessageSender
	logger *slog.Logger
}

// NewNotifyHandler creates a new NotifyHandler.
func NewNotifyHandler(sender MessageSender, logger *slog.Logger) *NotifyHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotifyHandler{sender: sender, logger: logger}
}

// Notify handles POST /notify.
func (h *NotifyHandler) Notify(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var payload webhook.Payload
	if err := shared.DecodeJSON(w, r, &payload); err != nil {
		log.Debug("rejecting notification with undecodable body", "error", err)
		shared.RespondWithStatus(w, r, http.StatusBadRequest, shared.StatusBadRequest)
		return
	}
	if err := shared.ValidateRequest(&payload); err != nil {
		log.Debug("rejecting invalid notification", "reason", SanitizeValidationError(err))
		shared.RespondWithStatus(w, r, http.StatusBadRequest, shared.StatusBadRequest)
		return
	}

	if err := h.sender.SendMessage(r.Context(), payload.TelegramID, payload.Message); err != nil {
		log.Error("failed to relay notification",
			"telegram_id", payload.TelegramID,
			"error", redact.Error(err))
		shared.RespondWithStatus(w, r, http.StatusBadGateway, shared.StatusError)
		return
	}

	log.Info("notification relayed", "telegram_id", payload.TelegramID)
	shared.RespondWithStatus(w, r, http.StatusOK, shared.StatusOK)
}
