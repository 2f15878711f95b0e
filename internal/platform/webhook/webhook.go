// Package webhook delivers notifications to the bot's HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/phrazzld/todo-api/internal/auth"
	"github.com/phrazzld/todo-api/internal/domain"
)

// ErrUnexpectedStatus is returned when the endpoint answers with a non-2xx status.
var ErrUnexpectedStatus = errors.New("unexpected webhook response status")

// Payload is the JSON body posted to the webhook endpoint.
type Payload struct {
	TelegramID int64  `json:"telegram_id" validate:"required,ne=0"`
	Message    string `json:"message"     validate:"required"`
}

// Sender posts notifications to a webhook URL.
type Sender struct {
	url    string
	tokens auth.TokenService
	client *http.Client
	logger *slog.Logger
}

// NewSender creates a Sender. A nil tokens disables the Authorization header.
// A nil client means http.DefaultClient.
func NewSender(endpoint string, tokens auth.TokenService, client *http.Client, logger *slog.Logger) (*Sender, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid webhook url %q", endpoint)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{
		url:    endpoint,
		tokens: tokens,
		client: client,
		logger: logger.With(slog.String("component", "webhook_sender")),
	}, nil
}

// Send implements notify.Sender.
func (s *Sender) Send(ctx context.Context, identity domain.MessagingIdentity, text string) error {
	if text == "" {
		return domain.ErrEmptyMessage
	}

	body, err := json.Marshal(Payload{TelegramID: identity.TelegramID, Message: text})
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if s.tokens != nil {
		token, err := s.tokens.GenerateToken(ctx, auth.ServiceSubject)
		if err != nil {
			return fmt.Errorf("failed to sign webhook token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		s.logger.Debug("webhook rejected notification",
			"status", resp.StatusCode,
			"body", string(snippet))
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
