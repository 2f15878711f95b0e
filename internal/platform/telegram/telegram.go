// Package telegram is a minimal Telegram Bot API client.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/phrazzld/todo-api/internal/domain"
)

// DefaultAPIBaseURL is the public Bot API endpoint.
const DefaultAPIBaseURL = "https://api.telegram.org"

// ErrMissingToken is returned by NewClient without a bot token.
var ErrMissingToken = errors.New("telegram bot token is required")

// APIError is a rejection reported by the Bot API.
type APIError struct {
	StatusCode  int
	ErrorCode   int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram api error (status %d, code %d): %s", e.StatusCode, e.ErrorCode, e.Description)
}

type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}

// Client calls the Bot API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a Client. An empty baseURL means DefaultAPIBaseURL and
// a nil httpClient means http.DefaultClient.
func NewClient(baseURL, token string, httpClient *http.Client) (*Client, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
	}, nil
}

// SendMessage posts text to chatID.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return fmt.Errorf("failed to encode sendMessage request: %w", err)
	}

	endpoint := c.baseURL + "/bot" + c.token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// url.Error carries the request URL, which contains the bot token.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("telegram sendMessage request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var out apiResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !out.OK {
		if decodeErr != nil && out.Description == "" {
			out.Description = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, ErrorCode: out.ErrorCode, Description: out.Description}
	}
	return nil
}

// Send implements notify.Sender by messaging the identity's chat.
func (c *Client) Send(ctx context.Context, identity domain.MessagingIdentity, text string) error {
	if identity.TelegramID == 0 {
		return domain.ErrInvalidIdentity
	}
	if text == "" {
		return domain.ErrEmptyMessage
	}
	return c.SendMessage(ctx, identity.TelegramID, text)
}
