package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/todo-api/internal/auth"
	"github.com/phrazzld/todo-api/internal/domain"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func TestSenderSend(t *testing.T) {
	t.Parallel()

	tokens := auth.NewTestTokenService(testSecret, time.Minute, time.Now)

	var got Payload
	var authHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		authHeader = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	sender, err := NewSender(srv.URL+"/notify", tokens, srv.Client(), nil)
	require.NoError(t, err)

	err = sender.Send(context.Background(), domain.MessagingIdentity{UserID: 1, TelegramID: 777}, "hello")
	require.NoError(t, err)

	assert.Equal(t, Payload{TelegramID: 777, Message: "hello"}, got)
	require.True(t, strings.HasPrefix(authHeader, "Bearer "))

	claims, err := tokens.ValidateToken(context.Background(), strings.TrimPrefix(authHeader, "Bearer "))
	require.NoError(t, err)
	assert.Equal(t, auth.ServiceSubject, claims.Subject)
}

func TestSenderWithoutTokens(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sender, err := NewSender(srv.URL, nil, nil, nil)
	require.NoError(t, err)
	assert.NoError(t, sender.Send(context.Background(), domain.MessagingIdentity{UserID: 1, TelegramID: 1}, "hi"))
}

func TestSenderErrors(t *testing.T) {
	t.Parallel()

	t.Run("non-2xx status", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"status":"error"}`))
		}))
		defer srv.Close()

		sender, err := NewSender(srv.URL, nil, srv.Client(), nil)
		require.NoError(t, err)

		err = sender.Send(context.Background(), domain.MessagingIdentity{UserID: 1, TelegramID: 1}, "hi")
		assert.ErrorIs(t, err, ErrUnexpectedStatus)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("context deadline", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		sender, err := NewSender(srv.URL, nil, srv.Client(), nil)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		err = sender.Send(ctx, domain.MessagingIdentity{UserID: 1, TelegramID: 1}, "hi")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("empty message", func(t *testing.T) {
		t.Parallel()

		sender, err := NewSender("http://localhost:1/notify", nil, nil, nil)
		require.NoError(t, err)
		assert.ErrorIs(t, sender.Send(context.Background(), domain.MessagingIdentity{}, ""), domain.ErrEmptyMessage)
	})

	t.Run("invalid url", func(t *testing.T) {
		t.Parallel()

		_, err := NewSender("not a url", nil, nil, nil)
		assert.Error(t, err)
	})
}
