package middleware

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/todo-api/internal/api/shared"
	"github.com/phrazzld/todo-api/internal/auth"
	"github.com/phrazzld/todo-api/internal/platform/logger"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tokens := auth.NewTestTokenService(testSecret, time.Minute, func() time.Time { return now })
	valid, err := tokens.GenerateToken(context.Background(), "operator")
	require.NoError(t, err)

	expired, err := auth.NewTestTokenService(testSecret, time.Minute, func() time.Time { return now.Add(-time.Hour) }).
		GenerateToken(context.Background(), "operator")
	require.NoError(t, err)

	tests := []struct {
		name      string
		header    string
		wantCode  int
		wantError string
	}{
		{name: "valid token", header: "Bearer " + valid, wantCode: http.StatusOK},
		{name: "missing header", header: "", wantCode: http.StatusUnauthorized, wantError: "Authorization header required"},
		{name: "wrong scheme", header: "Basic abc", wantCode: http.StatusUnauthorized, wantError: "Invalid authorization format"},
		{name: "extra parts", header: "Bearer a b", wantCode: http.StatusUnauthorized, wantError: "Invalid authorization format"},
		{name: "expired token", header: "Bearer " + expired, wantCode: http.StatusUnauthorized, wantError: "Token expired"},
		{name: "garbage token", header: "Bearer not-a-token", wantCode: http.StatusUnauthorized, wantError: "Invalid token"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var subject string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				subject, _ = shared.GetSubject(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/api/sweeps", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			NewAuthMiddleware(tokens).Authenticate(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantError == "" {
				assert.Equal(t, "operator", subject)
				return
			}
			var body shared.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantError, body.Error)
		})
	}
}

func TestAuthenticateDeniedSubject(t *testing.T) {
	t.Parallel()

	tokens := auth.NewTestTokenService(testSecret, time.Minute, time.Now)
	serviceToken, err := tokens.GenerateToken(context.Background(), auth.ServiceSubject)
	require.NoError(t, err)
	operatorToken, err := tokens.GenerateToken(context.Background(), "operator")
	require.NoError(t, err)

	var called int
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called++
		w.WriteHeader(http.StatusOK)
	})
	handler := NewAuthMiddleware(tokens, WithDeniedSubjects(auth.ServiceSubject)).Authenticate(next)

	req := httptest.NewRequest(http.MethodPost, "/api/sweeps", nil)
	req.Header.Set("Authorization", "Bearer "+serviceToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	var body shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Insufficient permissions", body.Error)
	assert.Zero(t, called)

	req = httptest.NewRequest(http.MethodPost, "/api/sweeps", nil)
	req.Header.Set("Authorization", "Bearer "+operatorToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, called)
}

func TestTraceMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("generates trace id", func(t *testing.T) {
		t.Parallel()

		var traceID string
		var hasLogger bool
		fallback := slog.New(slog.NewTextHandler(io.Discard, nil))
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID = shared.GetTraceID(r.Context())
			hasLogger = logger.FromContextOrDefault(r.Context(), fallback) != fallback
		})

		rec := httptest.NewRecorder()
		NewTraceMiddleware(nil)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.NotEmpty(t, traceID)
		assert.True(t, hasLogger)
		assert.Equal(t, traceID, rec.Header().Get(shared.TraceIDHeader))
	})

	t.Run("reuses incoming trace id", func(t *testing.T) {
		t.Parallel()

		var traceID string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID = shared.GetTraceID(r.Context())
		})

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(shared.TraceIDHeader, "abc123")
		rec := httptest.NewRecorder()
		NewTraceMiddleware(nil)(next).ServeHTTP(rec, req)

		assert.Equal(t, "abc123", traceID)
		assert.Equal(t, "abc123", rec.Header().Get(shared.TraceIDHeader))
	})
}
