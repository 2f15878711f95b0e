package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "test-secret-that-is-long-enough-for-testing"
	wrongSecret = "wrong-secret-that-is-long-enough-for-testing"
)

func TestNewTokenService(t *testing.T) {
	t.Parallel()

	_, err := NewTokenService("short", time.Minute)
	assert.ErrorIs(t, err, ErrWeakSecret)

	svc, err := NewTokenService(testSecret, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, svc.(*hmacTokenService).tokenLifetime)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := NewTestTokenService(testSecret, time.Minute, func() time.Time { return fixedTime })

	token, err := svc.GenerateToken(context.Background(), ServiceSubject)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, ServiceSubject, claims.Subject)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(time.Minute).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	lifetime := time.Minute
	at := func(d time.Duration) func() time.Time {
		return func() time.Time { return fixedTime.Add(d) }
	}
	issue := func(secret string) string {
		token, err := NewTestTokenService(secret, lifetime, at(0)).GenerateToken(context.Background(), ServiceSubject)
		require.NoError(t, err)
		return token
	}

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   ServiceSubject,
		ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		now     func() time.Time
		secret  string
		wantErr error
	}{
		{name: "valid token", token: issue(testSecret), now: at(30 * time.Second), secret: testSecret},
		{name: "within clock skew", token: issue(testSecret), now: at(lifetime + time.Minute), secret: testSecret},
		{name: "expired token", token: issue(testSecret), now: at(lifetime + time.Hour), secret: testSecret, wantErr: ErrExpiredToken},
		{name: "issued in the future", token: issue(testSecret), now: at(-time.Hour), secret: testSecret, wantErr: ErrTokenNotYetValid},
		{name: "invalid signature", token: issue(wrongSecret), now: at(0), secret: testSecret, wantErr: ErrInvalidToken},
		{name: "malformed token", token: "this.is.not.a.valid.jwt.token", now: at(0), secret: testSecret, wantErr: ErrInvalidToken},
		{name: "unsigned token", token: noneToken, now: at(0), secret: testSecret, wantErr: ErrInvalidToken},
		{name: "missing token", token: "", now: at(0), secret: testSecret, wantErr: ErrMissingToken},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := NewTestTokenService(tt.secret, lifetime, tt.now)
			claims, err := svc.ValidateToken(context.Background(), tt.token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ServiceSubject, claims.Subject)
		})
	}
}
