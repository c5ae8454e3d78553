package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/recitals/internal/apperr"
	"github.com/mmynk/recitals/internal/auth"
)

func newTestAuthService(t *testing.T) (*AuthService, *auth.JWTManager) {
	t.Helper()
	store := newTestStore(t)
	tokens := auth.NewJWTManager("test-secret", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuthService(auth.NewPasswordAuthenticator(store, bcrypt.MinCost), tokens, logger), tokens
}

func TestAuthServiceRegister(t *testing.T) {
	svc, tokens := newTestAuthService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, "singer@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "singer@example.com", session.User.Email)

	subject, err := tokens.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, subject)

	tests := []struct {
		name     string
		email    string
		password string
		message  string
	}{
		{"missing email", "", "password123", "Missing email or password"},
		{"missing password", "new@example.com", "", "Missing email or password"},
		{"invalid email", "nope", "password123", "Invalid email address"},
		{"short password", "new@example.com", "short", "Invalid password"},
		{"duplicate", "Singer@example.com", "password123", "Email is already registered"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.email, tt.password)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindInvalidRequest))
			assert.EqualError(t, err, tt.message)
		})
	}
}

func TestAuthServiceLogin(t *testing.T) {
	svc, tokens := newTestAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "singer@example.com", "password123")
	require.NoError(t, err)

	session, err := svc.Login(ctx, "singer@example.com", "password123")
	require.NoError(t, err)
	subject, err := tokens.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, subject)

	_, err = svc.Login(ctx, "", "")
	assert.True(t, apperr.Is(err, apperr.KindInvalidRequest))
	assert.EqualError(t, err, "Please provide email and password")

	_, err = svc.Login(ctx, "singer@example.com", "wrong-password")
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))
	assert.EqualError(t, err, "Incorrect email or password")

	_, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))
}
