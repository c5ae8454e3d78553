package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mmynk/recitals/internal/apperr"
	"github.com/mmynk/recitals/internal/auth"
	"github.com/mmynk/recitals/internal/models"
)

// TokenIssuer signs session tokens for users.
type TokenIssuer interface {
	Generate(user *models.User) (string, error)
}

// AuthService handles registration and login.
type AuthService struct {
	authenticator auth.Authenticator
	tokens        TokenIssuer
	logger        *slog.Logger
}

// Session is the result of a successful registration or login.
type Session struct {
	Token string
	User  *models.User
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, tokens TokenIssuer, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		tokens:        tokens,
		logger:        logger,
	}
}

// Register creates a new user account and returns a session for it.
func (s *AuthService) Register(ctx context.Context, email, password string) (*Session, error) {
	s.logger.Info("Register request", "email", email)

	if email == "" || password == "" {
		return nil, apperr.InvalidRequest(msgMissingRegistration)
	}

	user, err := s.authenticator.Register(ctx, email, password)
	if err != nil {
		s.logger.Warn("Registration failed", "email", email, "error", err)
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			return nil, apperr.InvalidRequest(msgEmailRegistered)
		case errors.Is(err, auth.ErrInvalidEmail):
			return nil, apperr.InvalidRequest(msgInvalidEmail)
		case errors.Is(err, auth.ErrWeakPassword):
			return nil, apperr.InvalidRequest(msgInvalidPassword)
		}
		return nil, apperr.Internal("registration failed", err)
	}

	session, err := s.session(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
	return session, nil
}

// Login authenticates a user and returns a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	s.logger.Info("Login request", "email", email)

	if email == "" || password == "" {
		return nil, apperr.InvalidRequest(msgMissingLogin)
	}

	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.Warn("Login failed", "email", email)
			return nil, apperr.Authorization(msgIncorrectLogin)
		}
		return nil, apperr.Internal("login failed", err)
	}

	session, err := s.session(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID, "email", user.Email)
	return session, nil
}

func (s *AuthService) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, apperr.Internal("token generation failed", err)
	}
	return &Session{Token: token, User: user}, nil
}
