package service

import (
	"context"
	"log/slog"

	"github.com/mmynk/recitals/internal/apperr"
	"github.com/mmynk/recitals/internal/models"
	"github.com/mmynk/recitals/internal/storage"
)

// UserService exposes user administration.
type UserService struct {
	store storage.Store
}

// NewUserService creates a new UserService with the given storage backend.
func NewUserService(store storage.Store) *UserService {
	return &UserService{store: store}
}

// List returns a page of users.
func (s *UserService) List(ctx context.Context, page storage.Page) ([]*models.User, error) {
	users, err := s.store.ListUsers(ctx, page)
	if err != nil {
		return nil, classify(err)
	}
	return users, nil
}

// Get returns one user.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgUserNotFound)
	}
	return user, nil
}

// SetRole changes a user's role.
func (s *UserService) SetRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	slog.Info("SetRole request received", "target_user_id", id, "role", role)

	if !role.Valid() {
		return nil, apperr.InvalidRequest(msgInvalidRole)
	}

	user, err := s.store.UpdateUserRole(ctx, id, role)
	if err != nil {
		return nil, notFoundOr(err, msgUserNotFound)
	}

	slog.Info("User role updated", "target_user_id", id, "role", role)
	return user, nil
}

// Delete removes a user and their recitals.
func (s *UserService) Delete(ctx context.Context, id string) error {
	slog.Info("DeleteUser request received", "target_user_id", id)

	if err := s.store.DeleteUser(ctx, id); err != nil {
		return notFoundOr(err, msgUserNotFound)
	}

	slog.Info("User deleted", "target_user_id", id)
	return nil
}
