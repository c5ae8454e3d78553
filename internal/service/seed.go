package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mmynk/recitals/internal/auth"
	"github.com/mmynk/recitals/internal/models"
	"github.com/mmynk/recitals/internal/storage"
)

// EnsureAdmin makes sure an admin account exists for email. An existing
// account is promoted; its password is left alone.
func EnsureAdmin(ctx context.Context, store storage.UserStore, email, password string, cost int) (*models.User, error) {
	email = auth.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, errors.New("admin email and password are required")
	}

	existing, err := store.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsAdmin() {
			return existing, nil
		}
		slog.Info("Promoting existing user to admin", "user_id", existing.ID)
		return store.UpdateUserRole(ctx, existing.ID, models.RoleAdmin)
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}

	hash, err := auth.HashPassword(password, cost)
	if err != nil {
		return nil, err
	}

	admin := models.NewUser(email, hash)
	admin.Role = models.RoleAdmin
	if err := store.CreateUser(ctx, admin); err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	slog.Info("Admin created", "user_id", admin.ID, "email", admin.Email)
	return admin, nil
}

// ImportSongs reads a JSON array of songs and adds the valid ones to the
// catalog. Songs missing a required field are skipped. Returns the number
// imported and skipped.
func ImportSongs(ctx context.Context, store storage.SongStore, r io.Reader) (imported, skipped int, err error) {
	var songs []models.Song
	if err := json.NewDecoder(r).Decode(&songs); err != nil {
		return 0, 0, fmt.Errorf("failed to decode songs: %w", err)
	}

	for i := range songs {
		song := songs[i]
		song.ID = ""
		song.CreatedBy = ""
		if !song.HasRequiredFields() {
			slog.Warn("Skipping song without required fields", "index", i, "title", song.Title)
			skipped++
			continue
		}
		if err := store.CreateSong(ctx, &song); err != nil {
			return imported, skipped, fmt.Errorf("failed to import song %d: %w", i, err)
		}
		imported++
	}

	return imported, skipped, nil
}
