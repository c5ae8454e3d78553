// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/recitals/internal/models"
)

var (
	// ErrNotFound is returned when the requested row does not exist, or is
	// not owned by the requesting user.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("unique constraint violation")
)

// Page bounds a listing query.
type Page struct {
	Offset int
	Limit  int
}

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser inserts a user. Returns ErrDuplicate if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, page Page) ([]*models.User, error)
	UpdateUserRole(ctx context.Context, id string, role models.Role) (*models.User, error)
	// DeleteUser removes a user and, through the schema, their recitals.
	DeleteUser(ctx context.Context, id string) error
}

// SongStore persists the song catalog.
type SongStore interface {
	CreateSong(ctx context.Context, song *models.Song) error
	GetSong(ctx context.Context, id string) (*models.Song, error)
	ListSongs(ctx context.Context, page Page) ([]*models.Song, error)
	// UpdateSong applies only the non-nil fields of patch.
	UpdateSong(ctx context.Context, id string, patch models.SongPatch) (*models.Song, error)
	// DeleteSong removes a song from the catalog and from every recital
	// program it appears on, keeping those programs densely ordered.
	DeleteSong(ctx context.Context, id string) error
}

// RecitalStore persists recitals. Every owner-scoped method returns
// ErrNotFound when the recital belongs to someone else.
type RecitalStore interface {
	CreateRecital(ctx context.Context, recital *models.Recital) error
	GetRecital(ctx context.Context, ownerID, id string) (*models.Recital, error)
	ListRecitalsByOwner(ctx context.Context, ownerID string) ([]*models.Recital, error)
	ListRecitals(ctx context.Context, page Page) ([]*models.Recital, error)
	UpdateRecital(ctx context.Context, ownerID, id string, patch models.RecitalPatch) (*models.Recital, error)
	// ReplaceRecital overwrites every editable column of an owned recital.
	ReplaceRecital(ctx context.Context, recital *models.Recital) error
	DeleteRecital(ctx context.Context, ownerID, id string) error
}

// ProgramTx is the view of the store available inside a program transaction.
// Every call made through it commits or rolls back together.
type ProgramTx interface {
	// LockRecital loads an owned recital and holds it for the rest of the
	// transaction.
	LockRecital(ctx context.Context, ownerID, recitalID string) (*models.Recital, error)
	GetSong(ctx context.Context, songID string) (*models.Song, error)
	// Entries returns the recital's join rows in ascending order.
	Entries(ctx context.Context, recitalID string) ([]models.RecitalSong, error)
	InsertEntry(ctx context.Context, entry models.RecitalSong) error
	DeleteEntry(ctx context.Context, recitalID, songID string) error
	// SetOrders rewrites the order of the listed songs. The resulting
	// orders must be unique; intermediate states never are checked.
	SetOrders(ctx context.Context, recitalID string, orders map[string]int) error
	// Program returns the recital's songs, ordered.
	Program(ctx context.Context, recitalID string) ([]models.ProgramSong, error)
}

// ProgramStore persists the ordered recital/song association.
type ProgramStore interface {
	// WithProgram runs fn in a single transaction. The transaction commits
	// if fn returns nil and rolls back otherwise.
	WithProgram(ctx context.Context, fn func(tx ProgramTx) error) error
	ListProgram(ctx context.Context, recitalID string) ([]models.ProgramSong, error)
}

// Store defines the full storage surface used by the services.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	UserStore
	SongStore
	RecitalStore
	ProgramStore

	// Ping checks that the database is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
