package sqlstore

import (
	"context"
	"fmt"
)

// schema contains the statements that set up the database schema. They run
// on startup and are written in the subset of SQL shared by SQLite and
// PostgreSQL. Parent tables come first because of the foreign keys.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'user',
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS songs (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    composer TEXT NOT NULL,
    author TEXT,
    language TEXT NOT NULL,
    composition_year INTEGER,
    original_key TEXT,
    catalogue_number TEXT,
    period TEXT,
    source_set TEXT,
    created_by TEXT REFERENCES users(id) ON DELETE SET NULL,
    created_at BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS recitals (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    recital_date TEXT,
    location TEXT,
    description TEXT,
    program_notes TEXT,
    owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
)`,
	// sort_order is unique per recital; the primary key keeps a song from
	// appearing twice on the same program.
	`CREATE TABLE IF NOT EXISTS recital_songs (
    recital_id TEXT NOT NULL REFERENCES recitals(id) ON DELETE CASCADE,
    song_id TEXT NOT NULL REFERENCES songs(id) ON DELETE CASCADE,
    sort_order INTEGER NOT NULL,
    notes TEXT,
    PRIMARY KEY (recital_id, song_id),
    UNIQUE (recital_id, sort_order)
)`,
	`CREATE INDEX IF NOT EXISTS idx_recitals_owner_id ON recitals(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_recital_songs_song_id ON recital_songs(song_id)`,
	`CREATE INDEX IF NOT EXISTS idx_songs_title ON songs(title)`,
}

// Migrate executes the schema setup. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
