package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mmynk/recitals/internal/models"
	"github.com/mmynk/recitals/internal/storage"
)

const songColumns = `id, title, composer, author, language, composition_year, original_key,
	catalogue_number, period, source_set, created_by, created_at`

// CreateSong persists a new song to the catalog.
func (s *Store) CreateSong(ctx context.Context, song *models.Song) error {
	// Generate ID if not set
	if song.ID == "" {
		song.ID = uuid.New().String()
	}
	if song.CreatedAt == 0 {
		song.CreatedAt = time.Now().Unix()
	}

	_, err := s.conn().exec(ctx,
		`INSERT INTO songs (id, title, composer, author, language, composition_year, original_key,
			catalogue_number, period, source_set, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		song.ID, song.Title, song.Composer, nullString(song.Author), song.Language,
		nullInt(song.CompositionYear), nullString(song.OriginalKey), nullString(song.CatalogueNumber),
		nullString(song.Period), nullString(song.From), nullString(song.CreatedBy), song.CreatedAt,
	)
	if err != nil {
		return mapWriteErr("failed to insert song", err)
	}

	return nil
}

// GetSong retrieves a song by ID.
func (s *Store) GetSong(ctx context.Context, id string) (*models.Song, error) {
	return getSong(ctx, s.conn(), id)
}

func getSong(ctx context.Context, c conn, id string) (*models.Song, error) {
	song, err := scanSong(c.queryRow(ctx, `SELECT `+songColumns+` FROM songs WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get song: %w", err)
	}
	return song, nil
}

// ListSongs returns a page of the catalog ordered by composer and title.
func (s *Store) ListSongs(ctx context.Context, page storage.Page) ([]*models.Song, error) {
	rows, err := s.conn().query(ctx,
		`SELECT `+songColumns+` FROM songs ORDER BY composer, title, id LIMIT ? OFFSET ?`,
		page.Limit, page.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}
	defer rows.Close()

	songs := []*models.Song{}
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate songs: %w", err)
	}

	return songs, nil
}

// UpdateSong applies the non-nil fields of patch and returns the stored song.
func (s *Store) UpdateSong(ctx context.Context, id string, patch models.SongPatch) (*models.Song, error) {
	var set setClause
	set.addString("title", patch.Title)
	set.addString("composer", patch.Composer)
	set.addString("author", patch.Author)
	set.addString("language", patch.Language)
	if patch.CompositionYear != nil {
		set.add("composition_year", *patch.CompositionYear)
	}
	set.addString("original_key", patch.OriginalKey)
	set.addString("catalogue_number", patch.CatalogueNumber)
	set.addString("period", patch.Period)
	set.addString("source_set", patch.From)

	if set.empty() {
		return s.GetSong(ctx, id)
	}

	res, err := s.conn().exec(ctx,
		`UPDATE songs SET `+set.String()+` WHERE id = ?`,
		append(set.args, id)...,
	)
	if err != nil {
		return nil, mapWriteErr("failed to update song", err)
	}
	if err := expectAffected(res); err != nil {
		return nil, err
	}

	return s.GetSong(ctx, id)
}

// DeleteSong removes a song and closes the gap it leaves on every recital
// that included it.
func (s *Store) DeleteSong(ctx context.Context, id string) error {
	return s.inTx(ctx, func(c conn) error {
		recitalIDs, err := recitalsWithSong(ctx, c, id)
		if err != nil {
			return err
		}

		res, err := c.exec(ctx, `DELETE FROM songs WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete song: %w", err)
		}
		if err := expectAffected(res); err != nil {
			return err
		}

		for _, recitalID := range recitalIDs {
			if err := renumber(ctx, c, recitalID); err != nil {
				return err
			}
		}
		return nil
	})
}

func recitalsWithSong(ctx context.Context, c conn, songID string) ([]string, error) {
	rows, err := c.query(ctx, `SELECT recital_id FROM recital_songs WHERE song_id = ?`, songID)
	if err != nil {
		return nil, fmt.Errorf("failed to find recitals for song: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan recital id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanSong(row scanner) (*models.Song, error) {
	song := &models.Song{}
	var (
		author, originalKey, catalogueNumber sql.NullString
		period, from, createdBy              sql.NullString
		year                                 sql.NullInt64
	)

	err := row.Scan(&song.ID, &song.Title, &song.Composer, &author, &song.Language, &year,
		&originalKey, &catalogueNumber, &period, &from, &createdBy, &song.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	song.Author = author.String
	song.CompositionYear = intPtr(year)
	song.OriginalKey = originalKey.String
	song.CatalogueNumber = catalogueNumber.String
	song.Period = period.String
	song.From = from.String
	song.CreatedBy = createdBy.String

	return song, nil
}
