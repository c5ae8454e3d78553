package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/recitals/internal/models"
	"github.com/mmynk/recitals/internal/storage"
)

// WithProgram runs fn inside one transaction.
func (s *Store) WithProgram(ctx context.Context, fn func(tx storage.ProgramTx) error) error {
	return s.inTx(ctx, func(c conn) error {
		return fn(programTx{c: c})
	})
}

// ListProgram returns the songs of a recital in program order.
func (s *Store) ListProgram(ctx context.Context, recitalID string) ([]models.ProgramSong, error) {
	return program(ctx, s.conn(), recitalID)
}

// programTx implements storage.ProgramTx on a transaction.
type programTx struct {
	c conn
}

func (t programTx) LockRecital(ctx context.Context, ownerID, recitalID string) (*models.Recital, error) {
	return getRecital(ctx, t.c, ownerID, recitalID, t.c.d.lockClause)
}

func (t programTx) GetSong(ctx context.Context, songID string) (*models.Song, error) {
	return getSong(ctx, t.c, songID)
}

func (t programTx) Entries(ctx context.Context, recitalID string) ([]models.RecitalSong, error) {
	return entries(ctx, t.c, recitalID)
}

func (t programTx) InsertEntry(ctx context.Context, entry models.RecitalSong) error {
	_, err := t.c.exec(ctx,
		`INSERT INTO recital_songs (recital_id, song_id, sort_order, notes) VALUES (?, ?, ?, ?)`,
		entry.RecitalID, entry.SongID, entry.Order, nullString(entry.Notes),
	)
	if err != nil {
		return mapWriteErr("failed to insert recital song", err)
	}
	return nil
}

func (t programTx) DeleteEntry(ctx context.Context, recitalID, songID string) error {
	res, err := t.c.exec(ctx,
		`DELETE FROM recital_songs WHERE recital_id = ? AND song_id = ?`,
		recitalID, songID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete recital song: %w", err)
	}
	return expectAffected(res)
}

func (t programTx) SetOrders(ctx context.Context, recitalID string, orders map[string]int) error {
	return setOrders(ctx, t.c, recitalID, orders)
}

func (t programTx) Program(ctx context.Context, recitalID string) ([]models.ProgramSong, error) {
	return program(ctx, t.c, recitalID)
}

// setOrders writes a complete new ordering in two phases. Every row is first
// moved to a distinct negative slot, so no final value can collide with a
// stale one while the unique (recital_id, sort_order) index is enforced.
func setOrders(ctx context.Context, c conn, recitalID string, orders map[string]int) error {
	if _, err := c.exec(ctx,
		`UPDATE recital_songs SET sort_order = -1 - sort_order WHERE recital_id = ?`,
		recitalID,
	); err != nil {
		return mapWriteErr("failed to stage song order", err)
	}

	for songID, order := range orders {
		res, err := c.exec(ctx,
			`UPDATE recital_songs SET sort_order = ? WHERE recital_id = ? AND song_id = ?`,
			order, recitalID, songID,
		)
		if err != nil {
			return mapWriteErr("failed to set song order", err)
		}
		if err := expectAffected(res); err != nil {
			return fmt.Errorf("song %s is not on recital: %w", songID, err)
		}
	}

	var staged int
	if err := c.queryRow(ctx,
		`SELECT COUNT(*) FROM recital_songs WHERE recital_id = ? AND sort_order < 0`,
		recitalID,
	).Scan(&staged); err != nil {
		return fmt.Errorf("failed to verify song order: %w", err)
	}
	if staged > 0 {
		return fmt.Errorf("song order left %d songs unassigned", staged)
	}

	return nil
}

// renumber closes gaps so the recital's orders run 0..n-1, keeping their
// relative sequence.
func renumber(ctx context.Context, c conn, recitalID string) error {
	current, err := entries(ctx, c, recitalID)
	if err != nil {
		return err
	}

	orders, changed := models.DenseOrders(current)
	if !changed {
		return nil
	}

	return setOrders(ctx, c, recitalID, orders)
}

func entries(ctx context.Context, c conn, recitalID string) ([]models.RecitalSong, error) {
	rows, err := c.query(ctx,
		`SELECT recital_id, song_id, sort_order, notes FROM recital_songs
		 WHERE recital_id = ? ORDER BY sort_order`,
		recitalID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get recital songs: %w", err)
	}
	defer rows.Close()

	var result []models.RecitalSong
	for rows.Next() {
		var e models.RecitalSong
		var notes sql.NullString
		if err := rows.Scan(&e.RecitalID, &e.SongID, &e.Order, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan recital song: %w", err)
		}
		e.Notes = notes.String
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recital songs: %w", err)
	}

	return result, nil
}

func program(ctx context.Context, c conn, recitalID string) ([]models.ProgramSong, error) {
	rows, err := c.query(ctx,
		`SELECT s.id, s.title, s.composer, s.author, s.language, s.composition_year, s.original_key,
			s.catalogue_number, s.period, s.source_set, s.created_by, s.created_at,
			rs.sort_order, rs.notes
		 FROM recital_songs rs
		 JOIN songs s ON s.id = rs.song_id
		 WHERE rs.recital_id = ?
		 ORDER BY rs.sort_order`,
		recitalID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get program: %w", err)
	}
	defer rows.Close()

	songs := []models.ProgramSong{}
	for rows.Next() {
		ps, err := scanProgramSong(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan program song: %w", err)
		}
		songs = append(songs, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate program: %w", err)
	}

	return songs, nil
}

// programRow adapts a program row so scanSong can read the song columns
// while the trailing join columns land in the entry.
type programRow struct {
	rows  *sql.Rows
	order *int
	notes *sql.NullString
}

func (r programRow) Scan(dest ...any) error {
	return r.rows.Scan(append(dest, r.order, r.notes)...)
}

func scanProgramSong(rows *sql.Rows) (models.ProgramSong, error) {
	var ps models.ProgramSong
	var notes sql.NullString

	song, err := scanSong(programRow{rows: rows, order: &ps.Order, notes: &notes})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ps, fmt.Errorf("program row vanished: %w", err)
		}
		return ps, err
	}

	ps.Song = *song
	ps.Notes = notes.String
	return ps, nil
}
