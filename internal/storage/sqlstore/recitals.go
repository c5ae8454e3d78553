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

const recitalColumns = `id, name, recital_date, location, description, program_notes, owner_id, created_at, updated_at`

// CreateRecital persists a new recital.
func (s *Store) CreateRecital(ctx context.Context, recital *models.Recital) error {
	if recital.ID == "" {
		recital.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if recital.CreatedAt == 0 {
		recital.CreatedAt = now
	}
	recital.UpdatedAt = recital.CreatedAt

	_, err := s.conn().exec(ctx,
		`INSERT INTO recitals (`+recitalColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		recital.ID, recital.Name, nullString(recital.Date), nullString(recital.Location),
		nullString(recital.Description), nullString(recital.ProgramNotes), recital.OwnerID,
		recital.CreatedAt, recital.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr("failed to insert recital", err)
	}

	return nil
}

// GetRecital retrieves an owned recital together with its program.
func (s *Store) GetRecital(ctx context.Context, ownerID, id string) (*models.Recital, error) {
	c := s.conn()
	recital, err := getRecital(ctx, c, ownerID, id, "")
	if err != nil {
		return nil, err
	}

	recital.Songs, err = program(ctx, c, id)
	if err != nil {
		return nil, err
	}

	return recital, nil
}

func getRecital(ctx context.Context, c conn, ownerID, id, lock string) (*models.Recital, error) {
	recital, err := scanRecital(c.queryRow(ctx,
		`SELECT `+recitalColumns+` FROM recitals WHERE id = ? AND owner_id = ?`+lock,
		id, ownerID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to get recital: %w", err)
	}
	return recital, nil
}

// ListRecitalsByOwner returns the user's recitals, newest first.
func (s *Store) ListRecitalsByOwner(ctx context.Context, ownerID string) ([]*models.Recital, error) {
	return s.listRecitals(ctx,
		`SELECT `+recitalColumns+` FROM recitals WHERE owner_id = ? ORDER BY created_at DESC, id`,
		ownerID,
	)
}

// ListRecitals returns a page of all recitals across owners.
func (s *Store) ListRecitals(ctx context.Context, page storage.Page) ([]*models.Recital, error) {
	return s.listRecitals(ctx,
		`SELECT `+recitalColumns+` FROM recitals ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		page.Limit, page.Offset,
	)
}

func (s *Store) listRecitals(ctx context.Context, query string, args ...any) ([]*models.Recital, error) {
	rows, err := s.conn().query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recitals: %w", err)
	}
	defer rows.Close()

	recitals := []*models.Recital{}
	for rows.Next() {
		recital, err := scanRecital(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recital: %w", err)
		}
		recitals = append(recitals, recital)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recitals: %w", err)
	}

	return recitals, nil
}

// UpdateRecital applies the non-nil fields of patch to an owned recital.
func (s *Store) UpdateRecital(ctx context.Context, ownerID, id string, patch models.RecitalPatch) (*models.Recital, error) {
	var set setClause
	set.addString("name", patch.Name)
	set.addString("recital_date", patch.Date)
	set.addString("location", patch.Location)
	set.addString("description", patch.Description)
	set.addString("program_notes", patch.ProgramNotes)
	set.add("updated_at", time.Now().Unix())

	res, err := s.conn().exec(ctx,
		`UPDATE recitals SET `+set.String()+` WHERE id = ? AND owner_id = ?`,
		append(set.args, id, ownerID)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update recital: %w", err)
	}
	if err := expectAffected(res); err != nil {
		return nil, err
	}

	return s.GetRecital(ctx, ownerID, id)
}

// ReplaceRecital overwrites every editable column of an owned recital.
// Empty optional fields are cleared.
func (s *Store) ReplaceRecital(ctx context.Context, recital *models.Recital) error {
	recital.UpdatedAt = time.Now().Unix()

	res, err := s.conn().exec(ctx,
		`UPDATE recitals
		 SET name = ?, recital_date = ?, location = ?, description = ?, program_notes = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?`,
		recital.Name, nullString(recital.Date), nullString(recital.Location),
		nullString(recital.Description), nullString(recital.ProgramNotes), recital.UpdatedAt,
		recital.ID, recital.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("failed to replace recital: %w", err)
	}

	return expectAffected(res)
}

// DeleteRecital removes an owned recital and its program.
func (s *Store) DeleteRecital(ctx context.Context, ownerID, id string) error {
	res, err := s.conn().exec(ctx, `DELETE FROM recitals WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete recital: %w", err)
	}
	return expectAffected(res)
}

func scanRecital(row scanner) (*models.Recital, error) {
	recital := &models.Recital{}
	var date, location, description, notes sql.NullString

	err := row.Scan(&recital.ID, &recital.Name, &date, &location, &description, &notes,
		&recital.OwnerID, &recital.CreatedAt, &recital.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	recital.Date = date.String
	recital.Location = location.String
	recital.Description = description.String
	recital.ProgramNotes = notes.String

	return recital, nil
}
