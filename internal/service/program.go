package service

import (
	"context"
	"log/slog"

	"github.com/mmynk/recitals/internal/apperr"
	"github.com/mmynk/recitals/internal/models"
	"github.com/mmynk/recitals/internal/storage"
)

// A recital's program is kept densely ordered: after every successful call
// below, the orders of its songs are exactly 0..n-1. Each operation runs in
// one store transaction that holds the recital.

// AddSong appends a catalog song to the end of an owned recital's program.
func (s *RecitalService) AddSong(ctx context.Context, ownerID, recitalID, songID, notes string) (*models.Recital, error) {
	slog.Info("AddSong request received", "user_id", ownerID, "recital_id", recitalID, "song_id", songID)

	var result *models.Recital
	err := s.store.WithProgram(ctx, func(tx storage.ProgramTx) error {
		recital, err := tx.LockRecital(ctx, ownerID, recitalID)
		if err != nil {
			return notFoundOr(err, msgRecitalNotFound)
		}

		current, err := tx.Entries(ctx, recitalID)
		if err != nil {
			return classify(err)
		}
		for _, e := range current {
			if e.SongID == songID {
				return apperr.InvalidRequest(msgSongAlreadyOnRecital)
			}
		}

		if _, err := tx.GetSong(ctx, songID); err != nil {
			return notFoundOr(err, msgSongNotFound)
		}

		entry := models.RecitalSong{
			RecitalID: recitalID,
			SongID:    songID,
			Order:     len(current),
			Notes:     notes,
		}
		if err := tx.InsertEntry(ctx, entry); err != nil {
			return classify(err)
		}

		recital.Songs, err = tx.Program(ctx, recitalID)
		if err != nil {
			return classify(err)
		}
		result = recital
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	slog.Info("Song added to recital", "recital_id", recitalID, "song_id", songID, "order", len(result.Songs)-1)
	return result, nil
}

// RemoveSong takes a song off an owned recital's program and closes the gap
// it leaves.
func (s *RecitalService) RemoveSong(ctx context.Context, ownerID, recitalID, songID string) (*models.Recital, error) {
	slog.Info("RemoveSong request received", "user_id", ownerID, "recital_id", recitalID, "song_id", songID)

	var result *models.Recital
	err := s.store.WithProgram(ctx, func(tx storage.ProgramTx) error {
		recital, err := tx.LockRecital(ctx, ownerID, recitalID)
		if err != nil {
			return notFoundOr(err, msgRecitalNotFound)
		}

		if err := tx.DeleteEntry(ctx, recitalID, songID); err != nil {
			return notFoundOr(err, msgSongNotOnRecital)
		}

		remaining, err := tx.Entries(ctx, recitalID)
		if err != nil {
			return classify(err)
		}
		if orders, changed := models.DenseOrders(remaining); changed {
			if err := tx.SetOrders(ctx, recitalID, orders); err != nil {
				return classify(err)
			}
		}

		recital.Songs, err = tx.Program(ctx, recitalID)
		if err != nil {
			return classify(err)
		}
		result = recital
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	slog.Info("Song removed from recital", "recital_id", recitalID, "song_id", songID)
	return result, nil
}

// ListSongs returns an owned recital's program in ascending order.
func (s *RecitalService) ListSongs(ctx context.Context, ownerID, recitalID string) ([]models.ProgramSong, error) {
	recital, err := s.store.GetRecital(ctx, ownerID, recitalID)
	if err != nil {
		return nil, notFoundOr(err, msgRecitalNotFound)
	}
	return recital.Songs, nil
}

// ReorderSongs replaces the order of an owned recital's whole program.
// requested must name every song on the recital exactly once and assign
// the orders 0..n-1.
func (s *RecitalService) ReorderSongs(ctx context.Context, ownerID, recitalID string, requested []models.SongOrder) ([]models.ProgramSong, error) {
	slog.Info("ReorderSongs request received", "user_id", ownerID, "recital_id", recitalID, "songs_count", len(requested))

	var result []models.ProgramSong
	err := s.store.WithProgram(ctx, func(tx storage.ProgramTx) error {
		if _, err := tx.LockRecital(ctx, ownerID, recitalID); err != nil {
			return notFoundOr(err, msgRecitalNotFound)
		}

		current, err := tx.Entries(ctx, recitalID)
		if err != nil {
			return classify(err)
		}

		orders, err := targetOrders(current, requested)
		if err != nil {
			return err
		}

		if err := tx.SetOrders(ctx, recitalID, orders); err != nil {
			return classify(err)
		}

		result, err = tx.Program(ctx, recitalID)
		return classify(err)
	})
	if err != nil {
		return nil, classify(err)
	}

	slog.Info("Recital songs reordered", "recital_id", recitalID)
	return result, nil
}

// targetOrders validates a reorder request against the current program and
// returns the song to order mapping to apply.
func targetOrders(current []models.RecitalSong, requested []models.SongOrder) (map[string]int, error) {
	if len(requested) != len(current) {
		return nil, apperr.InvalidRequest(msgSongCountMismatch)
	}

	members := make(map[string]bool, len(current))
	for _, e := range current {
		members[e.SongID] = true
	}

	orders := make(map[string]int, len(requested))
	taken := make([]bool, len(requested))
	for _, r := range requested {
		if !members[r.SongID] {
			return nil, apperr.InvalidRequest(msgSongSetMismatch)
		}
		if _, dup := orders[r.SongID]; dup {
			return nil, apperr.InvalidRequest(msgSongSetMismatch)
		}
		if r.Order < 0 || r.Order >= len(requested) || taken[r.Order] {
			return nil, apperr.InvalidRequest(msgInvalidSongOrder)
		}
		taken[r.Order] = true
		orders[r.SongID] = r.Order
	}

	return orders, nil
}
