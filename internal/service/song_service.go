package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mmynk/recitals/internal/apperr"
	"github.com/mmynk/recitals/internal/models"
	"github.com/mmynk/recitals/internal/storage"
)

// SongService manages the shared song catalog. Mutations are admin-only;
// the routing layer enforces that.
type SongService struct {
	store storage.Store
}

// NewSongService creates a new SongService with the given storage backend.
func NewSongService(store storage.Store) *SongService {
	return &SongService{store: store}
}

// Create adds a song to the catalog on behalf of creatorID.
func (s *SongService) Create(ctx context.Context, creatorID string, input models.Song) (*models.Song, error) {
	slog.Info("CreateSong request received", "user_id", creatorID, "title", input.Title)

	song := input
	song.ID = ""
	song.CreatedAt = 0
	song.CreatedBy = creatorID
	song.Title = strings.TrimSpace(song.Title)
	song.Composer = strings.TrimSpace(song.Composer)
	song.Language = strings.TrimSpace(song.Language)
	if !song.HasRequiredFields() {
		return nil, apperr.InvalidRequest(msgSongMissingFields)
	}

	if err := s.store.CreateSong(ctx, &song); err != nil {
		slog.Error("CreateSong failed", "error", err)
		return nil, classify(err)
	}

	slog.Info("Song created", "song_id", song.ID)
	return &song, nil
}

// List returns a page of the catalog.
func (s *SongService) List(ctx context.Context, page storage.Page) ([]*models.Song, error) {
	songs, err := s.store.ListSongs(ctx, page)
	if err != nil {
		return nil, classify(err)
	}
	return songs, nil
}

// Get returns one catalog song.
func (s *SongService) Get(ctx context.Context, id string) (*models.Song, error) {
	song, err := s.store.GetSong(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgSongNotFound)
	}
	return song, nil
}

// Update merges patch into a song. Required fields can be changed but never
// cleared.
func (s *SongService) Update(ctx context.Context, id string, patch models.SongPatch) (*models.Song, error) {
	slog.Info("UpdateSong request received", "song_id", id)

	if patch.Empty() {
		return nil, apperr.InvalidRequest(msgNoInformation)
	}
	patch.Title = trimmed(patch.Title)
	patch.Composer = trimmed(patch.Composer)
	patch.Language = trimmed(patch.Language)
	if patch.BlanksRequired() {
		return nil, apperr.InvalidRequest(msgSongMissingFields)
	}

	song, err := s.store.UpdateSong(ctx, id, patch)
	if err != nil {
		return nil, notFoundOr(err, msgSongNotFound)
	}

	slog.Info("Song updated", "song_id", id)
	return song, nil
}

// Delete removes a song from the catalog and from every recital.
func (s *SongService) Delete(ctx context.Context, id string) error {
	slog.Info("DeleteSong request received", "song_id", id)

	if err := s.store.DeleteSong(ctx, id); err != nil {
		return notFoundOr(err, msgSongNotFound)
	}

	slog.Info("Song deleted", "song_id", id)
	return nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
