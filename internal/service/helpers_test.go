package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mmynk/recitals/internal/models"
	"github.com/mmynk/recitals/internal/storage/sqlstore"
)

// newTestStore creates a SQLite store in a temp directory.
func newTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()

	store, err := sqlstore.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func mustUser(t *testing.T, store *sqlstore.Store, email string) *models.User {
	t.Helper()
	user := models.NewUser(email, "hash")
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func mustSong(t *testing.T, store *sqlstore.Store, title string) *models.Song {
	t.Helper()
	song := &models.Song{Title: title, Composer: "Franz Schubert", Language: "German"}
	require.NoError(t, store.CreateSong(context.Background(), song))
	return song
}

func songIDs(songs []models.ProgramSong) []string {
	ids := make([]string, len(songs))
	for i, s := range songs {
		ids[i] = s.ID
	}
	return ids
}

func requireDense(t *testing.T, songs []models.ProgramSong) {
	t.Helper()
	for i, s := range songs {
		require.Equal(t, i, s.Order, "song %s at index %d", s.ID, i)
	}
}
