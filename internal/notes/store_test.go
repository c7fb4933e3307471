package notes_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imeilookup/imeilookup/internal/firestoredb"
	"github.com/imeilookup/imeilookup/internal/notes"
)

func TestOpen_Memory(t *testing.T) {
	for _, backend := range []string{"", notes.BackendMemory} {
		store, err := notes.Open(context.Background(), backend, true)
		require.NoError(t, err)

		assert.Equal(t, notes.BackendMemory, store.Backend)
		assert.IsType(t, &notes.InMemoryRepository{}, store.Repository)
		assert.Nil(t, store.Ping)
		store.Close()
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := notes.Open(context.Background(), "sqlite", false)
	assert.ErrorIs(t, err, notes.ErrUnknownBackend)
	assert.Contains(t, err.Error(), `"sqlite"`)
}

func TestOpen_FirestoreNeedsProject(t *testing.T) {
	t.Setenv("FIRESTORE_PROJECT_ID", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")

	_, err := notes.Open(context.Background(), notes.BackendFirestore, false)
	assert.ErrorIs(t, err, firestoredb.ErrProjectRequired)
}
