package notes

import (
	"context"
	"errors"
	"fmt"

	"github.com/imeilookup/imeilookup/internal/database"
	"github.com/imeilookup/imeilookup/internal/firestoredb"
)

// Notes backends accepted by Open.
const (
	BackendMemory    = "memory"
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"
)

// ErrUnknownBackend is returned by Open for an unrecognized backend name.
var ErrUnknownBackend = errors.New("unknown notes backend")

// Store is an opened notes repository with its connection lifecycle.
type Store struct {
	Repository
	Backend string

	// Ping checks the backing connection. Nil for the in-memory store.
	Ping func(context.Context) error

	closer func()
}

// Close releases the backing connection.
func (s *Store) Close() {
	if s.closer != nil {
		s.closer()
	}
}

// Open connects the named backend using its environment configuration. An
// empty name opens the in-memory store. Postgres tables are created when
// migrate is set.
func Open(ctx context.Context, backend string, migrate bool) (*Store, error) {
	switch backend {
	case "", BackendMemory:
		return &Store{Repository: NewInMemoryRepository(), Backend: BackendMemory}, nil

	case BackendPostgres:
		pool, err := database.Connect(ctx, database.ConfigFromEnv())
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		repo := NewPostgresRepository(pool)
		if migrate {
			if err := repo.EnsureSchema(ctx); err != nil {
				pool.Close()
				return nil, fmt.Errorf("creating notes schema: %w", err)
			}
		}
		return &Store{Repository: repo, Backend: backend, Ping: pool.Ping, closer: pool.Close}, nil

	case BackendFirestore:
		client, err := firestoredb.Connect(ctx, firestoredb.ConfigFromEnv())
		if err != nil {
			return nil, fmt.Errorf("connecting to firestore: %w", err)
		}
		return &Store{
			Repository: NewFirestoreRepository(client),
			Backend:    backend,
			closer:     func() { _ = client.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownBackend, backend)
	}
}
