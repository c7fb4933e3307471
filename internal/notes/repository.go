package notes

import "context"

// Repository defines the interface for note document persistence.
type Repository interface {
	// Get retrieves a document. Returns ErrNoteNotFound if it doesn't exist.
	Get(ctx context.Context, key Key) (*NoteData, error)

	// Put overwrites the whole document, history included.
	// The store assigns UpdatedAt.
	Put(ctx context.Context, key Key, data NoteData) error

	// Merge writes the note and station fields, creating the document if needed
	// and leaving history untouched. The store assigns UpdatedAt.
	Merge(ctx context.Context, key Key, update Update) error

	// Scan returns every document of every provider.
	Scan(ctx context.Context) ([]Document, error)
}
