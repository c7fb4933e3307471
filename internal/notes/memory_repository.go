package notes

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing and local development.
type InMemoryRepository struct {
	mu   sync.RWMutex
	docs map[Key]NoteData
	now  func() time.Time
}

// NewInMemoryRepository creates a new in-memory notes repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		docs: make(map[Key]NoteData),
		now:  time.Now,
	}
}

// Get retrieves a document.
func (r *InMemoryRepository) Get(_ context.Context, key Key) (*NoteData, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[key]
	if !ok {
		return nil, ErrNoteNotFound
	}
	cpy := copyNote(doc)
	return &cpy, nil
}

// Put overwrites a document.
func (r *InMemoryRepository) Put(_ context.Context, key Key, data NoteData) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data = copyNote(data)
	data.UpdatedAt = r.now().UTC()
	r.docs[key] = data
	return nil
}

// Merge updates the note fields of a document, keeping its history.
func (r *InMemoryRepository) Merge(_ context.Context, key Key, update Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc := r.docs[key]
	doc.CurrentNote = update.CurrentNote
	doc.UpdatedDate = update.UpdatedDate
	doc.Station = update.Station
	doc.UserName = update.UserName
	doc.Location = update.Location
	doc.UpdatedAt = r.now().UTC()
	r.docs[key] = doc
	return nil
}

// Scan returns every document ordered by provider, then IMEI.
func (r *InMemoryRepository) Scan(_ context.Context) ([]Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := make([]Document, 0, len(r.docs))
	for key, data := range r.docs {
		docs = append(docs, Document{Key: key, Data: copyNote(data)})
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Key.Provider != docs[j].Key.Provider {
			return docs[i].Key.Provider < docs[j].Key.Provider
		}
		return docs[i].Key.IMEI < docs[j].Key.IMEI
	})
	return docs, nil
}

func copyNote(n NoteData) NoteData {
	if n.History != nil {
		history := make([]HistoryEntry, len(n.History))
		copy(history, n.History)
		n.History = history
	}
	return n
}
