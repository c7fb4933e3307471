package recent

import (
	"context"
	"sync"

	"github.com/imeilookup/imeilookup/internal/device"
)

// InMemoryRepository is an in-memory implementation of Repository.
// Lists do not survive a restart; production should use RedisRepository.
type InMemoryRepository struct {
	mu    sync.RWMutex
	lists map[device.Provider][]Item
}

// NewInMemoryRepository creates a new in-memory recency repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		lists: make(map[device.Provider][]Item),
	}
}

// Load returns a copy of the provider's list.
func (r *InMemoryRepository) Load(_ context.Context, provider device.Provider) ([]Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.lists[provider]
	out := make([]Item, len(items))
	copy(out, items)
	return out, nil
}

// Save replaces the provider's list.
func (r *InMemoryRepository) Save(_ context.Context, provider device.Provider, items []Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := make([]Item, len(items))
	copy(cpy, items)
	r.lists[provider] = cpy
	return nil
}

// Clear removes the provider's list.
func (r *InMemoryRepository) Clear(_ context.Context, provider device.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.lists, provider)
	return nil
}
