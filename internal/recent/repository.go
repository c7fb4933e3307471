package recent

import (
	"context"

	"github.com/imeilookup/imeilookup/internal/device"
)

// Repository persists the recency list of each provider.
type Repository interface {
	// Load returns the stored list, most recent first. A missing list is empty.
	Load(ctx context.Context, provider device.Provider) ([]Item, error)

	// Save replaces the stored list.
	Save(ctx context.Context, provider device.Provider, items []Item) error

	// Clear removes the stored list.
	Clear(ctx context.Context, provider device.Provider) error
}

// Key returns the storage key for a provider's list.
func Key(provider device.Provider) string {
	return "imeiHistory_" + provider.String()
}
