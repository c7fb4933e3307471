package recent

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/imeilookup/imeilookup/internal/device"
)

// ServiceConfig holds configuration for the recency service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger
}

// Service maintains the recency lists.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a new recency service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}
}

// Record puts a lookup at the head of the provider's list, dropping any earlier
// entry for the same identifier (case-insensitive) and keeping at most MaxItems.
// Storage failures are logged and otherwise ignored.
func (s *Service) Record(ctx context.Context, provider device.Provider, imei string, data device.Data) []Item {
	items, err := s.repo.Load(ctx, provider)
	if err != nil {
		s.logger.Warn().Err(err).Str("provider", provider.String()).Msg("failed to load recent lookups")
		items = nil
	}

	items = Push(items, NewItem(imei, data))

	if err := s.repo.Save(ctx, provider, items); err != nil {
		s.logger.Warn().Err(err).Str("provider", provider.String()).Msg("failed to save recent lookups")
	}
	return items
}

// List returns the provider's list, most recent first.
func (s *Service) List(ctx context.Context, provider device.Provider) []Item {
	items, err := s.repo.Load(ctx, provider)
	if err != nil {
		s.logger.Warn().Err(err).Str("provider", provider.String()).Msg("failed to load recent lookups")
		return []Item{}
	}
	if items == nil {
		return []Item{}
	}
	return items
}

// Clear empties the provider's list.
func (s *Service) Clear(ctx context.Context, provider device.Provider) error {
	return s.repo.Clear(ctx, provider)
}

// Push returns items with item prepended, earlier entries for the same
// identifier removed and the result capped at MaxItems.
func Push(items []Item, item Item) []Item {
	out := make([]Item, 0, MaxItems)
	out = append(out, item)
	for _, existing := range items {
		if len(out) == MaxItems {
			break
		}
		if strings.EqualFold(existing.IMEI, item.IMEI) {
			continue
		}
		out = append(out, existing)
	}
	return out
}
