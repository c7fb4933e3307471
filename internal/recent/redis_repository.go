package recent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/imeilookup/imeilookup/internal/device"
)

// RedisRepository stores each provider's list as a JSON array under imeiHistory_{provider}.
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository creates a Redis-backed recency repository.
func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

// Load returns the stored list. A corrupt value is treated as an empty list.
func (r *RedisRepository) Load(ctx context.Context, provider device.Provider) ([]Item, error) {
	raw, err := r.client.Get(ctx, Key(provider)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []Item{}, nil
		}
		return nil, fmt.Errorf("load recent list: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return []Item{}, nil
	}
	return items, nil
}

// Save replaces the stored list.
func (r *RedisRepository) Save(ctx context.Context, provider device.Provider, items []Item) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode recent list: %w", err)
	}
	if err := r.client.Set(ctx, Key(provider), raw, 0).Err(); err != nil {
		return fmt.Errorf("save recent list: %w", err)
	}
	return nil
}

// Clear deletes the stored list.
func (r *RedisRepository) Clear(ctx context.Context, provider device.Provider) error {
	if err := r.client.Del(ctx, Key(provider)).Err(); err != nil {
		return fmt.Errorf("clear recent list: %w", err)
	}
	return nil
}
