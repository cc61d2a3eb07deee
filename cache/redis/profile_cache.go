package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ecomstore/passport/cache"
)

// ProfileCache implements cache.ProfileCache using Redis. Expiry is
// delegated to Redis via SET ... EX, so entries disappear on their own and
// a missing key reads back as cache.ErrAbsent.
type ProfileCache struct {
	client *redis.Client
}

// NewProfileCache creates a Redis-backed profile cache.
func NewProfileCache(client *redis.Client) *ProfileCache {
	return &ProfileCache{client: client}
}

var _ cache.ProfileCache = (*ProfileCache)(nil)

// Put implements cache.ProfileCache.Put.
func (p *ProfileCache) Put(ctx context.Context, storeID int, requestID string, profile []byte, ttl time.Duration) error {
	key := cache.Key(storeID, requestID)
	if err := p.client.Set(ctx, key, profile, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set profile %s: %w", key, err)
	}
	return nil
}

// Get implements cache.ProfileCache.Get.
func (p *ProfileCache) Get(ctx context.Context, storeID int, requestID string) ([]byte, error) {
	key := cache.Key(storeID, requestID)
	val, err := p.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, cache.ErrAbsent
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get profile %s: %w", key, err)
	}
	return val, nil
}

// Close releases the underlying client connection.
func (p *ProfileCache) Close() error {
	return p.client.Close()
}
