package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryProfileCache implements ProfileCache using ttlcache. It is meant
// for development and single-instance deployments; multi-instance setups
// need the redis backend so a callback and its poll can land on different
// instances.
type MemoryProfileCache struct {
	cache *ttlcache.Cache[string, []byte]
}

// NewMemoryProfileCache creates an in-memory profile cache with automatic
// expiry cleanup.
func NewMemoryProfileCache() *MemoryProfileCache {
	cache := ttlcache.New(
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)

	// Start the cleanup process
	go cache.Start()

	return &MemoryProfileCache{cache: cache}
}

var _ ProfileCache = (*MemoryProfileCache)(nil)

// Put implements ProfileCache.Put.
func (m *MemoryProfileCache) Put(_ context.Context, storeID int, requestID string, profile []byte, ttl time.Duration) error {
	m.cache.Set(Key(storeID, requestID), profile, ttl)
	return nil
}

// Get implements ProfileCache.Get.
func (m *MemoryProfileCache) Get(_ context.Context, storeID int, requestID string) ([]byte, error) {
	item := m.cache.Get(Key(storeID, requestID))
	if item == nil {
		return nil, ErrAbsent
	}
	return item.Value(), nil
}

// Close stops the cleanup goroutine.
func (m *MemoryProfileCache) Close() error {
	m.cache.Stop()
	return nil
}
