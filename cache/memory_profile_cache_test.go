package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecomstore/passport/cache"
)

func TestMemoryProfileCacheRoundTrip(t *testing.T) {
	c := cache.NewMemoryProfileCache()
	defer c.Close()
	ctx := context.Background()

	err := c.Put(ctx, 151, "req-1", []byte(`{"id":"42"}`), time.Minute)
	require.NoError(t, err)

	got, err := c.Get(ctx, 151, "req-1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"id":"42"}`), got)
}

func TestMemoryProfileCacheAbsent(t *testing.T) {
	c := cache.NewMemoryProfileCache()
	defer c.Close()

	_, err := c.Get(context.Background(), 151, "nope")
	assert.ErrorIs(t, err, cache.ErrAbsent)
}

// An entry holding an empty payload is present but empty. Callers rely on
// telling that apart from a missing entry.
func TestMemoryProfileCacheEmptyEntryIsNotAbsent(t *testing.T) {
	c := cache.NewMemoryProfileCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, 151, "req-1", nil, time.Minute))

	got, err := c.Get(ctx, 151, "req-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryProfileCacheExpiry(t *testing.T) {
	c := cache.NewMemoryProfileCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, 151, "req-1", []byte("x"), 20*time.Millisecond))

	_, err := c.Get(ctx, 151, "req-1")
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	_, err = c.Get(ctx, 151, "req-1")
	assert.ErrorIs(t, err, cache.ErrAbsent)
}

func TestMemoryProfileCacheKeysAreStoreScoped(t *testing.T) {
	c := cache.NewMemoryProfileCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, 151, "req-1", []byte("a"), time.Minute))

	_, err := c.Get(ctx, 152, "req-1")
	assert.ErrorIs(t, err, cache.ErrAbsent)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "151_abc", cache.Key(151, "abc"))
}
