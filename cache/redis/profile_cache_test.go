package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecomstore/passport/cache"
	"github.com/ecomstore/passport/cache/redis"
)

func newCache(t *testing.T) (*redis.ProfileCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	c := redis.NewProfileCache(client)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisProfileCacheRoundTrip(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, 151, "req-1", []byte(`{"id":"42"}`), time.Minute))

	got, err := c.Get(ctx, 151, "req-1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"id":"42"}`), got)
}

func TestRedisProfileCacheAbsent(t *testing.T) {
	c, _ := newCache(t)

	_, err := c.Get(context.Background(), 151, "nope")
	assert.ErrorIs(t, err, cache.ErrAbsent)
}

func TestRedisProfileCacheEmptyEntryIsNotAbsent(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, 151, "req-1", nil, time.Minute))

	got, err := c.Get(ctx, 151, "req-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisProfileCacheExpiryBoundary(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, 151, "req-1", []byte("x"), 120*time.Second))

	mr.FastForward(119 * time.Second)
	_, err := c.Get(ctx, 151, "req-1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	_, err = c.Get(ctx, 151, "req-1")
	assert.ErrorIs(t, err, cache.ErrAbsent)
}

func TestRedisProfileCacheKeysAreStoreScoped(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, 151, "req-1", []byte("a"), time.Minute))

	_, err := c.Get(ctx, 152, "req-1")
	assert.ErrorIs(t, err, cache.ErrAbsent)
}
