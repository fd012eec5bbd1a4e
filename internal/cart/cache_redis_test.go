package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client), mr
}

func TestRedisCache_Miss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	_, err := cache.Get(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_SetThenGet(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	want := Cart{ID: 7, UserID: "u1", CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	require.NoError(t, cache.Set(ctx, want))

	assert.True(t, mr.Exists("cart:u1"))
	ttl := mr.TTL("cart:u1")
	assert.GreaterOrEqual(t, ttl, 30*time.Minute)
	assert.Less(t, ttl, 35*time.Minute)

	got, err := cache.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.UserID, got.UserID)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
}

func TestRedisCache_Expired(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, Cart{ID: 7, UserID: "u1"}))
	mr.FastForward(time.Hour)

	_, err := cache.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_CorruptEntry(t *testing.T) {
	cache, mr := setupTestRedis(t)

	require.NoError(t, mr.Set("cart:u1", "not json"))
	_, err := cache.Get(context.Background(), "u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_Delete(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, Cart{ID: 7, UserID: "u1"}))
	require.NoError(t, cache.Delete(ctx, "u1"))
	assert.False(t, mr.Exists("cart:u1"))

	_, err := cache.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, cache.Delete(ctx, "absent"))
}
