//go:build integration

package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/url-mapper/internal/shortener"
	"github.com/serroba/url-mapper/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: getRedisAddr(),
	})
	t.Cleanup(func() { _ = client.Close() })

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	return client
}

func TestRedisCacheRepositoryIntegration(t *testing.T) {
	client := newRedisClient(t)

	runRepositoryContract(t, func(t *testing.T) shortener.Repository {
		cache := store.NewRedisCacheRepository(store.NewMemoryStore(), client, time.Minute)
		require.NoError(t, cache.DeleteAll(context.Background()))

		return cache
	})

	ctx := context.Background()

	t.Run("serves reads from cache", func(t *testing.T) {
		backing := store.NewMemoryStore()
		cache := store.NewRedisCacheRepository(backing, client, time.Minute)
		require.NoError(t, cache.DeleteAll(ctx))

		m := &shortener.Mapping{FullURL: "http://example.com/c", ShortURL: "http://example.com/C", Shortened: true}
		require.NoError(t, cache.Insert(ctx, m))

		_, err := cache.FindByShortURL(ctx, m.ShortURL)
		require.NoError(t, err)

		// Drop the record behind the cache's back.
		require.NoError(t, backing.Delete(ctx, m.ID))

		got, err := cache.FindByShortURL(ctx, m.ShortURL)
		require.NoError(t, err)
		assert.Equal(t, m.FullURL, got.FullURL)
		assert.True(t, got.Shortened)
	})

	t.Run("update evicts stale index", func(t *testing.T) {
		cache := store.NewRedisCacheRepository(store.NewMemoryStore(), client, time.Minute)
		require.NoError(t, cache.DeleteAll(ctx))

		m := &shortener.Mapping{FullURL: "http://example.com/u", ShortURL: "http://example.com/U1"}
		require.NoError(t, cache.Insert(ctx, m))
		_, _ = cache.FindByShortURL(ctx, "http://example.com/U1")

		m.ShortURL = "http://example.com/U2"
		require.NoError(t, cache.Update(ctx, m))

		_, err := cache.FindByShortURL(ctx, "http://example.com/U1")
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("delete all sweeps cached keys", func(t *testing.T) {
		cache := store.NewRedisCacheRepository(store.NewMemoryStore(), client, time.Minute)
		m := &shortener.Mapping{FullURL: "http://example.com/s", ShortURL: "http://example.com/S"}
		require.NoError(t, cache.Insert(ctx, m))
		_, _ = cache.Get(ctx, m.ID)

		require.NoError(t, cache.DeleteAll(ctx))

		keys, err := client.Keys(ctx, "mapping:*").Result()
		require.NoError(t, err)
		assert.Empty(t, keys)
	})
}
