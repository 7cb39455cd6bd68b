package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"food-analyzer/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping Redis test")
	}

	ctx := context.Background()
	store, err := NewRedisStore(ctx, &config.CacheConfig{
		RedisAddr: addr,
		TTL:       time.Minute,
		KeyPrefix: "food-analyzer:test:",
	})
	require.NoError(t, err)
	defer store.Close()

	key := "key-" + time.Now().Format(time.RFC3339Nano)
	require.NoError(t, store.Set(ctx, key, "value"))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "value", got)

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	assert.True(t, errors.Is(err, ErrCacheMiss))
}
