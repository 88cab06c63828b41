package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/asanorder/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// unreachableRedis points at a port nothing listens on
var unreachableRedis = config.RedisConfig{Host: "127.0.0.1", Port: 1}

func TestIdempotencyStoreFactory_MemoryBackend(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	f := NewIdempotencyStoreFactory(unreachableRedis,
		config.IdempotencyConfig{Backend: "memory", CleanupInterval: time.Minute},
		WithLogger(zap.New(core)))

	store, err := f.CreateStore()
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	assert.Equal(t, 1, logs.Len())
}

func TestIdempotencyStoreFactory_RedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	f := NewIdempotencyStoreFactory(miniredisConfig(t, mr), config.IdempotencyConfig{Backend: "redis"})

	store, err := f.CreateStore()
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &RedisIdempotencyStore{}, store)
}

func TestIdempotencyStoreFactory_RedisUnavailable(t *testing.T) {
	t.Run("fails without fallback", func(t *testing.T) {
		f := NewIdempotencyStoreFactory(unreachableRedis, config.IdempotencyConfig{Backend: "redis"})
		store, err := f.CreateStore()
		assert.Error(t, err)
		assert.Nil(t, store)
	})

	t.Run("falls back to memory when allowed", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		f := NewIdempotencyStoreFactory(unreachableRedis,
			config.IdempotencyConfig{Backend: "redis", AllowInMemory: true},
			WithLogger(zap.New(core)))

		store, err := f.CreateStore()
		require.NoError(t, err)
		defer store.Close()

		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
		assert.Equal(t, 1, logs.FilterMessage("Redis unavailable, falling back to in-memory idempotency store").Len())
	})
}
