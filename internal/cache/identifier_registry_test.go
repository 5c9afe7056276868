package cache_test

import (
	"context"
	"testing"

	"procomp-service/internal/cache"
	"procomp-service/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisIdentifierRegistry(t *testing.T) {
	ctx := context.Background()

	t.Run("Reserve once", func(t *testing.T) {
		mr, rdb := testutil.NewMiniRedis(t)
		registry := cache.NewRedisIdentifierRegistry(rdb)

		ok, err := registry.Reserve(ctx, "PC-20250301-1234", 42)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = registry.Reserve(ctx, "PC-20250301-1234", 43)
		require.NoError(t, err)
		assert.False(t, ok)

		assert.Equal(t, cache.IdentifierReservationTTL, mr.TTL("quote:identifier:PC-20250301-1234"))
	})

	t.Run("Release only by owner", func(t *testing.T) {
		mr, rdb := testutil.NewMiniRedis(t)
		registry := cache.NewRedisIdentifierRegistry(rdb)

		_, err := registry.Reserve(ctx, "PC-20250301-1234", 42)
		require.NoError(t, err)

		require.NoError(t, registry.Release(ctx, "PC-20250301-1234", 43))
		assert.True(t, mr.Exists("quote:identifier:PC-20250301-1234"))

		require.NoError(t, registry.Release(ctx, "PC-20250301-1234", 42))
		assert.False(t, mr.Exists("quote:identifier:PC-20250301-1234"))

		ok, err := registry.Reserve(ctx, "PC-20250301-1234", 43)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
