package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/MoosaAfzal2/poetry-todo-api/internal/adapter/cache"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/domain"
)

func TestNilCacheIsPermanentMiss(t *testing.T) {
	var c *cache.IdentityCache
	ctx := context.Background()
	id := uuid.New()

	hit, err := c.Get(ctx, id)
	require.NoError(t, err)
	require.Nil(t, hit)

	require.NoError(t, c.Set(ctx, domain.User{ID: id}))
	require.NoError(t, c.Invalidate(ctx, id))
}

func TestNewIdentityCacheWithoutClient(t *testing.T) {
	require.Nil(t, cache.NewIdentityCache(nil, 30*time.Second))
}
