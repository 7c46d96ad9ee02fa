package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MoosaAfzal2/poetry-todo-api/internal/domain"
)

// IdentityCache keeps recently resolved users in Redis so the per-request
// identity pipeline does not hit Postgres on every protected call. Entries
// are short-lived and invalidated on any mutation of the user record, so a
// deleted or deactivated account is never served stale. All methods are
// nil-receiver safe; a nil cache behaves as a permanent miss.
type IdentityCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewIdentityCache constructs a Redis-backed identity cache.
func NewIdentityCache(client redis.UniversalClient, ttl time.Duration) *IdentityCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &IdentityCache{client: client, ttl: ttl}
}

func identityKey(id uuid.UUID) string {
	return "identity:" + id.String()
}

// Get loads a cached user. A miss or decode failure returns (nil, nil).
func (c *IdentityCache) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if c == nil {
		return nil, nil
	}
	raw, err := c.client.Get(ctx, identityKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("load identity: %w", err)
	}
	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		// Treat an unreadable entry as a miss and drop it.
		_ = c.client.Del(ctx, identityKey(id)).Err()
		return nil, nil
	}
	return &user, nil
}

// Set stores a resolved user with the configured TTL. The password hash is
// excluded from the User JSON encoding, so it never lands in Redis.
func (c *IdentityCache) Set(ctx context.Context, user domain.User) error {
	if c == nil {
		return nil
	}
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	if err := c.client.Set(ctx, identityKey(user.ID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("persist identity: %w", err)
	}
	return nil
}

// Invalidate removes a cached user after a mutation or deletion.
func (c *IdentityCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	if c == nil {
		return nil
	}
	if err := c.client.Del(ctx, identityKey(id)).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("invalidate identity: %w", err)
	}
	return nil
}
