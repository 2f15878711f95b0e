package rediscache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/redact"
	"github.com/phrazzld/todo-api/internal/store"
)

// DefaultIdentityTTL is how long a resolved identity stays cached.
const DefaultIdentityTTL = 10 * time.Minute

// IdentityKey returns the cache key holding a user's telegram ID.
func IdentityKey(userID int64) string {
	return "telegram_identity:" + strconv.FormatInt(userID, 10)
}

// IdentityCache is a read-through cache over an IdentityStore.
// Misses are not cached, and Redis failures fall back to the store.
type IdentityCache struct {
	client Client
	next   store.IdentityStore
	ttl    time.Duration
	logger *slog.Logger
}

var _ store.IdentityStore = (*IdentityCache)(nil)

// NewIdentityCache wraps next with a Redis cache.
func NewIdentityCache(client Client, next store.IdentityStore, ttl time.Duration, logger *slog.Logger) *IdentityCache {
	if ttl <= 0 {
		ttl = DefaultIdentityTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IdentityCache{
		client: client,
		next:   next,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "identity_cache")),
	}
}

// ResolveIdentity implements store.IdentityResolver.
func (c *IdentityCache) ResolveIdentity(ctx context.Context, userID int64) (domain.MessagingIdentity, error) {
	key := IdentityKey(userID)

	val, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		telegramID, perr := strconv.ParseInt(val, 10, 64)
		if perr == nil {
			return domain.MessagingIdentity{UserID: userID, TelegramID: telegramID}, nil
		}
		c.logger.Warn("discarding malformed cached identity", "key", key)
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("identity cache read failed, falling back to store",
			"key", key,
			"error", redact.Error(err))
	}

	identity, err := c.next.ResolveIdentity(ctx, userID)
	if err != nil {
		return domain.MessagingIdentity{}, err
	}

	if err := c.client.Set(ctx, key, strconv.FormatInt(identity.TelegramID, 10), c.ttl).Err(); err != nil {
		c.logger.Warn("identity cache write failed",
			"key", key,
			"error", redact.Error(err))
	}
	return identity, nil
}

// LinkTelegram updates the store and drops the cached entry.
func (c *IdentityCache) LinkTelegram(ctx context.Context, userID, telegramID int64) error {
	if err := c.next.LinkTelegram(ctx, userID, telegramID); err != nil {
		return err
	}
	if err := c.client.Del(ctx, IdentityKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached identity for user %d: %w", userID, err)
	}
	return nil
}
