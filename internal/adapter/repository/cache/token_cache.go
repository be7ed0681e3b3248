package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mamatela/restaurant-review-back-end/internal/platform/logger"
)

const dialTimeout = 5 * time.Second

// NewRedisClient connects to Redis and verifies the connection with a ping.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	if _, err := client.Ping(dialCtx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis (ping failed): %w", err)
	}
	return client, nil
}

// TokenCache keeps hot refresh-token lookups out of MongoDB. A cache miss is
// not an error; the caller falls back to the persistent store.
type TokenCache struct {
	client *redis.Client
	logger *logger.Logger
}

func NewTokenCache(client *redis.Client, log *logger.Logger) *TokenCache {
	return &TokenCache{
		client: client,
		logger: log.Named("TokenCache"),
	}
}

func tokenKey(token string) string {
	// The signed string is long; the last segment (the signature) is unique.
	suffix := token
	if len(suffix) > 43 {
		suffix = suffix[len(suffix)-43:]
	}
	return "token:" + suffix
}

// CacheToken stores a token-to-user binding with a TTL matching the token's
// remaining lifetime.
func (c *TokenCache) CacheToken(ctx context.Context, token string, userID int64, expires time.Time) {
	ttl := time.Until(expires)
	if ttl <= 0 {
		return
	}
	if err := c.client.Set(ctx, tokenKey(token), userID, ttl).Err(); err != nil {
		c.logger.Warn("Failed to cache token", zap.Error(err))
	}
}

// GetToken returns the cached user id for a token, or (0, false) on a miss.
func (c *TokenCache) GetToken(ctx context.Context, token string) (int64, bool) {
	userID, err := c.client.Get(ctx, tokenKey(token)).Int64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Failed to read token from cache", zap.Error(err))
		}
		return 0, false
	}
	return userID, true
}

// InvalidateToken drops a token from the cache (rotation, logout).
func (c *TokenCache) InvalidateToken(ctx context.Context, token string) {
	if err := c.client.Del(ctx, tokenKey(token)).Err(); err != nil {
		c.logger.Warn("Failed to invalidate cached token", zap.Error(err))
	}
}
