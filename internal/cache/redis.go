package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"socialhub/internal/config"
)

// ErrCacheDisabled is returned when no Redis address is configured.
var ErrCacheDisabled = errors.New("cache is disabled")

const revokedTokenPrefix = "session:revoked:"

// Cache wraps the Redis client. A nil *Cache is valid and behaves as disabled.
type Cache struct {
	client *redis.Client
}

// New connects to Redis. It returns (nil, nil) when Redis is not configured.
func New(ctx context.Context, cfg config.Redis, logger *zap.Logger) (*Cache, error) {
	if !cfg.Enabled() {
		logger.Info("Redis cache disabled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established", zap.String("addr", cfg.Addr))

	return &Cache{client: client}, nil
}

// RevokeToken marks a session token id as revoked until ttl elapses.
func (c *Cache) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, revokedKey(tokenID), 1, ttl).Err()
}

func (c *Cache) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	if c == nil || c.client == nil {
		return false, ErrCacheDisabled
	}
	count, err := c.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (c *Cache) Health(ctx context.Context) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func revokedKey(tokenID string) string {
	return revokedTokenPrefix + tokenID
}
