package cache

import (
	"context"
	"errors"
	"time"

	"causalgate/internal"
	apperrors "causalgate/internal/errors"
	"causalgate/ports"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a Redis entry lives
const DefaultTTL = 24 * time.Hour

// RedisCache shares analyses across processes. Redis failures degrade to
// cache misses and are logged, never returned.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *internal.Logger
}

var _ ports.AnalysisCache = (*RedisCache)(nil)

// NewRedisCache connects to redisURL and verifies the connection
func NewRedisCache(ctx context.Context, redisURL string, logger *internal.Logger) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, apperrors.ConfigInvalid("invalid REDIS_URL: " + err.Error())
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, apperrors.ExternalServiceError("redis", err)
	}
	return &RedisCache{client: client, prefix: "causalgate:", ttl: DefaultTTL, logger: logger.With("cache")}, nil
}

// Get reads key; errors other than a miss are logged
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	v, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("get %s: %v", key, err)
		}
		return nil, false
	}
	return v, true
}

// Set writes key with the cache TTL
func (c *RedisCache) Set(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, c.prefix+key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("set %s: %v", key, err)
	}
}

// Evict deletes key
func (c *RedisCache) Evict(ctx context.Context, key string) {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		c.logger.Warn("evict %s: %v", key, err)
	}
}

// Close releases the client
func (c *RedisCache) Close() error {
	return c.client.Close()
}
