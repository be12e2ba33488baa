package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/auralabs/aura-server/internal/config"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes the Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

func (c *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	return c.Client.Incr(ctx, key).Result()
}

func (c *RedisCache) Decr(ctx context.Context, key string) (int64, error) {
	return c.Client.Decr(ctx, key).Result()
}

// KeyForLikeCount generates the Redis key for a user's incoming-like count.
func (c *RedisCache) KeyForLikeCount(userID uint64) string {
	return fmt.Sprintf("likes:count:%d", userID)
}

func (c *RedisCache) UpdateLikeCount(ctx context.Context, userID uint64, count int64) error {
	// Always refresh TTL when updating
	return c.Client.Set(ctx, c.KeyForLikeCount(userID), count, time.Hour).Err()
}

func (c *RedisCache) GetLikeCount(ctx context.Context, userID uint64) (int64, error) {
	key := c.KeyForLikeCount(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil // cache miss
	} else if err != nil {
		return 0, err
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, time.Hour).Err()
	return strconv.ParseInt(val, 10, 64)
}

// KeyForTrialStart generates the Redis key holding a user's trial start
// timestamp (unix millis). No TTL: trial state persists across runs.
func (c *RedisCache) KeyForTrialStart(userID uint64) string {
	return fmt.Sprintf("trial:start:%d", userID)
}

// GetTrialStart returns the stored trial start time, or ok=false on a miss.
func (c *RedisCache) GetTrialStart(ctx context.Context, userID uint64) (time.Time, bool, error) {
	val, err := c.Client.Get(ctx, c.KeyForTrialStart(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	} else if err != nil {
		return time.Time{}, false, err
	}
	millis, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("corrupt trial start value: %w", err)
	}
	return time.UnixMilli(millis).UTC(), true, nil
}

// SetTrialStartNX stores the trial start time only if no value exists yet,
// and returns the authoritative value. Concurrent first-runs from multiple
// devices therefore agree on a single start timestamp.
func (c *RedisCache) SetTrialStartNX(ctx context.Context, userID uint64, start time.Time) (time.Time, error) {
	key := c.KeyForTrialStart(userID)
	set, err := c.Client.SetNX(ctx, key, start.UnixMilli(), 0).Result()
	if err != nil {
		return time.Time{}, err
	}
	if set {
		return start.UTC(), nil
	}
	stored, _, err := c.GetTrialStart(ctx, userID)
	if err != nil {
		return time.Time{}, err
	}
	return stored, nil
}
