package drafts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "memoria:draft:"

// RedisCache keeps snapshots in redis so several machines can resume the
// same session. Entries expire after ttl; zero keeps them forever.
type RedisCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisCache(rdb redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) Load(ctx context.Context, key string) (*Snapshot, error) {
	b, err := c.rdb.Get(ctx, redisPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get draft[%s]: %w", key, err)
	}
	return decode(b)
}

func (c *RedisCache) Store(ctx context.Context, key string, s Snapshot) error {
	b, err := encode(s)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, redisPrefix+key, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set draft[%s]: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, redisPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del draft[%s]: %w", key, err)
	}
	return nil
}
