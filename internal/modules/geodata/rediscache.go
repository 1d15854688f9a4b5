// README: Redis-backed geodata cache (shared across processes).
package geodata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyTTL is the Redis expiry, not the freshness window: entries outlive
// the freshness TTL so stale data can still be served optimistically.
const redisKeyTTL = 24 * time.Hour

type RedisCache struct {
	redis *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{redis: client}
}

func redisKey(key Key) string {
	return fmt.Sprintf("geodata:%s:%.3f:%.3f", key.Kind, key.Lat, key.Lng)
}

func (c *RedisCache) Get(ctx context.Context, key Key) (Entry, bool, error) {
	val, err := c.redis.Get(ctx, redisKey(key)).Result()
	if err == redis.Nil {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	var e Entry
	if err := json.Unmarshal([]byte(val), &e); err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func (c *RedisCache) Put(ctx context.Context, e Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, redisKey(e.Key), b, redisKeyTTL).Err()
}
