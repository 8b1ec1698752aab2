package student

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultCacheTTL = time.Hour

// RedisCache shares resolved students between kiosks through redis. Cache
// failures are logged and treated as misses; the resolver falls through to
// the store.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisCache builds a cache on the given client.
func NewRedisCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisCache{client: client, ttl: ttl, log: log}
}

func cacheKey(tag string) string { return "students:tag:" + tag }

// GetByTag returns the cached student for a tag.
func (c *RedisCache) GetByTag(ctx context.Context, tag string) (*Student, bool) {
	b, err := c.client.Get(ctx, cacheKey(tag)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("student cache get failed", zap.String("tag", tag), zap.Error(err))
		}
		return nil, false
	}
	var s Student
	if err := json.Unmarshal(b, &s); err != nil {
		c.log.Warn("student cache entry corrupt, evicting", zap.String("tag", tag), zap.Error(err))
		c.Evict(ctx, tag)
		return nil, false
	}
	if !s.Active() {
		return nil, false
	}
	return &s, true
}

// Upsert stores the student under its tag with the configured TTL.
func (c *RedisCache) Upsert(ctx context.Context, s Student) {
	if s.RFIDTag == "" {
		return
	}
	b, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(s.RFIDTag), b, c.ttl).Err(); err != nil {
		c.log.Warn("student cache set failed", zap.String("tag", s.RFIDTag), zap.Error(err))
	}
}

// Evict removes the entry for a tag.
func (c *RedisCache) Evict(ctx context.Context, tag string) {
	if err := c.client.Del(ctx, cacheKey(tag)).Err(); err != nil {
		c.log.Warn("student cache evict failed", zap.String("tag", tag), zap.Error(err))
	}
}
