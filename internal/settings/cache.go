package settings

import (
	"context"
	"encoding/json"
	"errors"
	"padelhub/pkg/logger"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "padelhub:settings"

type Cache interface {
	Get(ctx context.Context) (Settings, bool)
	Set(ctx context.Context, s Settings)
	Invalidate(ctx context.Context)
}

// NewCache prefers Redis so every replica sees an update at once, and falls
// back to a process-local cache when no Redis client is configured.
func NewCache(rdb *redis.Client, ttl time.Duration, log *logger.Logger) Cache {
	if rdb == nil {
		return NewMemoryCache(ttl)
	}
	return &redisCache{rdb: rdb, ttl: ttl, log: log}
}

type redisCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

func (c *redisCache) Get(ctx context.Context) (Settings, bool) {
	data, err := c.rdb.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("Settings cache read failed", "error", err)
		}
		return Settings{}, false
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		c.log.Warn("Settings cache entry is corrupt", "error", err)
		return Settings{}, false
	}
	return s, true
}

func (c *redisCache) Set(ctx context.Context, s Settings) {
	data, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey, data, c.ttl).Err(); err != nil {
		c.log.Warn("Settings cache write failed", "error", err)
	}
}

func (c *redisCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, cacheKey).Err(); err != nil {
		c.log.Warn("Settings cache invalidation failed", "error", err)
	}
}

type MemoryCache struct {
	mu        sync.RWMutex
	value     Settings
	expiresAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context) (Settings, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.expiresAt.IsZero() || c.now().After(c.expiresAt) {
		return Settings{}, false
	}
	return c.value, true
}

func (c *MemoryCache) Set(_ context.Context, s Settings) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = s
	c.expiresAt = c.now().Add(c.ttl)
}

func (c *MemoryCache) Invalidate(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.expiresAt = time.Time{}
}
