// SPDX-License-Identifier: MIT
package cache

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/apimgr/metaseek/internal/config"
)

// Cache stores opaque byte payloads behind string keys with a
// per-entry TTL, independent of what the caller serializes into them
// (search result pages, autocomplete suggestions, ...).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Clear(ctx context.Context)
	Size(ctx context.Context) int
	Close() error
}

// New builds a Cache from a config.CacheConfig, wiring a real Redis
// client when cfg.Type is "redis" and an in-process TTL map
// otherwise.
func New(cfg config.CacheConfig, redisCfg *config.RedisConfig) Cache {
	ttl := time.Duration(cfg.TTL) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	if cfg.Type == "redis" && redisCfg != nil {
		return newRedisCache(redisCfg, cfg.Prefix, ttl)
	}
	return newMemoryCache(ttl)
}

// memoryCache is an in-process TTL cache guarded by a single mutex,
// with a background sweep to bound its size between Set calls.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	cancel  context.CancelFunc
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func newMemoryCache(ttl time.Duration) *memoryCache {
	ctx, cancel := context.WithCancel(context.Background())
	c := &memoryCache{entries: make(map[string]memoryEntry), ttl: ttl, cancel: cancel}
	go c.sweep(ctx)
	return c
}

func (c *memoryCache) sweep(ctx context.Context) {
	ticker := time.NewTicker(c.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for k, e := range c.entries {
				if now.After(e.expiresAt) {
					delete(c.entries, k)
				}
			}
			c.mu.Unlock()
		}
	}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
}

func (c *memoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *memoryCache) Clear(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryEntry)
}

func (c *memoryCache) Size(_ context.Context) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *memoryCache) Close() error {
	c.cancel()
	return nil
}

// redisCache is backed by a real go-redis client, namespacing every
// key under prefix so multiple apps can share one server.
type redisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func newRedisCache(cfg *config.RedisConfig, prefix string, ttl time.Duration) *redisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &redisCache{client: client, prefix: prefix, ttl: ttl}
}

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (r *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = r.ttl
	}
	r.client.Set(ctx, r.prefix+key, value, ttl)
}

func (r *redisCache) Delete(ctx context.Context, key string) {
	r.client.Del(ctx, r.prefix+key)
}

func (r *redisCache) Clear(ctx context.Context) {
	keys, err := r.client.Keys(ctx, r.prefix+"*").Result()
	if err != nil || len(keys) == 0 {
		return
	}
	r.client.Del(ctx, keys...)
}

func (r *redisCache) Size(ctx context.Context) int {
	keys, err := r.client.Keys(ctx, r.prefix+"*").Result()
	if err != nil {
		return 0
	}
	return len(keys)
}

func (r *redisCache) Close() error {
	return r.client.Close()
}

// Key builds a cache key for a search query page, independent of
// engine ordering.
func Key(query string, page int, engines []string) string {
	sorted := append([]string(nil), engines...)
	sort.Strings(sorted)
	key := query + "|" + strconv.Itoa(page)
	for _, e := range sorted {
		key += "|" + e
	}
	return key
}
