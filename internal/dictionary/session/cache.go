package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/hareeshbabu82ns/devhub-search/internal/dictionary/types"
	"github.com/hareeshbabu82ns/devhub-search/internal/pkg/redis"
)

// FetchFunc loads a result envelope on cache miss
type FetchFunc func(ctx context.Context) (*types.ResultEnvelope, error)

// ResponseCache caches search result envelopes keyed by normalized
// request. Implementations must collapse concurrent misses for the
// same key into a single fetch.
type ResponseCache interface {
	GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) (*types.ResultEnvelope, error)
	Invalidate(ctx context.Context, key string)
}

// RedisCache backs the response cache with Redis. A Redis outage
// degrades to fetching directly rather than failing the search.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
	group  singleflight.Group
}

// NewRedisCache creates a Redis-backed response cache
func NewRedisCache(client *redis.Client, logger *zap.Logger) *RedisCache {
	return &RedisCache{client: client, logger: logger}
}

func (c *RedisCache) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) (*types.ResultEnvelope, error) {
	raw, err := c.client.Get(ctx, key)
	if err == nil {
		var envelope types.ResultEnvelope
		if jsonErr := json.Unmarshal([]byte(raw), &envelope); jsonErr == nil {
			return &envelope, nil
		}
		// corrupt entry, drop it and refetch
		c.Invalidate(ctx, key)
	} else if !redis.IsNil(err) {
		c.logger.Warn("response cache read failed, falling through",
			zap.String("key", key),
			zap.Error(err))
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		envelope, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		if raw, jsonErr := json.Marshal(envelope); jsonErr == nil {
			if setErr := c.client.Set(ctx, key, string(raw), ttl); setErr != nil {
				c.logger.Warn("response cache write failed",
					zap.String("key", key),
					zap.Error(setErr))
			}
		}
		return envelope, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.ResultEnvelope), nil
}

func (c *RedisCache) Invalidate(ctx context.Context, key string) {
	if _, err := c.client.Del(ctx, key); err != nil {
		c.logger.Warn("response cache invalidation failed",
			zap.String("key", key),
			zap.Error(err))
	}
}

type memoryEntry struct {
	envelope  *types.ResultEnvelope
	expiresAt time.Time
}

// MemoryCache is an in-process ResponseCache for tests and for
// deployments running without Redis.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	group   singleflight.Group
}

// NewMemoryCache creates an in-memory response cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

func (c *MemoryCache) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) (*types.ResultEnvelope, error) {
	if envelope, ok := c.lookup(key); ok {
		return envelope, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if envelope, ok := c.lookup(key); ok {
			return envelope, nil
		}

		envelope, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = memoryEntry{envelope: envelope, expiresAt: time.Now().Add(ttl)}
		c.mu.Unlock()
		return envelope, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.ResultEnvelope), nil
}

func (c *MemoryCache) Invalidate(_ context.Context, key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Contains reports whether a live entry exists for the key
func (c *MemoryCache) Contains(key string) bool {
	_, ok := c.lookup(key)
	return ok
}

func (c *MemoryCache) lookup(key string) (*types.ResultEnvelope, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		// evict on sight so dead keys do not accumulate
		delete(c.entries, key)
		return nil, false
	}
	return entry.envelope, true
}
