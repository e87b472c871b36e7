package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"portflow/internal/clearance/models"
)

const cacheKeyPrefix = "gw:result:"

// CacheKey builds the query-cache key for one (system, operation, case).
func CacheKey(system models.SystemID, operation, caseID string) string {
	return fmt.Sprintf("%s%s:%s:%s", cacheKeyPrefix, system, operation, caseID)
}

// RedisQueryCache holds recent gateway results in Redis so status reads can
// serve fresh-enough data without hitting the external system. Entries expire
// at the staleness threshold; a miss means the caller must query fresh.
type RedisQueryCache struct {
	client *redis.Client
}

func NewRedisQueryCache(client *redis.Client) *RedisQueryCache {
	return &RedisQueryCache{client: client}
}

func (c *RedisQueryCache) Get(ctx context.Context, key string) (models.ExternalQueryResult, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.ExternalQueryResult{}, false, nil
	}
	if err != nil {
		return models.ExternalQueryResult{}, false, fmt.Errorf("query cache get: %w", err)
	}
	var res models.ExternalQueryResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return models.ExternalQueryResult{}, false, fmt.Errorf("query cache decode: %w", err)
	}
	return res, true, nil
}

func (c *RedisQueryCache) Put(ctx context.Context, key string, result models.ExternalQueryResult, ttl time.Duration) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("query cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("query cache put: %w", err)
	}
	return nil
}

// MemoryQueryCache is the single-process equivalent for tests and Redis-less
// deployments.
type MemoryQueryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryCacheEntry
	now     func() time.Time
}

type memoryCacheEntry struct {
	result    models.ExternalQueryResult
	expiresAt time.Time
}

func NewMemoryQueryCache() *MemoryQueryCache {
	return &MemoryQueryCache{
		entries: make(map[string]memoryCacheEntry),
		now:     time.Now,
	}
}

func (c *MemoryQueryCache) Get(_ context.Context, key string) (models.ExternalQueryResult, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expiresAt) {
		return models.ExternalQueryResult{}, false, nil
	}
	return entry.result, true, nil
}

func (c *MemoryQueryCache) Put(_ context.Context, key string, result models.ExternalQueryResult, ttl time.Duration) error {
	c.mu.Lock()
	c.entries[key] = memoryCacheEntry{result: result, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}
