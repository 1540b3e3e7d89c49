package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// MemoryCache keeps generated analyses in process. Expired entries are
// purged every cleanupFreq.
type MemoryCache struct {
	cache  *gocache.Cache
	logger *zap.Logger
}

func NewMemoryCache(logger *zap.Logger, defaultTTL, cleanupFreq time.Duration) *MemoryCache {
	logger.Info("Using in-memory result cache",
		zap.Duration("ttl", defaultTTL),
		zap.Duration("cleanup_frequency", cleanupFreq))

	return &MemoryCache{
		cache:  gocache.New(defaultTTL, cleanupFreq),
		logger: logger,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	val, found := c.cache.Get(key)
	if !found {
		return "", false, nil
	}
	text, ok := val.(string)
	return text, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.cache.Set(key, value, ttl)
	return nil
}

// Len reports the number of stored entries, including expired ones not yet purged.
func (c *MemoryCache) Len() int {
	return c.cache.ItemCount()
}

// Stop drops all entries.
func (c *MemoryCache) Stop() {
	c.cache.Flush()
}
