package factory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/adapters/cache"
	"github.com/mikey/scam-guard/internal/config"
	"github.com/mikey/scam-guard/internal/core"
)

// CacheFactory creates the result cache for generated analyses.
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateResultCache returns nil when cache.enabled is false.
func (f *CacheFactory) CreateResultCache(ctx context.Context) (core.ResultCache, error) {
	cacheCfg := f.cfg.GetCache()
	if !cacheCfg.Enabled {
		f.logger.Info("Result cache disabled")
		return nil, nil
	}

	switch cacheCfg.Type {
	case "memory":
		return cache.NewMemoryCache(f.logger, cacheCfg.TTL, cacheCfg.CleanupFrequency), nil
	case "redis":
		c, err := cache.NewRedisCache(ctx, cacheCfg.Redis, f.logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheCfg.Type)
	}
}

// IsCacheEnabled returns whether caching is enabled
func (f *CacheFactory) IsCacheEnabled() bool {
	return f.cfg.GetCache().Enabled
}
