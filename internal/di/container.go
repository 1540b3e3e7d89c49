// Package di wires the application with go.uber.org/dig.
package di

import (
	"context"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/api"
	"github.com/mikey/scam-guard/internal/config"
	"github.com/mikey/scam-guard/internal/core"
	"github.com/mikey/scam-guard/internal/factory"
	"github.com/mikey/scam-guard/internal/heuristics"
	"github.com/mikey/scam-guard/internal/logging"
	"github.com/mikey/scam-guard/internal/metrics"
	"github.com/mikey/scam-guard/internal/ports"
)

// BuildContainer creates the server container. An empty configPath searches
// the default config locations.
func BuildContainer(configPath string) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() (*config.Config, error) {
		return config.Load(configPath)
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := container.Provide(metrics.New); err != nil {
		return nil, err
	}

	if err := provideFactories(container); err != nil {
		return nil, err
	}

	// Generator: a provider that cannot start leaves the fallback path only.
	if err := container.Provide(func(f *factory.GeneratorFactory) core.TextGenerator {
		return f.CreateGeneratorOrFallback()
	}); err != nil {
		return nil, err
	}

	if err := container.Provide(func(f *factory.CacheFactory) (core.ResultCache, error) {
		return f.CreateResultCache(context.Background())
	}); err != nil {
		return nil, err
	}

	if err := container.Provide(func(f *factory.HistoryFactory) (core.HistoryRecorder, error) {
		return f.CreateHistory(context.Background())
	}); err != nil {
		return nil, err
	}

	if err := container.Provide(func(
		gen core.TextGenerator,
		cache core.ResultCache,
		f *factory.GeneratorFactory,
		m *metrics.Metrics,
		logger *zap.Logger,
	) *core.Dispatcher {
		return core.NewDispatcher(gen, cache, f.CreateLimiter(), m, f.DispatcherConfig(), logger)
	}); err != nil {
		return nil, err
	}

	if err := container.Provide(func(
		scorer *heuristics.Scorer,
		dispatcher *core.Dispatcher,
		history core.HistoryRecorder,
		m *metrics.Metrics,
		f *factory.HistoryFactory,
		logger *zap.Logger,
	) *core.AnalysisService {
		return core.NewAnalysisService(scorer, dispatcher, history, m, f.ServiceConfig(), logger)
	}); err != nil {
		return nil, err
	}

	// Register transports
	if err := container.Provide(func(cfg *config.Config, svc *core.AnalysisService, m *metrics.Metrics, logger *zap.Logger) *api.Server {
		return api.NewServer(cfg.GetServer(), svc, m, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.FilterFactory) ports.Intake {
		return f.CreateIntake()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideFactories registers the factories shared by both containers.
func provideFactories(container *dig.Container) error {
	for _, ctor := range []interface{}{
		factory.NewGeneratorFactory,
		factory.NewCacheFactory,
		factory.NewHistoryFactory,
		factory.NewScorerFactory,
		factory.NewFilterFactory,
	} {
		if err := container.Provide(ctor); err != nil {
			return err
		}
	}

	return container.Provide(func(f *factory.ScorerFactory) *heuristics.Scorer {
		return f.CreateScorer()
	})
}
