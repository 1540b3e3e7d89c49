package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/config"
	"github.com/mikey/scam-guard/internal/core"
	"github.com/mikey/scam-guard/internal/factory"
	"github.com/mikey/scam-guard/internal/heuristics"
	"github.com/mikey/scam-guard/internal/logging"
)

// CLIOptions are the global command line flags that shape the container.
type CLIOptions struct {
	ConfigFile string
	Provider   string
	Verbose    bool
	JSONLog    bool
}

// BuildCLIContainer creates the container for one-shot analyses. It has no
// result cache, history, metrics or transports.
func BuildCLIContainer(opts *CLIOptions) (*dig.Container, error) {
	container := dig.New()

	if err := container.Provide(func() *CLIOptions { return opts }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(opts *CLIOptions) (*zap.Logger, error) {
		return logging.InitConsoleLogger(opts.Verbose, opts.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(opts *CLIOptions, logger *zap.Logger) (*config.Config, error) {
		var cfg *config.Config
		if opts.ConfigFile != "" {
			loaded, err := config.Load(opts.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", loaded.ConfigFileUsed()))
			cfg = loaded
		} else {
			cfg = config.NewFromViper(config.NewEmptyViper())
		}

		if opts.Provider != "" {
			cfg.Set("llm.provider", opts.Provider)
		}
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	if err := provideFactories(container); err != nil {
		return nil, err
	}

	if err := container.Provide(func(f *factory.GeneratorFactory) core.TextGenerator {
		return f.CreateGeneratorOrFallback()
	}); err != nil {
		return nil, err
	}

	if err := container.Provide(func(
		scorer *heuristics.Scorer,
		gen core.TextGenerator,
		f *factory.GeneratorFactory,
		logger *zap.Logger,
	) *core.AnalysisService {
		dispatcher := core.NewDispatcher(gen, nil, f.CreateLimiter(), nil, f.DispatcherConfig(), logger)
		return core.NewAnalysisService(scorer, dispatcher, nil, nil, core.DefaultServiceConfig, logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
