package factory

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mikey/scam-guard/internal/adapters/bedrock"
	"github.com/mikey/scam-guard/internal/adapters/gemini"
	"github.com/mikey/scam-guard/internal/adapters/openai"
	"github.com/mikey/scam-guard/internal/config"
	"github.com/mikey/scam-guard/internal/core"
)

// ProviderNone disables the generative path.
const ProviderNone = "none"

// GeneratorFactory creates the text generator and the settings of the
// dispatcher around it.
type GeneratorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

func NewGeneratorFactory(cfg *config.Config, logger *zap.Logger) *GeneratorFactory {
	return &GeneratorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateGenerator creates a generator for llm.provider. Provider "none" (or
// empty) returns a nil generator and no error.
func (f *GeneratorFactory) CreateGenerator() (core.TextGenerator, error) {
	provider := strings.ToLower(strings.TrimSpace(f.cfg.GetLLM().Provider))

	switch provider {
	case "", ProviderNone:
		f.logger.Info("No generator configured, free-form analysis uses the rule-based classifier")
		return nil, nil
	case "bedrock":
		return bedrock.NewFactory(f.cfg, f.logger).CreateGenerator()
	case "openai":
		return openai.NewFactory(f.cfg, f.logger).CreateGenerator()
	case "gemini":
		return gemini.NewFactory(f.cfg, f.logger).CreateGenerator()
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// CreateGeneratorOrFallback is CreateGenerator for long-running processes: a
// provider that fails to initialize is logged and the service runs on the
// fallback path only.
func (f *GeneratorFactory) CreateGeneratorOrFallback() core.TextGenerator {
	gen, err := f.CreateGenerator()
	if err != nil {
		f.logger.Warn("Generator unavailable, using fallback only",
			zap.String("provider", f.cfg.GetLLM().Provider),
			zap.Error(err))
		return nil
	}
	return gen
}

// CreateLimiter returns a token bucket for generator calls, or nil when
// llm.rate_limit is not positive.
func (f *GeneratorFactory) CreateLimiter() core.Limiter {
	llmCfg := f.cfg.GetLLM()
	if llmCfg.RateLimit <= 0 {
		return nil
	}
	burst := llmCfg.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(llmCfg.RateLimit), burst)
}

// DispatcherConfig maps llm.* and cache.* onto the dispatcher settings. The
// cache TTL is zero when caching is disabled.
func (f *GeneratorFactory) DispatcherConfig() core.DispatcherConfig {
	llmCfg := f.cfg.GetLLM()
	cacheCfg := f.cfg.GetCache()

	dc := core.DispatcherConfig{
		Timeout:        llmCfg.Timeout,
		MaxPromptBytes: llmCfg.MaxPromptBytes,
	}
	if cacheCfg.Enabled {
		dc.CacheTTL = cacheCfg.TTL
	}
	return dc
}
