package openai

import (
	"errors"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/config"
	"github.com/mikey/scam-guard/internal/core"
)

// ErrMissingAPIKey is returned when neither an API key nor a base URL is set.
var ErrMissingAPIKey = errors.New("openai.api_key is required")

type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{cfg: cfg, logger: logger}
}

// CreateGenerator builds a client from the openai.* keys. A base URL without
// a key is allowed for local compatible servers.
func (f *Factory) CreateGenerator() (core.TextGenerator, error) {
	openaiCfg := f.cfg.GetOpenAI()
	if openaiCfg.APIKey == "" && openaiCfg.BaseURL == "" {
		return nil, ErrMissingAPIKey
	}

	clientConfig := openai.DefaultConfig(openaiCfg.APIKey)
	if openaiCfg.BaseURL != "" {
		clientConfig.BaseURL = openaiCfg.BaseURL
	}

	f.logger.Info("Using OpenAI generator",
		zap.String("model", openaiCfg.ModelName),
		zap.String("base_url", clientConfig.BaseURL))

	return NewOpenAIClient(
		openai.NewClientWithConfig(clientConfig),
		openaiCfg.ModelName,
		openaiCfg.MaxTokens,
		openaiCfg.Temperature,
		openaiCfg.TopP,
		f.logger,
	), nil
}
