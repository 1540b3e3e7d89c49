package gemini

import (
	"errors"

	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/config"
	"github.com/mikey/scam-guard/internal/core"
)

var ErrMissingAPIKey = errors.New("gemini.api_key is required")

type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{cfg: cfg, logger: logger}
}

func (f *Factory) CreateGenerator() (core.TextGenerator, error) {
	geminiCfg := f.cfg.GetGemini()
	if geminiCfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	f.logger.Info("Using Gemini generator", zap.String("model", geminiCfg.ModelName))

	client, err := NewGeminiClient(
		geminiCfg.APIKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.TopP,
		f.logger,
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}
