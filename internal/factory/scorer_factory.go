package factory

import (
	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/config"
	"github.com/mikey/scam-guard/internal/heuristics"
	"github.com/mikey/scam-guard/internal/indicators"
)

// ScorerFactory creates the heuristic scorer from heuristics.*.
type ScorerFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

func NewScorerFactory(cfg *config.Config, logger *zap.Logger) *ScorerFactory {
	return &ScorerFactory{
		cfg:    cfg,
		logger: logger,
	}
}

func (f *ScorerFactory) CreateScorer() *heuristics.Scorer {
	h := f.cfg.GetHeuristics()
	opts := heuristics.Options{
		ExtraSenderDomains: h.ExtraSenderDomains,
		ExtraWebsiteHosts:  h.ExtraWebsiteHosts,
		ExtraNumberMarkers: h.ExtraNumberMarkers,
		Image: heuristics.ImageLimits{
			MinWidth:  h.ImageMinWidth,
			MinHeight: h.ImageMinHeight,
			MinBytes:  h.ImageMinBytes,
		},
	}

	if n := len(opts.ExtraSenderDomains) + len(opts.ExtraWebsiteHosts) + len(opts.ExtraNumberMarkers); n > 0 {
		f.logger.Info("Loaded extra deny-list entries", zap.Int("count", n))
	}
	return heuristics.NewScorer(indicators.New(), opts, f.logger)
}
