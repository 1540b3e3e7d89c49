package factory

import (
	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/adapters/filter"
	"github.com/mikey/scam-guard/internal/config"
	"github.com/mikey/scam-guard/internal/core"
	"github.com/mikey/scam-guard/internal/ports"
)

// FilterFactory creates the SMTP intake.
type FilterFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.AnalysisService
}

func NewFilterFactory(cfg *config.Config, logger *zap.Logger, service *core.AnalysisService) *FilterFactory {
	return &FilterFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreateIntake returns nil when smtp.enabled is false.
func (f *FilterFactory) CreateIntake() ports.Intake {
	smtpCfg := f.cfg.GetSMTP()
	if !smtpCfg.Enabled {
		return nil
	}
	return filter.NewSMTPFilter(f.service, smtpCfg, f.logger)
}
