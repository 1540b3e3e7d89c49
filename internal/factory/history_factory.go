package factory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/adapters/history"
	"github.com/mikey/scam-guard/internal/config"
	"github.com/mikey/scam-guard/internal/core"
)

// HistoryFactory creates the per-user history store.
type HistoryFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

func NewHistoryFactory(cfg *config.Config, logger *zap.Logger) *HistoryFactory {
	return &HistoryFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateHistory returns nil for history.type "none".
func (f *HistoryFactory) CreateHistory(ctx context.Context) (core.HistoryRecorder, error) {
	historyCfg := f.cfg.GetHistory()
	opts := history.Options{
		Retention:        historyCfg.Retention,
		CleanupFrequency: historyCfg.CleanupFrequency,
	}

	switch historyCfg.Type {
	case "", "none":
		f.logger.Info("Analysis history disabled")
		return nil, nil
	case "sqlite":
		h, err := history.NewSQLiteHistory(historyCfg.SQLitePath, f.logger, opts)
		if err != nil {
			return nil, err
		}
		return h, nil
	case "mysql":
		h, err := history.NewMySQLHistory(historyCfg.MySQLDSN, f.logger, opts)
		if err != nil {
			return nil, err
		}
		return h, nil
	case "postgres":
		h, err := history.NewPostgresHistory(ctx, historyCfg.PostgresDSN, f.logger, opts)
		if err != nil {
			return nil, err
		}
		return h, nil
	default:
		return nil, fmt.Errorf("unsupported history type: %s", historyCfg.Type)
	}
}

// ServiceConfig maps history.* onto the service settings.
func (f *HistoryFactory) ServiceConfig() core.ServiceConfig {
	historyCfg := f.cfg.GetHistory()
	return core.ServiceConfig{
		RecordTimeout: historyCfg.RecordTimeout,
		HistoryLimit:  historyCfg.Limit,
	}
}
