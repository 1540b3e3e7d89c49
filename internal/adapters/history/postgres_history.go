package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/core"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS analysis_history (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		channel TEXT NOT NULL,
		input_text TEXT NOT NULL,
		result TEXT NOT NULL,
		risk_level TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_history_user_created ON analysis_history (user_id, created_at DESC);
`

// PostgresHistory stores records in PostgreSQL through a pgx pool.
type PostgresHistory struct {
	pool   *pgxpool.Pool
	opts   Options
	logger *zap.Logger
	stopCh chan struct{}
}

// NewPostgresHistory connects, verifies the connection and ensures the schema.
func NewPostgresHistory(ctx context.Context, dsn string, logger *zap.Logger, opts Options) (*PostgresHistory, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres DSN: %w", err)
	}
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	h := &PostgresHistory{pool: pool, opts: opts, logger: logger, stopCh: make(chan struct{})}
	if opts.Retention > 0 && opts.CleanupFrequency > 0 {
		go h.startCleanupTask()
	}

	logger.Info("Using PostgreSQL history store", zap.String("host", poolCfg.ConnConfig.Host))
	return h, nil
}

func (h *PostgresHistory) Record(ctx context.Context, rec *core.HistoryRecord) error {
	query := `
		INSERT INTO analysis_history (id, user_id, channel, input_text, result, risk_level, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := h.pool.Exec(ctx, query,
		rec.ID,
		rec.UserID,
		string(rec.Channel),
		rec.InputText,
		rec.Result,
		rec.RiskTier,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert history record: %w", err)
	}
	return nil
}

func (h *PostgresHistory) Recent(ctx context.Context, userID string, limit int) ([]*core.HistoryRecord, error) {
	query := `
		SELECT id, user_id, channel, input_text, result, risk_level, created_at
		FROM analysis_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := h.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	records := make([]*core.HistoryRecord, 0, limit)
	for rows.Next() {
		var (
			rec     core.HistoryRecord
			channel string
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &channel, &rec.InputText, &rec.Result, &rec.RiskTier, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		rec.Channel = core.Channel(channel)
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return records, nil
}

func (h *PostgresHistory) Purge(ctx context.Context) error {
	if h.opts.Retention <= 0 {
		return nil
	}
	tag, err := h.pool.Exec(ctx, `DELETE FROM analysis_history WHERE created_at < $1`, time.Now().Add(-h.opts.Retention))
	if err != nil {
		return fmt.Errorf("failed to purge history: %w", err)
	}
	h.logger.Debug("Purged expired history records", zap.String("store", "postgres"), zap.Int64("count", tag.RowsAffected()))
	return nil
}

func (h *PostgresHistory) startCleanupTask() {
	ticker := time.NewTicker(h.opts.CleanupFrequency)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := h.Purge(context.Background()); err != nil {
				h.logger.Error("Failed to purge history", zap.String("store", "postgres"), zap.Error(err))
			}
		case <-h.stopCh:
			return
		}
	}
}

func (h *PostgresHistory) Stop() {
	close(h.stopCh)
	h.pool.Close()
}
