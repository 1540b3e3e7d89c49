// Package history persists per-user analysis records.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/core"
)

// Options control retention of stored records.
type Options struct {
	// Retention is how long records are kept. Zero keeps them forever.
	Retention        time.Duration
	CleanupFrequency time.Duration
}

type queries struct {
	insert string
	recent string
	purge  string
}

// sqlStore is the database/sql implementation shared by the SQLite and
// MySQL backends; they differ only in DDL.
type sqlStore struct {
	name   string
	db     *sql.DB
	q      queries
	opts   Options
	logger *zap.Logger
	stopCh chan struct{}
}

var questionMarkQueries = queries{
	insert: `INSERT INTO analysis_history (id, user_id, channel, input_text, result, risk_level, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
	recent: `SELECT id, user_id, channel, input_text, result, risk_level, created_at
		FROM analysis_history
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?`,
	purge: `DELETE FROM analysis_history WHERE created_at < ?`,
}

func newSQLStore(name string, db *sql.DB, q queries, opts Options, logger *zap.Logger) *sqlStore {
	s := &sqlStore{
		name:   name,
		db:     db,
		q:      q,
		opts:   opts,
		logger: logger,
		stopCh: make(chan struct{}),
	}
	if opts.Retention > 0 && opts.CleanupFrequency > 0 {
		go s.startCleanupTask()
	}
	return s
}

func (s *sqlStore) Record(ctx context.Context, rec *core.HistoryRecord) error {
	_, err := s.db.ExecContext(ctx, s.q.insert,
		rec.ID.String(),
		rec.UserID,
		string(rec.Channel),
		rec.InputText,
		rec.Result,
		rec.RiskTier,
		rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert history record: %w", err)
	}
	return nil
}

func (s *sqlStore) Recent(ctx context.Context, userID string, limit int) ([]*core.HistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.q.recent, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	records := make([]*core.HistoryRecord, 0, limit)
	for rows.Next() {
		var (
			rec     core.HistoryRecord
			id      string
			channel string
		)
		if err := rows.Scan(&id, &rec.UserID, &channel, &rec.InputText, &rec.Result, &rec.RiskTier, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid history record id %q: %w", id, err)
		}
		rec.Channel = core.Channel(channel)
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return records, nil
}

// Purge deletes records older than the retention window.
func (s *sqlStore) Purge(ctx context.Context) error {
	if s.opts.Retention <= 0 {
		return nil
	}
	cutoff := time.Now().Add(-s.opts.Retention).UTC()

	result, err := s.db.ExecContext(ctx, s.q.purge, cutoff)
	if err != nil {
		return fmt.Errorf("failed to purge history: %w", err)
	}

	if n, err := result.RowsAffected(); err != nil {
		s.logger.Warn("Failed to get rows affected during purge", zap.Error(err))
	} else {
		s.logger.Debug("Purged expired history records", zap.String("store", s.name), zap.Int64("count", n))
	}
	return nil
}

func (s *sqlStore) startCleanupTask() {
	ticker := time.NewTicker(s.opts.CleanupFrequency)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Purge(context.Background()); err != nil {
				s.logger.Error("Failed to purge history", zap.String("store", s.name), zap.Error(err))
			}
		case <-s.stopCh:
			return
		}
	}
}

// Stop ends the cleanup task and closes the database.
func (s *sqlStore) Stop() {
	close(s.stopCh)
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close history database", zap.String("store", s.name), zap.Error(err))
	}
}
