package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteHistory stores records in a local SQLite file.
type SQLiteHistory struct {
	*sqlStore
}

// NewSQLiteHistory opens (or creates) the database at dbPath.
func NewSQLiteHistory(dbPath string, logger *zap.Logger, opts Options) (*SQLiteHistory, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS analysis_history (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			channel TEXT NOT NULL,
			input_text TEXT NOT NULL,
			result TEXT NOT NULL,
			risk_level TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_history_user_created ON analysis_history(user_id, created_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	logger.Info("Using SQLite history store", zap.String("path", dbPath))
	return &SQLiteHistory{sqlStore: newSQLStore("sqlite", db, questionMarkQueries, opts, logger)}, nil
}
