package history

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// MySQLHistory stores records in MySQL. The DSN must include parseTime=true.
type MySQLHistory struct {
	*sqlStore
}

func NewMySQLHistory(dsn string, logger *zap.Logger, opts Options) (*MySQLHistory, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS analysis_history (
			id CHAR(36) PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL,
			channel VARCHAR(32) NOT NULL,
			input_text MEDIUMTEXT NOT NULL,
			result MEDIUMTEXT NOT NULL,
			risk_level VARCHAR(16) NOT NULL DEFAULT '',
			created_at DATETIME(6) NOT NULL,
			INDEX idx_history_user_created (user_id, created_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	logger.Info("Using MySQL history store")
	return &MySQLHistory{sqlStore: newSQLStore("mysql", db, questionMarkQueries, opts, logger)}, nil
}
