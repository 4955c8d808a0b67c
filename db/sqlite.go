package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"ip-lookup/internal/logger"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// ConnectToSQLite initializes and returns a SQLite connection
func ConnectToSQLite(dbPath string) (*sql.DB, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory for SQLite: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=10000")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	logger.L().Info("sqlite_connected", zap.String("path", dbPath))
	return db, nil
}

// InitializeSchema creates the ip_records table if it doesn't exist
func InitializeSchema(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS ip_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ip_address TEXT NOT NULL UNIQUE,
		country TEXT,
		city TEXT,
		isp TEXT,
		latitude REAL,
		longitude REAL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("failed to create ip_records table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_ip_records_created_at ON ip_records (created_at DESC, id DESC)`)
	if err != nil {
		return fmt.Errorf("failed to create ip_records index: %w", err)
	}

	logger.L().Info("schema_initialized", zap.String("backend", "sqlite"))
	return nil
}
