package db

import (
	"database/sql"
	"fmt"
	"net/url"

	"ip-lookup/internal/logger"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresOptions holds the discrete connection settings used when no DSN is given
type PostgresOptions struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN builds a postgres:// connection string from the options
func (o PostgresOptions) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   o.Host + ":" + o.Port,
		Path:   "/" + o.Database,
	}
	if o.Password != "" {
		u.User = url.UserPassword(o.User, o.Password)
	} else {
		u.User = url.User(o.User)
	}
	q := url.Values{}
	q.Set("sslmode", o.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// ConnectToPostgres opens and pings a PostgreSQL connection pool
func ConnectToPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL database: %w", err)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL database: %w", err)
	}

	logger.L().Info("postgres_connected")
	return db, nil
}

// InitializePostgresSchema creates the ip_records table if it doesn't exist
func InitializePostgresSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ip_records (
			id BIGSERIAL PRIMARY KEY,
			ip_address VARCHAR(45) NOT NULL,
			country TEXT,
			city TEXT,
			isp TEXT,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT ip_records_ip_address_key UNIQUE (ip_address)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ip_records_created_at ON ip_records (created_at DESC, id DESC)`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", zap.Int("idx", i))
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("failed to initialize PostgreSQL schema: %w", err)
		}
	}

	logger.L().Info("schema_initialized", zap.String("backend", "postgres"))
	return nil
}
