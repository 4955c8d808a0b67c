package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"ip-lookup/db"
	"ip-lookup/internal/resolver"

	"github.com/joho/godotenv"
)

type DatabaseType string

const (
	MongoDB  DatabaseType = "mongodb"
	SQLite   DatabaseType = "sqlite"
	Postgres DatabaseType = "postgres"
)

// Validate rejects unknown database types
func (t DatabaseType) Validate() error {
	switch t {
	case SQLite, Postgres, MongoDB:
		return nil
	}
	return fmt.Errorf("unsupported DATABASE_TYPE: %s", t)
}

type ResolverType string

const (
	ResolverHTTP    ResolverType = "http"
	ResolverMaxMind ResolverType = "maxmind"
)

type Config struct {
	Port         string
	DatabaseType DatabaseType
	DatabaseName string
	// SQLite config
	SQLitePath string
	// Postgres config
	PostgresDSN string
	// MongoDB config
	MongoURI string
	// Resolver config
	ResolverType    ResolverType
	ResolverBaseURL string
	ResolverTimeout time.Duration
	MaxMindCityDB   string
	MaxMindISPDB    string
	// Redis record cache, disabled when RedisAddr is empty
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// HTTP
	RateLimitPerMinute int
	CORSAllowedOrigin  string
	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig reads .env when present, then the process environment
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:              get("PORT", "8080"),
		DatabaseType:      DatabaseType(get("DATABASE_TYPE", string(SQLite))),
		DatabaseName:      get("DATABASE_NAME", "iplookup"),
		ResolverType:      ResolverType(get("RESOLVER_TYPE", string(ResolverHTTP))),
		ResolverBaseURL:   get("RESOLVER_BASE_URL", resolver.DefaultBaseURL),
		MaxMindCityDB:     getenv("MAXMIND_CITY_DB"),
		MaxMindISPDB:      getenv("MAXMIND_ISP_DB"),
		RedisAddr:         getenv("REDIS_ADDR"),
		RedisPassword:     getenv("REDIS_PASSWORD"),
		CORSAllowedOrigin: get("CORS_ALLOWED_ORIGIN", "*"),
		LogLevel:          get("LOG_LEVEL", "info"),
		LogFormat:         get("LOG_FORMAT", "json"),
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("invalid PORT %q", cfg.Port)
	}

	timeout, err := time.ParseDuration(get("RESOLVER_TIMEOUT", resolver.DefaultTimeout.String()))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("invalid RESOLVER_TIMEOUT %q", getenv("RESOLVER_TIMEOUT"))
	}
	cfg.ResolverTimeout = timeout

	if cfg.RedisDB, err = nonNegativeInt(get("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	if cfg.RateLimitPerMinute, err = nonNegativeInt(get("RATE_LIMIT_PER_MINUTE", "20")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
	}

	// every backend is resolved so migrate can open a second one
	cfg.SQLitePath = get("SQLITE_PATH", filepath.Join("data", fmt.Sprintf("%s.db", cfg.DatabaseName)))
	cfg.PostgresDSN = getenv("POSTGRES_DSN")
	if cfg.PostgresDSN == "" {
		cfg.PostgresDSN = db.PostgresOptions{
			Host:     get("PG_HOST", "localhost"),
			Port:     get("PG_PORT", "5432"),
			User:     get("PG_USER", "postgres"),
			Password: getenv("PG_PASSWORD"),
			Database: get("PG_DB", cfg.DatabaseName),
			SSLMode:  get("PG_SSLMODE", "disable"),
		}.DSN()
	}
	cfg.MongoURI = getenv("MONGODB_URI")

	if err := cfg.DatabaseType.Validate(); err != nil {
		return nil, err
	}
	if cfg.DatabaseType == MongoDB && cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is not set")
	}

	switch cfg.ResolverType {
	case ResolverHTTP:
	case ResolverMaxMind:
		if cfg.MaxMindCityDB == "" {
			return nil, fmt.Errorf("MAXMIND_CITY_DB is not set")
		}
	default:
		return nil, fmt.Errorf("unsupported RESOLVER_TYPE: %s", cfg.ResolverType)
	}

	return cfg, nil
}

func nonNegativeInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("must not be negative: %d", n)
	}
	return n, nil
}
