package testutils

import (
	"database/sql"
	"path/filepath"
	"testing"

	"ip-lookup/db"
	"ip-lookup/internal/config"

	"github.com/stretchr/testify/require"
)

// SetupTestDatabase opens a file-backed SQLite database in a temp dir with the schema applied
func SetupTestDatabase(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := db.ConnectToSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.InitializeSchema(testDB))
	t.Cleanup(func() { testDB.Close() })

	return testDB
}

func SetupTestRepositoryFactory(t *testing.T) *db.RepositoryFactory {
	return db.NewRepositoryFactory(SetupTestDatabase(t), nil, nil, "iplookup_test")
}

func SetupTestRepository(t *testing.T) db.IPRecordRepository {
	return SetupTestRepositoryFactory(t).NewIPRecordRepository()
}

func GetTestConfig(t *testing.T) *config.Config {
	return &config.Config{
		Port:               "0",
		DatabaseType:       config.SQLite,
		SQLitePath:         filepath.Join(t.TempDir(), "config.db"),
		DatabaseName:       "iplookup_test",
		ResolverType:       config.ResolverHTTP,
		RateLimitPerMinute: 0,
		CORSAllowedOrigin:  "*",
		LogLevel:           "error",
		LogFormat:          "console",
	}
}
