package db

import (
	"context"
	"database/sql"
	"errors"

	"ip-lookup/models"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// Repository defines a common interface for all repositories
type Repository interface {
	Close() error
}

// IPRecordRepository persists resolved IP records, one row per address.
// Implementations must enforce uniqueness of the address themselves and
// report a duplicate insert as ErrConflict.
type IPRecordRepository interface {
	Repository
	FindByIP(ctx context.Context, ip string) (*models.IPRecord, error)
	Insert(ctx context.Context, record *models.IPRecord) (*models.IPRecord, error)
	ListByCreatedAtDesc(ctx context.Context, limit int) ([]*models.IPRecord, error)
	FindAll(ctx context.Context) ([]*models.IPRecord, error)
	Count(ctx context.Context) (int64, error)
}

// RepositoryFactory creates repositories based on the database type
type RepositoryFactory struct {
	SQLiteDB    *sql.DB
	PostgresDB  *sql.DB
	MongoClient *mongo.Client
	DBName      string
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(sqliteDB, postgresDB *sql.DB, mongoClient *mongo.Client, dbName string) *RepositoryFactory {
	return &RepositoryFactory{
		SQLiteDB:    sqliteDB,
		PostgresDB:  postgresDB,
		MongoClient: mongoClient,
		DBName:      dbName,
	}
}

// NewIPRecordRepository creates the repository for whichever backend is connected
func (f *RepositoryFactory) NewIPRecordRepository() IPRecordRepository {
	switch {
	case f.SQLiteDB != nil:
		return NewSQLiteIPRecordRepository(f.SQLiteDB)
	case f.PostgresDB != nil:
		return NewPostgresIPRecordRepository(f.PostgresDB)
	default:
		return NewMongoIPRecordRepository(f.MongoClient, f.DBName, "ip_records")
	}
}

// IsUniqueViolation reports whether err was raised by a unique constraint or
// unique index in any of the supported backends.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	return mongo.IsDuplicateKeyError(err)
}
