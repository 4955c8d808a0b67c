package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"ip-lookup/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLite(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := ConnectToSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, InitializeSchema(conn))
	t.Cleanup(func() { conn.Close() })

	return conn
}

func newRecord(ip string, createdAt time.Time) *models.IPRecord {
	return &models.IPRecord{
		IPAddress: ip,
		Country:   models.StringPtr("United States"),
		City:      models.StringPtr("Mountain View"),
		ISP:       models.StringPtr("Google LLC"),
		Latitude:  models.Float64Ptr(37.42),
		Longitude: models.Float64Ptr(-122.08),
		CreatedAt: createdAt,
	}
}

func TestSQLiteIPRecordRepository(t *testing.T) {
	repo := NewSQLiteIPRecordRepository(setupSQLite(t))
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("InsertAndFind", func(t *testing.T) {
		saved, err := repo.Insert(ctx, newRecord("8.8.8.8", base))
		require.NoError(t, err)
		assert.NotZero(t, saved.ID)

		found, err := repo.FindByIP(ctx, "8.8.8.8")
		require.NoError(t, err)
		assert.Equal(t, saved.ID, found.ID)
		assert.True(t, saved.SameData(found))
		assert.True(t, base.Equal(found.CreatedAt))
	})

	t.Run("NullableFields", func(t *testing.T) {
		_, err := repo.Insert(ctx, &models.IPRecord{IPAddress: "10.1.1.1", CreatedAt: base})
		require.NoError(t, err)

		found, err := repo.FindByIP(ctx, "10.1.1.1")
		require.NoError(t, err)
		assert.Nil(t, found.Country)
		assert.Nil(t, found.City)
		assert.Nil(t, found.ISP)
		assert.Nil(t, found.Latitude)
		assert.Nil(t, found.Longitude)
	})

	t.Run("DefaultsCreatedAt", func(t *testing.T) {
		before := time.Now().UTC().Add(-time.Second)
		saved, err := repo.Insert(ctx, &models.IPRecord{IPAddress: "10.1.1.2"})
		require.NoError(t, err)
		assert.True(t, saved.CreatedAt.After(before))
	})

	t.Run("FindMissing", func(t *testing.T) {
		_, err := repo.FindByIP(ctx, "203.0.113.9")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("DuplicateIsConflict", func(t *testing.T) {
		_, err := repo.Insert(ctx, newRecord("8.8.8.8", base.Add(time.Hour)))
		assert.ErrorIs(t, err, ErrConflict)

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})
}

func TestSQLiteIPRecordRepository_History(t *testing.T) {
	repo := NewSQLiteIPRecordRepository(setupSQLite(t))
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := repo.Insert(ctx, newRecord(fmt.Sprintf("1.1.1.%d", i), base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}
	// Same timestamp as 1.1.1.4, inserted later, so it wins the tie.
	_, err := repo.Insert(ctx, newRecord("1.1.1.9", base.Add(4*time.Minute)))
	require.NoError(t, err)

	records, err := repo.ListByCreatedAtDesc(ctx, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "1.1.1.9", records[0].IPAddress)
	assert.Equal(t, "1.1.1.4", records[1].IPAddress)
	assert.Equal(t, "1.1.1.3", records[2].IPAddress)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, "1.1.1.0", all[0].IPAddress)
	assert.Equal(t, "1.1.1.9", all[5].IPAddress)
}

func TestSQLiteIPRecordRepository_ConcurrentInsert(t *testing.T) {
	repo := NewSQLiteIPRecordRepository(setupSQLite(t))
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Insert(ctx, newRecord("9.9.9.9", time.Now().UTC()))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected insert error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, conflicts)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRepositoryFactory_SQLite(t *testing.T) {
	factory := NewRepositoryFactory(setupSQLite(t), nil, nil, "iplookup_test")
	repo := factory.NewIPRecordRepository()
	assert.IsType(t, &SQLIPRecordRepository{}, repo)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestPostgresOptions_DSN(t *testing.T) {
	opts := PostgresOptions{Host: "db", Port: "5432", User: "app", Password: "s3cr@t", Database: "iplookup", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:s3cr%40t@db:5432/iplookup?sslmode=disable", opts.DSN())

	opts.Password = ""
	assert.Equal(t, "postgres://app@db:5432/iplookup?sslmode=disable", opts.DSN())
}

func TestConnectToSQLite_Unopenable(t *testing.T) {
	// a directory cannot be opened as a database file
	conn, err := ConnectToSQLite(t.TempDir())
	assert.Error(t, err)
	assert.Nil(t, conn)
}
