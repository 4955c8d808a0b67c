package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ip-lookup/internal/util"
	"ip-lookup/models"

	sq "github.com/Masterminds/squirrel"
)

var ipRecordColumns = []string{"id", "ip_address", "country", "city", "isp", "latitude", "longitude", "created_at"}

// SQLIPRecordRepository stores IP records in SQLite or PostgreSQL.
// Both dialects share the queries; only the placeholder format differs.
type SQLIPRecordRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	retry   bool
}

// NewSQLiteIPRecordRepository creates a repository using ? placeholders.
// Inserts are retried while the database file is locked.
func NewSQLiteIPRecordRepository(db *sql.DB) *SQLIPRecordRepository {
	return &SQLIPRecordRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question),
		retry:   true,
	}
}

// NewPostgresIPRecordRepository creates a repository using $n placeholders
func NewPostgresIPRecordRepository(db *sql.DB) *SQLIPRecordRepository {
	return &SQLIPRecordRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// FindByIP retrieves the record stored for an IP address
func (r *SQLIPRecordRepository) FindByIP(ctx context.Context, ip string) (*models.IPRecord, error) {
	query, args, err := r.builder.Select(ipRecordColumns...).
		From("ip_records").
		Where(sq.Eq{"ip_address": ip}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build ip record query: %w", err)
	}

	record, err := scanIPRecord(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find ip record by IP: %w", err)
	}

	return record, nil
}

// Insert stores a new record and returns it with its assigned ID.
// A second record for the same address fails with ErrConflict.
func (r *SQLIPRecordRepository) Insert(ctx context.Context, record *models.IPRecord) (*models.IPRecord, error) {
	stored := *record
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	query, args, err := r.builder.Insert("ip_records").
		Columns("ip_address", "country", "city", "isp", "latitude", "longitude", "created_at").
		Values(stored.IPAddress, stored.Country, stored.City, stored.ISP, stored.Latitude, stored.Longitude, stored.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build ip record insert: %w", err)
	}

	insert := func() (int64, error) {
		var id int64
		err := r.db.QueryRowContext(ctx, query, args...).Scan(&id)
		return id, err
	}

	var id int64
	if r.retry {
		id, err = util.RetryOnLockWithResult(ctx, insert)
	} else {
		id, err = insert()
	}
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to insert ip record: %w", err)
	}

	stored.ID = id
	return &stored, nil
}

// ListByCreatedAtDesc returns up to limit records, newest first
func (r *SQLIPRecordRepository) ListByCreatedAtDesc(ctx context.Context, limit int) ([]*models.IPRecord, error) {
	query, args, err := r.builder.Select(ipRecordColumns...).
		From("ip_records").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build ip record history query: %w", err)
	}

	return r.query(ctx, query, args...)
}

// FindAll returns every record in insertion order
func (r *SQLIPRecordRepository) FindAll(ctx context.Context) ([]*models.IPRecord, error) {
	query, args, err := r.builder.Select(ipRecordColumns...).
		From("ip_records").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build ip record query: %w", err)
	}

	return r.query(ctx, query, args...)
}

// Count returns the number of stored records
func (r *SQLIPRecordRepository) Count(ctx context.Context) (int64, error) {
	query, args, err := r.builder.Select("COUNT(1)").From("ip_records").ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build ip record count: %w", err)
	}

	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count ip records: %w", err)
	}
	return n, nil
}

// Close closes the underlying connection pool
func (r *SQLIPRecordRepository) Close() error {
	return r.db.Close()
}

func (r *SQLIPRecordRepository) query(ctx context.Context, query string, args ...interface{}) ([]*models.IPRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying ip records: %w", err)
	}
	defer rows.Close()

	records := []*models.IPRecord{}
	for rows.Next() {
		record, err := scanIPRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning ip record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ip records: %w", err)
	}

	return records, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanIPRecord(row rowScanner) (*models.IPRecord, error) {
	var record models.IPRecord
	var country, city, isp sql.NullString
	var latitude, longitude sql.NullFloat64

	err := row.Scan(&record.ID, &record.IPAddress, &country, &city, &isp, &latitude, &longitude, &record.CreatedAt)
	if err != nil {
		return nil, err
	}

	if country.Valid {
		record.Country = &country.String
	}
	if city.Valid {
		record.City = &city.String
	}
	if isp.Valid {
		record.ISP = &isp.String
	}
	if latitude.Valid {
		record.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		record.Longitude = &longitude.Float64
	}
	record.CreatedAt = record.CreatedAt.UTC()

	return &record, nil
}
