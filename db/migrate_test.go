package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyRecords(t *testing.T) {
	ctx := context.Background()
	src := NewSQLiteIPRecordRepository(setupSQLite(t))
	dst := NewSQLiteIPRecordRepository(setupSQLite(t))
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	for i, ip := range []string{"1.1.1.1", "8.8.8.8", "9.9.9.9"} {
		_, err := src.Insert(ctx, newRecord(ip, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}
	_, err := dst.Insert(ctx, newRecord("8.8.8.8", base.Add(48*time.Hour)))
	require.NoError(t, err)

	result, err := CopyRecords(ctx, src, dst)
	require.NoError(t, err)
	assert.Equal(t, MigrationResult{Copied: 2, Skipped: 1}, result)

	count, err := dst.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	got, err := dst.FindByIP(ctx, "9.9.9.9")
	require.NoError(t, err)
	assert.Equal(t, base.Add(2*time.Hour), got.CreatedAt)
	assert.Equal(t, "Google LLC", *got.ISP)

	// the existing destination row is left alone
	kept, err := dst.FindByIP(ctx, "8.8.8.8")
	require.NoError(t, err)
	assert.Equal(t, base.Add(48*time.Hour), kept.CreatedAt)

	again, err := CopyRecords(ctx, src, dst)
	require.NoError(t, err)
	assert.Equal(t, MigrationResult{Skipped: 3}, again)
}
