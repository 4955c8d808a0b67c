package db

import (
	"context"
	"errors"
	"fmt"

	"ip-lookup/internal/logger"

	"go.uber.org/zap"
)

// MigrationResult counts what CopyRecords did
type MigrationResult struct {
	Copied  int
	Skipped int
}

// CopyRecords copies every record in src into dst, oldest id first. Address
// and creation time are preserved; destination ids are assigned by dst.
// Addresses already present in dst are skipped.
func CopyRecords(ctx context.Context, src, dst IPRecordRepository) (MigrationResult, error) {
	var result MigrationResult

	records, err := src.FindAll(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to read source records: %w", err)
	}

	for _, rec := range records {
		copied := *rec
		copied.ID = 0
		_, err := dst.Insert(ctx, &copied)
		if errors.Is(err, ErrConflict) {
			result.Skipped++
			logger.L().Debug("migrate_skip_existing", zap.String("ip", rec.IPAddress))
			continue
		}
		if err != nil {
			return result, fmt.Errorf("failed to copy record %s: %w", rec.IPAddress, err)
		}
		result.Copied++
	}

	logger.L().Info("migrate_done",
		zap.Int("copied", result.Copied),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}
