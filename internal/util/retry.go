package util

import (
	"context"
	"strings"
	"time"

	"ip-lookup/internal/logger"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	maxLockRetries = 3
	baseLockDelay  = 100 * time.Millisecond
)

// IsLockError reports whether err is SQLite's "database is locked"
func IsLockError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "database is locked")
}

func lockBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = baseLockDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, maxLockRetries-1), ctx)
}

// RetryOnLock retries the given function if it fails with a database lock error
func RetryOnLock(ctx context.Context, operation func() error) error {
	_, err := RetryOnLockWithResult(ctx, func() (struct{}, error) {
		return struct{}{}, operation()
	})
	return err
}

// RetryOnLockWithResult retries the given function if it fails with a database lock error
// and returns the result along with any error
func RetryOnLockWithResult[T any](ctx context.Context, operation func() (T, error)) (T, error) {
	attempt := func() (T, error) {
		result, err := operation()
		if err != nil && !IsLockError(err) {
			return result, backoff.Permanent(err)
		}
		return result, err
	}

	notify := func(err error, delay time.Duration) {
		logger.L().Warn("database_locked_retry", zap.Duration("delay", delay), zap.Error(err))
	}

	return backoff.RetryNotifyWithData(attempt, lockBackOff(ctx), notify)
}
