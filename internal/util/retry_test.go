package util

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryOnLockWithResult(t *testing.T) {
	ctx := context.Background()

	t.Run("SucceedsAfterLock", func(t *testing.T) {
		calls := 0
		got, err := RetryOnLockWithResult(ctx, func() (int, error) {
			calls++
			if calls == 1 {
				return 0, errors.New("database is locked")
			}
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, got)
		assert.Equal(t, 2, calls)
	})

	t.Run("StopsOnOtherErrors", func(t *testing.T) {
		calls := 0
		boom := errors.New("UNIQUE constraint failed")
		_, err := RetryOnLockWithResult(ctx, func() (int, error) {
			calls++
			return 0, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})

	t.Run("GivesUpAfterMaxRetries", func(t *testing.T) {
		calls := 0
		err := RetryOnLock(ctx, func() error {
			calls++
			return errors.New("database is locked")
		})
		require.Error(t, err)
		assert.True(t, IsLockError(err))
		assert.Equal(t, maxLockRetries, calls)
	})
}

func TestIsLockError(t *testing.T) {
	assert.False(t, IsLockError(nil))
	assert.False(t, IsLockError(errors.New("no such table")))
	assert.True(t, IsLockError(errors.New("database is locked (5)")))
}
