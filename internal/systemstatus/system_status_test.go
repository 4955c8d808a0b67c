package systemstatus

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ip-lookup/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	n   int64
	err error
}

func (f fakeCounter) Count(context.Context) (int64, error) { return f.n, f.err }

func TestSystemStatusService_GetLatest(t *testing.T) {
	svc := NewSystemStatusService(fakeCounter{n: 42}, Info{
		Version:      "1.2.3",
		DatabaseType: "sqlite",
		ResolverType: "http",
	})
	svc.now = func() time.Time { return svc.startedAt.Add(90*time.Second + 400*time.Millisecond) }

	status, err := svc.GetLatest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), status.RecordCount)
	assert.Equal(t, "1.2.3", status.Version)
	assert.Equal(t, "sqlite", status.DatabaseType)
	assert.False(t, status.CacheEnabled)
	assert.Equal(t, "1m30s", status.Uptime)
}

func TestSystemStatusHandlers(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		h := NewSystemStatusHandlers(NewSystemStatusService(fakeCounter{n: 3}, Info{DatabaseType: "postgres"}))
		rec := httptest.NewRecorder()
		h.GetLatestSystemStatus(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var status models.SystemStatus
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
		assert.Equal(t, int64(3), status.RecordCount)
		assert.Equal(t, "postgres", status.DatabaseType)
	})

	t.Run("store down", func(t *testing.T) {
		h := NewSystemStatusHandlers(NewSystemStatusService(fakeCounter{err: errors.New("closed")}, Info{}))
		rec := httptest.NewRecorder()
		h.GetLatestSystemStatus(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("healthz", func(t *testing.T) {
		h := NewSystemStatusHandlers(nil)
		rec := httptest.NewRecorder()
		h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", rec.Body.String())
	})
}
