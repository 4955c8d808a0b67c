package web

import (
	"io"
	"net/http"
	"testing"

	"ip-lookup/internal/lookup"
	"ip-lookup/internal/systemstatus"
	"ip-lookup/internal/testutils"
	"ip-lookup/middleware"
	"ip-lookup/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, perMinute int) *testutils.TestServer {
	t.Helper()
	repo := testutils.SetupTestRepository(t)
	res := testutils.NewFakeResolver()
	res.Set("8.8.8.8", testutils.GoogleDNSResult())

	handler := SetupRoutes(Handlers{
		Lookup:      lookup.NewLookupHandlers(lookup.NewLookupService(repo, res)),
		Status:      systemstatus.NewSystemStatusHandlers(systemstatus.NewSystemStatusService(repo, systemstatus.Info{DatabaseType: "sqlite"})),
		RateLimiter: middleware.NewRateLimiter(perMinute),
		CORSOrigin:  "*",
	})
	return testutils.NewTestServer(t, handler)
}

func TestSetupRoutes(t *testing.T) {
	ts := newTestRouter(t, 0)

	var record models.IPRecord
	testutils.AssertJSONResponse(t, ts.POST("/lookup", map[string]string{"ip": "8.8.8.8"}), http.StatusOK, &record)

	var status models.SystemStatus
	testutils.AssertJSONResponse(t, ts.GET("/status"), http.StatusOK, &status)
	assert.Equal(t, int64(1), status.RecordCount)

	resp := ts.GET("/healthz")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))

	resp = ts.GET("/metrics")
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "iplookup_lookups_total")

	testutils.AssertErrorResponse(t, ts.GET("/nope"), http.StatusNotFound, "Not found")
}

func TestSetupRoutes_LookupMismatches(t *testing.T) {
	ts := newTestRouter(t, 0)

	testutils.AssertErrorResponse(t, ts.GET("/lookup"), http.StatusMethodNotAllowed, "Method not allowed")
	testutils.AssertErrorResponse(t, ts.POST("/lookup/history", nil), http.StatusMethodNotAllowed, "Method not allowed")
	testutils.AssertErrorResponse(t, ts.GET("/lookup/history/8.8.8.8/extra"), http.StatusNotFound, "Not found")
	testutils.AssertErrorResponse(t, ts.POST("/status", nil), http.StatusMethodNotAllowed, "Method not allowed")
}

func TestSetupRoutes_Preflight(t *testing.T) {
	ts := newTestRouter(t, 0)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/lookup", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestSetupRoutes_RateLimit(t *testing.T) {
	ts := newTestRouter(t, 2)

	for i := 0; i < 2; i++ {
		resp := ts.GET("/lookup/history")
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	testutils.AssertErrorResponse(t, ts.GET("/lookup/history"), http.StatusTooManyRequests, "Too many requests")

	// operational endpoints are not throttled
	resp := ts.GET("/healthz")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
