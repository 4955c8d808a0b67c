package web

import (
	"net/http"
	"strings"

	"ip-lookup/internal/lookup"
	"ip-lookup/internal/metrics"
	"ip-lookup/internal/systemstatus"
	"ip-lookup/middleware"

	"github.com/gorilla/mux"
)

type Handlers struct {
	Lookup      *lookup.LookupHandlers
	Status      *systemstatus.SystemStatusHandlers
	RateLimiter *middleware.RateLimiter
	CORSOrigin  string
}

// SetupRoutes builds the HTTP handler. Only the lookup endpoints are rate limited.
func SetupRoutes(h Handlers) http.Handler {
	r := mux.NewRouter()

	api := r.MatcherFunc(func(req *http.Request, _ *mux.RouteMatch) bool {
		return strings.HasPrefix(req.URL.Path, "/lookup")
	}).Subrouter()
	if h.RateLimiter != nil {
		api.Use(h.RateLimiter.Middleware)
	}
	h.Lookup.RegisterRoutes(api)
	// the subrouter reports its own mismatches; the root never sees them
	api.NotFoundHandler = http.HandlerFunc(notFound)
	api.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	r.HandleFunc("/status", h.Status.GetLatestSystemStatus).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.Status.Healthz).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	// CORS sits outside the router so preflight requests never reach route matching
	return middleware.LoggingMiddleware(middleware.SetupCORS(h.CORSOrigin)(r))
}

func notFound(w http.ResponseWriter, r *http.Request) {
	lookup.WriteError(w, http.StatusNotFound, "Not found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	lookup.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
}
