package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "iplookup_lookups_total",
		Help: "Lookups by outcome (hit, miss, invalid, rejected, upstream_error, error)",
	}, []string{"outcome"})
	ResolverRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "iplookup_resolver_requests_total",
		Help: "Resolver calls by result (success, rejected, error)",
	}, []string{"resolver", "result"})
	ResolverDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "iplookup_resolver_duration_ms",
		Help:    "Resolver call duration in milliseconds",
		Buckets: []float64{5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000},
	}, []string{"resolver"})
	ConflictsRecoveredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "iplookup_conflicts_recovered_total",
		Help: "Concurrent inserts of the same address resolved by re-reading the store",
	})
	RedisHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "iplookup_redis_hits_total",
		Help: "Total redis record cache hits",
	})
	RedisMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "iplookup_redis_misses_total",
		Help: "Total redis record cache misses",
	})
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "iplookup_http_requests_total",
		Help: "HTTP requests by method and status code",
	}, []string{"method", "code"})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "iplookup_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})
)

func init() {
	prometheus.MustRegister(LookupsTotal)
	prometheus.MustRegister(ResolverRequestsTotal)
	prometheus.MustRegister(ResolverDurationMs)
	prometheus.MustRegister(ConflictsRecoveredTotal)
	prometheus.MustRegister(RedisHitsTotal)
	prometheus.MustRegister(RedisMissesTotal)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(RateLimitedTotal)
}

// Handler exposes the registered metrics for scraping
func Handler() http.Handler { return promhttp.Handler() }
