package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ip-lookup/internal/logger"
	"ip-lookup/internal/metrics"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://ipwhois.app/json/"
	DefaultTimeout = 5 * time.Second

	maxErrorBody = 512
)

// HTTPResolver calls an ipwhois-compatible JSON API: GET <base>/<ip>
type HTTPResolver struct {
	baseURL string
	client  *http.Client
}

// NewHTTPResolver creates a resolver for baseURL. A nil client gets one
// with DefaultTimeout.
func NewHTTPResolver(baseURL string, client *http.Client) *HTTPResolver {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTPResolver{
		baseURL: strings.TrimRight(baseURL, "/") + "/",
		client:  client,
	}
}

// Resolve issues a single GET for ip. Transport failures, non-2xx answers and
// undecodable bodies are errors; a decoded body with success=false is not.
func (r *HTTPResolver) Resolve(ctx context.Context, ip string) (*Result, error) {
	u := r.baseURL + url.PathEscape(ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build resolver request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	t0 := time.Now()
	defer func() {
		metrics.ResolverDurationMs.WithLabelValues("http").Observe(float64(time.Since(t0).Milliseconds()))
	}()

	logger.L().Debug("resolver_request", zap.String("ip", ip))
	resp, err := r.client.Do(req)
	if err != nil {
		metrics.ResolverRequestsTotal.WithLabelValues("http", "error").Inc()
		return nil, fmt.Errorf("resolver request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ResolverRequestsTotal.WithLabelValues("http", "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		metrics.ResolverRequestsTotal.WithLabelValues("http", "error").Inc()
		return nil, fmt.Errorf("failed to decode resolver response: %w", err)
	}

	if result.Success {
		metrics.ResolverRequestsTotal.WithLabelValues("http", "success").Inc()
	} else {
		metrics.ResolverRequestsTotal.WithLabelValues("http", "rejected").Inc()
	}
	logger.L().Debug("resolver_response",
		zap.String("ip", ip),
		zap.Bool("success", result.Success),
		zap.String("message", result.Message),
		zap.Duration("duration", time.Since(t0)),
	)

	return &result, nil
}
