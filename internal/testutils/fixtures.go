package testutils

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"ip-lookup/internal/resolver"
	"ip-lookup/models"
)

func CreateTestIPRecord(ip string) *models.IPRecord {
	return &models.IPRecord{
		IPAddress: ip,
		Country:   models.StringPtr("United States"),
		City:      models.StringPtr("Mountain View"),
		ISP:       models.StringPtr("Google LLC"),
		Latitude:  models.Float64Ptr(37.4056),
		Longitude: models.Float64Ptr(-122.0775),
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

// GoogleDNSResult is what the resolver reports for 8.8.8.8
func GoogleDNSResult() *resolver.Result {
	return &resolver.Result{
		Success:   true,
		Country:   models.StringPtr("United States"),
		City:      models.StringPtr("Mountain View"),
		ISP:       models.StringPtr("Google LLC"),
		Latitude:  models.Float64Ptr(37.4056),
		Longitude: models.Float64Ptr(-122.0775),
	}
}

// FakeResolver answers from Results keyed by address and counts calls.
// Unknown addresses get Err when set, otherwise a rejection.
type FakeResolver struct {
	mu      sync.Mutex
	Results map[string]*resolver.Result
	Err     error
	// Gate, when set, blocks every Resolve until it is closed
	Gate  chan struct{}
	calls atomic.Int64
}

func NewFakeResolver() *FakeResolver {
	return &FakeResolver{Results: map[string]*resolver.Result{}}
}

func (f *FakeResolver) Set(ip string, result *resolver.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Results[ip] = result
}

func (f *FakeResolver) Calls() int { return int(f.calls.Load()) }

func (f *FakeResolver) Resolve(ctx context.Context, ip string) (*resolver.Result, error) {
	f.calls.Add(1)
	if f.Gate != nil {
		select {
		case <-f.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.Results[ip]; ok {
		copied := *r
		return &copied, nil
	}
	if f.Err != nil {
		return nil, f.Err
	}
	return &resolver.Result{Success: false, Message: "invalid IP address"}, nil
}
