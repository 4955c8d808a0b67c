package lookup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ip-lookup/db"
	"ip-lookup/internal/logger"
	"ip-lookup/internal/metrics"
	"ip-lookup/internal/resolver"
	"ip-lookup/models"

	"go.uber.org/zap"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// LookupService resolves addresses once and serves them from the store afterwards
type LookupService struct {
	repo     db.IPRecordRepository
	resolver resolver.Resolver
	now      func() time.Time
}

type Option func(*LookupService)

// WithClock overrides the time source used for CreatedAt
func WithClock(now func() time.Time) Option {
	return func(s *LookupService) { s.now = now }
}

func NewLookupService(repo db.IPRecordRepository, res resolver.Resolver, opts ...Option) *LookupService {
	s := &LookupService{repo: repo, resolver: res, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup returns the stored record for ip, resolving and persisting it on first sight.
// Concurrent first lookups may each call the resolver; the store keeps exactly one
// record and every caller gets that record back.
func (s *LookupService) Lookup(ctx context.Context, ip string) (*models.IPRecord, error) {
	if err := validate(ip); err != nil {
		metrics.LookupsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	existing, err := s.repo.FindByIP(ctx, ip)
	if err == nil {
		metrics.LookupsTotal.WithLabelValues("hit").Inc()
		logger.L().Debug("lookup_hit", zap.String("ip", ip))
		return existing, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		metrics.LookupsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to read record for %s: %w", ip, err)
	}

	result, err := s.resolver.Resolve(ctx, ip)
	if err != nil {
		metrics.LookupsTotal.WithLabelValues("upstream_error").Inc()
		logger.L().Warn("lookup_upstream_failed", zap.String("ip", ip), zap.Error(err))
		return nil, &UpstreamError{Err: err}
	}
	if !result.Success {
		metrics.LookupsTotal.WithLabelValues("rejected").Inc()
		logger.L().Info("lookup_rejected", zap.String("ip", ip), zap.String("message", result.Message))
		return nil, &UpstreamRejectedError{Message: result.Message}
	}

	record := &models.IPRecord{
		IPAddress: ip,
		Country:   result.Country,
		City:      result.City,
		ISP:       result.ISP,
		Latitude:  result.Latitude,
		Longitude: result.Longitude,
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}

	saved, err := s.repo.Insert(ctx, record)
	if errors.Is(err, db.ErrConflict) {
		// another request stored this address first
		saved, err = s.repo.FindByIP(ctx, ip)
		if err == nil {
			metrics.ConflictsRecoveredTotal.Inc()
			logger.L().Info("lookup_conflict_recovered", zap.String("ip", ip))
		}
	}
	if err != nil {
		metrics.LookupsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to store record for %s: %w", ip, err)
	}

	metrics.LookupsTotal.WithLabelValues("miss").Inc()
	logger.L().Info("lookup_stored",
		zap.String("ip", ip),
		zap.Int64("id", saved.ID),
	)
	return saved, nil
}

// GetOne returns the stored record for ip without ever calling the resolver
func (s *LookupService) GetOne(ctx context.Context, ip string) (*models.IPRecord, error) {
	if err := validate(ip); err != nil {
		return nil, err
	}

	record, err := s.repo.FindByIP(ctx, ip)
	if errors.Is(err, db.ErrNotFound) {
		return nil, &NotFoundError{IP: ip}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record for %s: %w", ip, err)
	}
	return record, nil
}

// GetHistory returns the most recent records, newest first.
// A non-positive limit means DefaultHistoryLimit; larger limits are capped at MaxHistoryLimit.
func (s *LookupService) GetHistory(ctx context.Context, limit int) ([]*models.IPRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	records, err := s.repo.ListByCreatedAtDesc(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	if records == nil {
		records = []*models.IPRecord{}
	}
	return records, nil
}
