package systemstatus

import (
	"context"
	"fmt"
	"time"

	"ip-lookup/models"
)

type recordCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Info is the static part of the status, fixed at startup
type Info struct {
	Version      string
	DatabaseType string
	ResolverType string
	CacheEnabled bool
}

type SystemStatusService struct {
	store     recordCounter
	info      Info
	startedAt time.Time
	now       func() time.Time
}

func NewSystemStatusService(store recordCounter, info Info) *SystemStatusService {
	return &SystemStatusService{
		store:     store,
		info:      info,
		startedAt: time.Now().UTC(),
		now:       time.Now,
	}
}

// GetLatest reports the current record count and uptime
func (s *SystemStatusService) GetLatest(ctx context.Context) (*models.SystemStatus, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	return &models.SystemStatus{
		Version:      s.info.Version,
		DatabaseType: s.info.DatabaseType,
		ResolverType: s.info.ResolverType,
		CacheEnabled: s.info.CacheEnabled,
		RecordCount:  count,
		StartedAt:    s.startedAt,
		Uptime:       s.now().Sub(s.startedAt).Truncate(time.Second).String(),
	}, nil
}
