package models

import (
	"time"
)

// SystemStatus describes the running service for the /status endpoint
type SystemStatus struct {
	Version      string    `json:"version"`
	DatabaseType string    `json:"databaseType"`
	ResolverType string    `json:"resolverType"`
	CacheEnabled bool      `json:"cacheEnabled"`
	RecordCount  int64     `json:"recordCount"`
	StartedAt    time.Time `json:"startedAt"`
	Uptime       string    `json:"uptime"`
}
