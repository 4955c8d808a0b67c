// Package resolver talks to the upstream geolocation providers.
// Resolvers make exactly one upstream call per Resolve and never cache.
package resolver

import (
	"context"
	"fmt"
)

// Result is what a provider reported for one address
type Result struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message,omitempty"`
	Country   *string  `json:"country,omitempty"`
	City      *string  `json:"city,omitempty"`
	ISP       *string  `json:"isp,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Resolver resolves a single IPv4 address
type Resolver interface {
	Resolve(ctx context.Context, ip string) (*Result, error)
}

// StatusError is returned when the provider answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("resolver returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("resolver returned status %d: %s", e.StatusCode, e.Body)
}
