package lookup

import (
	"fmt"
)

// ValidationError means the caller supplied a malformed address
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError means no record exists for the address
type NotFoundError struct {
	IP string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no lookup history for %s", e.IP)
}

// UpstreamError means the resolver could not be reached or answered badly.
// The caller may retry.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("geolocation service unavailable: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// UpstreamRejectedError means the resolver answered but could not resolve
// the address. Message is the resolver's own text.
type UpstreamRejectedError struct {
	Message string
}

func (e *UpstreamRejectedError) Error() string { return e.Message }
