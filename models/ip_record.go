package models

import (
	"time"
)

// IPRecord stores resolved geolocation data for a single IPv4 address
type IPRecord struct {
	ID        int64     `db:"id" bson:"_id" json:"id"`
	IPAddress string    `db:"ip_address" bson:"ip_address" json:"ipAddress"`
	Country   *string   `db:"country" bson:"country,omitempty" json:"country"`
	City      *string   `db:"city" bson:"city,omitempty" json:"city"`
	ISP       *string   `db:"isp" bson:"isp,omitempty" json:"isp"`
	Latitude  *float64  `db:"latitude" bson:"latitude,omitempty" json:"latitude"`
	Longitude *float64  `db:"longitude" bson:"longitude,omitempty" json:"longitude"`
	CreatedAt time.Time `db:"created_at" bson:"created_at" json:"createdAt"`
}

// HasLocation reports whether both coordinates were supplied by the resolver
func (r *IPRecord) HasLocation() bool {
	return r != nil && r.Latitude != nil && r.Longitude != nil
}

// SameData reports whether two records carry the same resolved data.
// ID and CreatedAt are ignored.
func (r *IPRecord) SameData(other *IPRecord) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.IPAddress == other.IPAddress &&
		equalString(r.Country, other.Country) &&
		equalString(r.City, other.City) &&
		equalString(r.ISP, other.ISP) &&
		equalFloat(r.Latitude, other.Latitude) &&
		equalFloat(r.Longitude, other.Longitude)
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// StringPtr returns nil for an empty string
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Float64Ptr returns a pointer to f
func Float64Ptr(f float64) *float64 {
	return &f
}
