package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"ip-lookup/internal/metrics"

	"github.com/oschwald/geoip2-golang"
)

const notFoundMessage = "address not found"

// MaxMindResolver answers from local GeoIP2/GeoLite2 databases. It is an
// alternative provider chosen by configuration, not a fallback.
type MaxMindResolver struct {
	city     *geoip2.Reader
	isp      *geoip2.Reader
	language string
}

// OpenMaxMindResolver opens the City database and, if ispPath is set, the ISP database
func OpenMaxMindResolver(cityPath, ispPath string) (*MaxMindResolver, error) {
	if cityPath == "" {
		return nil, errors.New("maxmind city database path is empty")
	}
	city, err := geoip2.Open(cityPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open maxmind city database: %w", err)
	}

	r := &MaxMindResolver{city: city, language: "en"}
	if ispPath != "" {
		isp, err := geoip2.Open(ispPath)
		if err != nil {
			city.Close()
			return nil, fmt.Errorf("failed to open maxmind isp database: %w", err)
		}
		r.isp = isp
	}
	return r, nil
}

// Resolve looks ip up in the local databases. An address absent from the
// City database is reported as Success=false.
func (r *MaxMindResolver) Resolve(ctx context.Context, ip string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t0 := time.Now()
	defer func() {
		metrics.ResolverDurationMs.WithLabelValues("maxmind").Observe(float64(time.Since(t0).Milliseconds()))
	}()

	addr := net.ParseIP(ip)
	if addr == nil || addr.To4() == nil {
		metrics.ResolverRequestsTotal.WithLabelValues("maxmind", "error").Inc()
		return nil, fmt.Errorf("maxmind: %q is not an IPv4 address", ip)
	}

	rec, err := r.city.City(addr)
	if err != nil {
		metrics.ResolverRequestsTotal.WithLabelValues("maxmind", "error").Inc()
		return nil, fmt.Errorf("maxmind city lookup failed: %w", err)
	}
	if rec.Country.IsoCode == "" && rec.City.GeoNameID == 0 {
		metrics.ResolverRequestsTotal.WithLabelValues("maxmind", "rejected").Inc()
		return &Result{Success: false, Message: notFoundMessage}, nil
	}

	res := &Result{
		Success: true,
		Country: nonEmpty(rec.Country.Names[r.language]),
		City:    nonEmpty(rec.City.Names[r.language]),
	}
	if rec.Location.Latitude != 0 || rec.Location.Longitude != 0 {
		lat, lon := rec.Location.Latitude, rec.Location.Longitude
		res.Latitude, res.Longitude = &lat, &lon
	}

	if r.isp != nil {
		isp, err := r.isp.ISP(addr)
		if err != nil {
			metrics.ResolverRequestsTotal.WithLabelValues("maxmind", "error").Inc()
			return nil, fmt.Errorf("maxmind isp lookup failed: %w", err)
		}
		res.ISP = nonEmpty(isp.ISP)
	}

	metrics.ResolverRequestsTotal.WithLabelValues("maxmind", "success").Inc()
	return res, nil
}

// Close releases the database readers
func (r *MaxMindResolver) Close() error {
	var errs []error
	if r.city != nil {
		errs = append(errs, r.city.Close())
	}
	if r.isp != nil {
		errs = append(errs, r.isp.Close())
	}
	return errors.Join(errs...)
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
