package resolver

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/maxmind/mmdbwriter"
	"github.com/maxmind/mmdbwriter/mmdbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMaxMindResolver_Errors(t *testing.T) {
	_, err := OpenMaxMindResolver("", "")
	assert.Error(t, err)

	_, err = OpenMaxMindResolver(filepath.Join(t.TempDir(), "missing.mmdb"), "")
	assert.Error(t, err)

	bogus := filepath.Join(t.TempDir(), "bogus.mmdb")
	require.NoError(t, os.WriteFile(bogus, []byte("not a maxmind database"), 0o600))
	_, err = OpenMaxMindResolver(bogus, "")
	assert.Error(t, err)
}

func TestNonEmpty(t *testing.T) {
	assert.Nil(t, nonEmpty(""))
	assert.Equal(t, "Berlin", *nonEmpty("Berlin"))
}

// writeMMDB builds a small database of the given type, one entry per network
func writeMMDB(t *testing.T, dbType string, entries map[string]mmdbtype.Map) string {
	t.Helper()
	tree, err := mmdbwriter.New(mmdbwriter.Options{DatabaseType: dbType, RecordSize: 24})
	require.NoError(t, err)

	for cidr, data := range entries {
		_, network, err := net.ParseCIDR(cidr)
		require.NoError(t, err)
		require.NoError(t, tree.Insert(network, data))
	}

	path := filepath.Join(t.TempDir(), dbType+".mmdb")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = tree.WriteTo(f)
	require.NoError(t, err)
	return path
}

func cityEntry(country, city string, geonameID uint32, lat, lon float64) mmdbtype.Map {
	m := mmdbtype.Map{
		"country": mmdbtype.Map{
			"iso_code": mmdbtype.String("GB"),
			"names":    mmdbtype.Map{"en": mmdbtype.String(country)},
		},
	}
	if city != "" {
		m["city"] = mmdbtype.Map{
			"geoname_id": mmdbtype.Uint32(geonameID),
			"names":      mmdbtype.Map{"en": mmdbtype.String(city)},
		}
	}
	if lat != 0 || lon != 0 {
		m["location"] = mmdbtype.Map{
			"latitude":  mmdbtype.Float64(lat),
			"longitude": mmdbtype.Float64(lon),
		}
	}
	return m
}

func newTestMaxMind(t *testing.T, withISP bool) *MaxMindResolver {
	t.Helper()
	cityPath := writeMMDB(t, "GeoIP2-City", map[string]mmdbtype.Map{
		"81.2.69.0/24":   cityEntry("United Kingdom", "London", 2643743, 51.5142, -0.0931),
		"2.125.160.0/24": cityEntry("United Kingdom", "", 0, 0, 0),
	})
	ispPath := ""
	if withISP {
		ispPath = writeMMDB(t, "GeoIP2-ISP", map[string]mmdbtype.Map{
			"81.2.69.0/24": {"isp": mmdbtype.String("Andrews & Arnold Ltd")},
		})
	}

	r, err := OpenMaxMindResolver(cityPath, ispPath)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestMaxMindResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("city with location", func(t *testing.T) {
		res, err := newTestMaxMind(t, false).Resolve(ctx, "81.2.69.160")
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "United Kingdom", *res.Country)
		assert.Equal(t, "London", *res.City)
		assert.InDelta(t, 51.5142, *res.Latitude, 1e-9)
		assert.InDelta(t, -0.0931, *res.Longitude, 1e-9)
		assert.Nil(t, res.ISP)
	})

	t.Run("country only leaves the rest null", func(t *testing.T) {
		res, err := newTestMaxMind(t, false).Resolve(ctx, "2.125.160.216")
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "United Kingdom", *res.Country)
		assert.Nil(t, res.City)
		assert.Nil(t, res.Latitude)
		assert.Nil(t, res.Longitude)
	})

	t.Run("isp database", func(t *testing.T) {
		r := newTestMaxMind(t, true)

		res, err := r.Resolve(ctx, "81.2.69.160")
		require.NoError(t, err)
		require.NotNil(t, res.ISP)
		assert.Equal(t, "Andrews & Arnold Ltd", *res.ISP)

		res, err = r.Resolve(ctx, "2.125.160.216")
		require.NoError(t, err)
		assert.Nil(t, res.ISP)
	})

	t.Run("unknown address is a rejection", func(t *testing.T) {
		res, err := newTestMaxMind(t, false).Resolve(ctx, "8.8.8.8")
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, "address not found", res.Message)
	})

	t.Run("non ipv4 input", func(t *testing.T) {
		r := newTestMaxMind(t, false)
		for _, ip := range []string{"::1", "2001:db8::1", "nope"} {
			_, err := r.Resolve(ctx, ip)
			assert.Error(t, err, ip)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := newTestMaxMind(t, false).Resolve(cctx, "81.2.69.160")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
