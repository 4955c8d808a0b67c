package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPRecord_Creation(t *testing.T) {
	now := time.Now().UTC()

	record := IPRecord{
		ID:        1,
		IPAddress: "8.8.8.8",
		Country:   StringPtr("United States"),
		City:      StringPtr("Mountain View"),
		ISP:       StringPtr("Google LLC"),
		Latitude:  Float64Ptr(37.42),
		Longitude: Float64Ptr(-122.08),
		CreatedAt: now,
	}

	assert.Equal(t, int64(1), record.ID)
	assert.Equal(t, "8.8.8.8", record.IPAddress)
	assert.Equal(t, "United States", *record.Country)
	assert.Equal(t, "Mountain View", *record.City)
	assert.Equal(t, "Google LLC", *record.ISP)
	assert.True(t, record.HasLocation())
}

func TestIPRecord_JSONShape(t *testing.T) {
	record := IPRecord{
		ID:        7,
		IPAddress: "1.1.1.1",
		Country:   StringPtr("Australia"),
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	raw, err := json.Marshal(record)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))

	assert.Equal(t, "1.1.1.1", body["ipAddress"])
	assert.Equal(t, "Australia", body["country"])
	assert.Equal(t, "2024-01-02T03:04:05Z", body["createdAt"])
	assert.Contains(t, body, "city")
	assert.Nil(t, body["city"])
	assert.Nil(t, body["latitude"])
}

func TestIPRecord_SameData(t *testing.T) {
	a := &IPRecord{ID: 1, IPAddress: "8.8.8.8", Country: StringPtr("US"), Latitude: Float64Ptr(1.5)}
	b := &IPRecord{ID: 2, IPAddress: "8.8.8.8", Country: StringPtr("US"), Latitude: Float64Ptr(1.5), CreatedAt: time.Now()}

	assert.True(t, a.SameData(b))

	b.City = StringPtr("Somewhere")
	assert.False(t, a.SameData(b))

	assert.False(t, a.SameData(nil))
	assert.False(t, (&IPRecord{IPAddress: "8.8.8.8"}).HasLocation())
}

func TestStringPtr_Empty(t *testing.T) {
	assert.Nil(t, StringPtr(""))
	assert.Equal(t, "x", *StringPtr("x"))
}
