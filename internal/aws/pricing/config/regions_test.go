package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeLocation(t *testing.T) {
	assert.Equal(t, "EU (Paris)", CanonicalizeLocation("Europe (Paris)"))
	assert.Equal(t, "EU (Paris)", CanonicalizeLocation("EU (Paris)"))
	assert.Equal(t, "South America (Sao Paulo)", CanonicalizeLocation("South America (São Paulo)"))
	assert.Equal(t, "US East (N. Virginia)", CanonicalizeLocation("  US East (N. Virginia) "))
}

func TestLocationsResolve(t *testing.T) {
	l := NewLocations()

	tests := []struct {
		location string
		want     string
	}{
		{"US East (N. Virginia)", "us-east-1"},
		{"US West (Oregon)", "us-west-2"},
		{"EU (Frankfurt)", "eu-central-1"},
		{"Europe (Frankfurt)", "eu-central-1"},
		{"South America (São Paulo)", "sa-east-1"},
		{"AWS GovCloud (US)", "us-gov-west-1"},
		{"Asia Pacific (Tokyo)", "ap-northeast-1"},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			got, ok := l.Resolve(tt.location)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := l.Resolve("Nowhere (Moon)")
	assert.False(t, ok)
	_, ok = l.Resolve(AnyLocation)
	assert.False(t, ok, "Any is handled by the caller, not the table")
}

func TestLocationsFromTable(t *testing.T) {
	l := NewLocationsFromTable(map[string]string{
		"us-east-1": "US East (N. Virginia)",
		"eu-west-3": "Europe (Paris)",
	})

	region, ok := l.Resolve("EU (Paris)")
	require.True(t, ok)
	assert.Equal(t, "eu-west-3", region)

	entries := l.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "eu-west-3", entries[0].Region)
	assert.Equal(t, "us-east-1", entries[1].Region)
}

func TestGetLocationForRegion(t *testing.T) {
	loc, ok := GetLocationForRegion("us-east-2")
	require.True(t, ok)
	assert.Equal(t, "US East (Ohio)", loc)

	_, ok = GetLocationForRegion("xx-nowhere-1")
	assert.False(t, ok)
}
