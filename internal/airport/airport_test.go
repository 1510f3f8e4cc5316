package airport_test

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runwayready/runwayready/internal/airport"
)

func TestIATAToICAO(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"table hit", "YYZ", "CYYZ", true},
		{"table hit US", "jfk", "KJFK", true},
		{"whitespace and case", " lax ", "KLAX", true},
		{"canadian prefix fallback", "YXE", "CYXE", true},
		{"us prefix fallback", "RDU", "KRDU", true},
		{"too short", "YZ", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := airport.IATAToICAO(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTierFor(t *testing.T) {
	assert.Equal(t, airport.TierMega, airport.TierFor("YYZ"))
	assert.Equal(t, airport.TierLarge, airport.TierFor("yul"))
	assert.Equal(t, airport.TierSmall, airport.TierFor("YWG"))
	assert.Equal(t, airport.TierMedium, airport.TierFor("YQR"), "unknown defaults to medium")

	// ICAO codes peel back to IATA where the table knows them.
	assert.Equal(t, airport.TierMega, airport.TierFor("CYYZ"))
	assert.Equal(t, airport.TierMega, airport.TierFor("KJFK"))
}

func TestSaturation(t *testing.T) {
	assert.Equal(t, 40, airport.Saturation(airport.TierSmall))
	assert.Equal(t, 100, airport.Saturation(airport.TierMedium))
	assert.Equal(t, 200, airport.Saturation(airport.TierLarge))
	assert.Equal(t, 450, airport.Saturation(airport.TierMega))
	assert.Equal(t, 100, airport.Saturation(airport.Tier("unknown")))
}

func TestSaturationFor(t *testing.T) {
	// Tier names resolve directly.
	assert.Equal(t, 450, airport.SaturationFor("mega"))
	// Airport codes resolve via their tier.
	assert.Equal(t, 450, airport.SaturationFor("YYZ"))
	assert.Equal(t, 100, airport.SaturationFor("XXX"))
}

func TestLocationFor(t *testing.T) {
	loc := airport.LocationFor("YYZ")
	require.NotNil(t, loc)
	assert.Equal(t, "America/Toronto", loc.String())

	assert.Equal(t, time.UTC, airport.LocationFor("???"))
}

func TestKnown(t *testing.T) {
	codes := airport.Known()
	require.NotEmpty(t, codes)
	sort.Strings(codes)
	assert.Contains(t, codes, "YYZ")
	assert.Contains(t, codes, "JFK")
}
