package security

import (
	"math"
	"time"

	"github.com/runwayready/runwayready/internal/airport"
)

// Airport size classes for the hour-of-day baseline. These modest
// multipliers are tuned for advance planning, not worst-case waits.
var (
	majorHubs = map[string]bool{
		"YYZ": true, "YVR": true, "YUL": true, "YYC": true,
		"LAX": true, "JFK": true, "LGA": true, "EWR": true,
		"ORD": true, "ATL": true, "DFW": true, "DEN": true,
		"SFO": true, "SEA": true, "BOS": true, "IAD": true, "DCA": true,
	}
	largeAirports = map[string]bool{
		"YOW": true, "YEG": true, "YWG": true, "YHZ": true,
		"PHX": true, "LAS": true, "MIA": true, "MCO": true,
		"CLT": true, "MSP": true, "DTW": true, "PHL": true,
	}
	smallAirports = map[string]bool{
		"YTZ": true, "YQR": true, "YKF": true, "YQG": true,
	}
)

// EstimateByHour is the heuristic fallback wait estimate: an hour-of-day
// baseline scaled by airport size class, with a trusted-traveler discount.
// The hour is taken in the airport's local time zone.
func EstimateByHour(iata string, dep time.Time, trustedTraveler bool) int {
	hour := dep.In(airport.LocationFor(iata)).Hour()

	base := 12
	switch {
	case hour >= 5 && hour < 8:
		base = 18 // early morning rush
	case hour >= 8 && hour < 11:
		base = 15
	case hour >= 11 && hour < 15:
		base = 12
	case hour >= 15 && hour < 19:
		base = 16 // afternoon rush
	case hour >= 19 && hour < 23:
		base = 10
	default:
		base = 8 // late night
	}

	code := airport.Normalize(iata)
	switch {
	case majorHubs[code]:
		base = int(math.Round(float64(base) * 1.3))
	case largeAirports[code]:
		base = int(math.Round(float64(base) * 1.1))
	case smallAirports[code]:
		base = max(5, base-3)
	}

	if trustedTraveler {
		base = max(5, int(math.Round(float64(base)*0.6)))
	}
	return base
}
