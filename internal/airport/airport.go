// Package airport provides the static airport capacity model: capacity
// tiers, tier saturation constants, IATA-to-ICAO mapping for schedule
// queries, and airport time zones.
package airport

import (
	"regexp"
	"strings"
	"time"
)

// Tier is a coarse airport-size classification used to scale expected
// traffic volume.
type Tier string

const (
	TierSmall  Tier = "small"
	TierMedium Tier = "medium"
	TierLarge  Tier = "large"
	TierMega   Tier = "mega"
)

// iataToICAO maps IATA codes to ICAO codes for schedule-source queries.
var iataToICAO = map[string]string{
	// Canada
	"YYZ": "CYYZ", "YUL": "CYUL", "YOW": "CYOW", "YVR": "CYVR",
	"YEG": "CYEG", "YWG": "CYWG", "YYC": "CYYC", "YHZ": "CYHZ",
	// US Northeast
	"JFK": "KJFK", "LGA": "KLGA", "EWR": "KEWR", "BOS": "KBOS",
	"PHL": "KPHL", "BWI": "KBWI", "IAD": "KIAD", "DCA": "KDCA",
	// US hubs
	"ATL": "KATL", "ORD": "KORD", "DEN": "KDEN", "DFW": "KDFW",
	"IAH": "KIAH", "CLT": "KCLT", "MSP": "KMSP", "DTW": "KDTW",
	"PHX": "KPHX", "LAS": "KLAS", "SLC": "KSLC",
	// West
	"SEA": "KSEA", "PDX": "KPDX", "SFO": "KSFO", "OAK": "KOAK",
	"SJC": "KSJC", "LAX": "KLAX",
	// South / Florida / Texas
	"MCO": "KMCO", "MIA": "KMIA", "FLL": "KFLL", "TPA": "KTPA",
	"AUS": "KAUS", "DAL": "KDAL",
	// Chicago alt
	"MDW": "KMDW",
}

var (
	canadianIATA = regexp.MustCompile(`^Y[A-Z]{2}$`)
	genericIATA  = regexp.MustCompile(`^[A-Z]{3}$`)
)

// Normalize upper-cases and trims an airport code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IATAToICAO resolves an IATA code to its ICAO equivalent. Codes outside the
// table follow the North American prefix convention: Canadian Y-codes gain a
// C prefix, everything else a K prefix. Returns false for codes that are not
// three letters.
func IATAToICAO(iata string) (string, bool) {
	code := Normalize(iata)
	if icao, ok := iataToICAO[code]; ok {
		return icao, true
	}
	if canadianIATA.MatchString(code) {
		return "C" + code, true
	}
	if genericIATA.MatchString(code) {
		return "K" + code, true
	}
	return "", false
}

// tierOverrides classifies known airports. Anything absent is medium.
var tierOverrides = map[string]Tier{
	// Mega hubs
	"JFK": TierMega, "EWR": TierMega, "LGA": TierLarge,
	"ATL": TierMega, "ORD": TierMega, "LAX": TierMega,
	"DFW": TierMega, "DEN": TierMega, "SFO": TierMega,
	"MIA": TierLarge, "IAH": TierLarge, "CLT": TierLarge,
	"PHX": TierLarge, "SEA": TierLarge, "BOS": TierLarge,
	"PHL": TierLarge, "MSP": TierLarge, "DTW": TierLarge,
	"LAS": TierLarge, "DCA": TierLarge, "IAD": TierLarge,
	// Regionals / medium
	"SJC": TierMedium, "OAK": TierMedium, "PDX": TierMedium,
	"MDW": TierMedium, "DAL": TierMedium, "AUS": TierMedium,
	"TPA": TierMedium, "FLL": TierMedium,
	// Canada
	"YYZ": TierMega, "YUL": TierLarge, "YVR": TierLarge,
	"YOW": TierMedium, "YEG": TierMedium, "YWG": TierSmall,
}

// TierFor returns the capacity tier for an airport code. Accepts IATA or
// North American ICAO (peeled back to IATA where the table knows it).
// Unknown airports default to medium.
func TierFor(code string) Tier {
	k := Normalize(code)
	if len(k) == 4 && (strings.HasPrefix(k, "K") || strings.HasPrefix(k, "C")) {
		for iata, icao := range iataToICAO {
			if icao == k {
				k = iata
				break
			}
		}
	}
	if t, ok := tierOverrides[k]; ok {
		return t
	}
	return TierMedium
}

// saturationByTier is the typical number of departures within a ±90 minute
// window for each tier. Only ever used to derive a percentage, which is
// clamped downstream.
var saturationByTier = map[Tier]int{
	TierSmall:  40,
	TierMedium: 100,
	TierLarge:  200,
	TierMega:   450,
}

// SaturationFor returns the saturation constant for a tier, or for the tier
// of the given airport code when passed a code.
func SaturationFor(tierOrCode string) int {
	switch Tier(tierOrCode) {
	case TierSmall, TierMedium, TierLarge, TierMega:
		return saturationByTier[Tier(tierOrCode)]
	}
	return saturationByTier[TierFor(tierOrCode)]
}

// Saturation returns the saturation constant for a tier.
func Saturation(t Tier) int {
	if s, ok := saturationByTier[t]; ok {
		return s
	}
	return saturationByTier[TierMedium]
}

// timeZones maps IATA codes to IANA time zone names.
var timeZones = map[string]string{
	"YYZ": "America/Toronto", "YOW": "America/Toronto", "YUL": "America/Toronto",
	"YHZ": "America/Halifax", "YVR": "America/Vancouver",
	"YYC": "America/Edmonton", "YEG": "America/Edmonton", "YWG": "America/Winnipeg",
	"JFK": "America/New_York", "LGA": "America/New_York", "EWR": "America/New_York",
	"BOS": "America/New_York", "PHL": "America/New_York", "DCA": "America/New_York",
	"IAD": "America/New_York", "ATL": "America/New_York", "MIA": "America/New_York",
	"CLT": "America/New_York", "BWI": "America/New_York", "DTW": "America/Detroit",
	"MSP": "America/Chicago", "ORD": "America/Chicago", "DFW": "America/Chicago",
	"IAH": "America/Chicago", "DEN": "America/Denver", "SLC": "America/Denver",
	"PHX": "America/Phoenix", "LAX": "America/Los_Angeles", "SFO": "America/Los_Angeles",
	"SAN": "America/Los_Angeles", "SEA": "America/Los_Angeles", "PDX": "America/Los_Angeles",
	"LAS": "America/Los_Angeles",
}

// LocationFor returns the time zone for an airport, or UTC when unknown.
func LocationFor(code string) *time.Location {
	name, ok := timeZones[Normalize(code)]
	if !ok {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Known returns the IATA codes present in the capacity table, for metadata
// endpoints.
func Known() []string {
	codes := make([]string, 0, len(tierOverrides))
	for code := range tierOverrides {
		codes = append(codes, code)
	}
	return codes
}
