// Package risk scores flight delay probability by summing independent
// capped factors: airport traffic, timing, airport history, seasonality,
// holiday surge, airline reliability, and travel-group size.
package risk

import (
	"fmt"
	"strings"
	"time"

	"github.com/runwayready/runwayready/internal/holiday"
	"github.com/runwayready/runwayready/internal/schedule"
)

// Tier is the overall risk label.
type Tier string

const (
	TierLow      Tier = "Low"
	TierModerate Tier = "Moderate"
	TierHigh     Tier = "High"
	TierVeryHigh Tier = "Very High"
	TierExtreme  Tier = "Extreme"
	TierUnknown  Tier = "Unknown"
)

// Factor is one scored contribution to the overall risk.
type Factor struct {
	// Factor names the contribution.
	Factor string `json:"factor"`

	// Impact is the tier label for this factor alone.
	Impact string `json:"impact"`

	// Description explains the score in plain language.
	Description string `json:"description"`

	// Points is the contribution to the total.
	Points int `json:"points"`
}

// Assessment is a complete delay risk evaluation.
type Assessment struct {
	OverallRisk     Tier     `json:"overallRisk"`
	RiskScore       int      `json:"riskScore"`
	Factors         []Factor `json:"factors"`
	Recommendations []string `json:"recommendations"`
}

// Input is a risk scoring request. Departure must be in airport-local time
// so the hour and weekday buckets line up with operations on the ground.
type Input struct {
	// Airport is the departure airport IATA code.
	Airport string

	// AirlineCode is the two-letter IATA carrier code (optional).
	AirlineCode string

	// Departure is the scheduled departure in airport-local time.
	Departure time.Time

	// International marks cross-border itineraries.
	International bool

	// GroupSize is the traveler count (default 1).
	GroupSize int

	// Busyness is the schedule-derived airport load, when available.
	Busyness *schedule.Busyness
}

// airportDelayHistory holds airports with documented chronic delay patterns.
var airportDelayHistory = map[string]struct {
	points int
	desc   string
}{
	"LGA": {20, "LaGuardia - historically high delays"},
	"EWR": {18, "Newark - frequent ATC delays"},
	"JFK": {15, "JFK - large hub with congestion issues"},
	"ORD": {17, "O'Hare - weather and volume delays common"},
	"ATL": {12, "Atlanta - busiest airport, moderate delays"},
	"LAX": {14, "LAX - traffic and runway constraints"},
	"SFO": {16, "San Francisco - fog and traffic delays"},
	"BOS": {13, "Boston - weather and congestion"},
	"DCA": {15, "Reagan National - slot restrictions"},
	"YYZ": {10, "Toronto Pearson - moderate delay risk"},
	"YVR": {8, "Vancouver - weather delays possible"},
	"YUL": {9, "Montreal - seasonal weather delays"},
}

// airlineReliability scores carriers by on-time performance. Higher points
// mean less reliable.
var airlineReliability = map[string]struct {
	points      int
	desc        string
	reliability string
}{
	"AC": {20, "Air Canada - frequent delays and cancellations", "Poor"},
	"WS": {18, "WestJet - above-average delay rates", "Below Average"},
	"F9": {22, "Frontier - budget airline with high delay rates", "Poor"},
	"NK": {25, "Spirit Airlines - lowest reliability in US", "Very Poor"},
	"B6": {16, "JetBlue - moderate delay issues", "Below Average"},
	"UA": {14, "United Airlines - moderate reliability issues", "Below Average"},
	"AA": {12, "American Airlines - some delay issues", "Average"},
	"DL": {8, "Delta Airlines - above-average reliability", "Good"},
	"AS": {7, "Alaska Airlines - excellent punctuality", "Excellent"},
	"WN": {10, "Southwest - generally reliable", "Good"},
	"TS": {12, "Air Transat - seasonal reliability issues", "Average"},
	"LH": {6, "Lufthansa - excellent German efficiency", "Excellent"},
	"KL": {7, "KLM - very reliable Dutch carrier", "Excellent"},
	"AF": {10, "Air France - generally punctual", "Good"},
	"BA": {12, "British Airways - moderate reliability", "Average"},
	"VS": {8, "Virgin Atlantic - good reliability", "Good"},
	"FR": {15, "Ryanair - budget airline delays common", "Below Average"},
	"U2": {14, "easyJet - typical budget airline issues", "Below Average"},
	"SQ": {3, "Singapore Airlines - world-class reliability", "Outstanding"},
	"NH": {4, "ANA - exceptional Japanese punctuality", "Outstanding"},
	"JL": {4, "Japan Airlines - excellent reliability", "Outstanding"},
	"CX": {6, "Cathay Pacific - very reliable", "Excellent"},
	"TG": {8, "Thai Airways - good reliability", "Good"},
	"EK": {7, "Emirates - generally very reliable", "Excellent"},
	"QR": {6, "Qatar Airways - excellent punctuality", "Excellent"},
	"EY": {8, "Etihad Airways - good reliability", "Good"},
	"QF": {9, "Qantas - good but some delays", "Good"},
	"NZ": {7, "Air New Zealand - very reliable", "Excellent"},
	"LX": {5, "Swiss International - excellent reliability", "Outstanding"},
}

// Score sums the delay risk factors for a flight. A zero departure time
// yields an Unknown assessment rather than an error.
func Score(in Input) Assessment {
	if in.Departure.IsZero() {
		return Assessment{
			OverallRisk:     TierUnknown,
			RiskScore:       0,
			Factors:         []Factor{},
			Recommendations: []string{"Verify departure time for accurate delay prediction."},
		}
	}

	groupSize := in.GroupSize
	if groupSize < 1 {
		groupSize = 1
	}

	score := 0
	factors := make([]Factor, 0, 9)
	add := func(f Factor) {
		score += f.Points
		factors = append(factors, f)
	}

	if in.Busyness != nil && in.Busyness.Percent > 0 {
		pct := in.Busyness.Percent
		points := int(float64(pct)*0.4 + 0.5)
		impact := "Low"
		if pct >= 70 {
			impact = "High"
		} else if pct >= 40 {
			impact = "Moderate"
		}
		add(Factor{
			Factor:      "Airport Traffic",
			Impact:      impact,
			Description: fmt.Sprintf("%d departures in ±%d min window (%d%% capacity)", in.Busyness.DeparturesInWindow, in.Busyness.WindowMin, pct),
			Points:      points,
		})
	}

	add(timeOfDayFactor(in.Departure.Hour()))
	add(dayOfWeekFactor(in.Departure.Weekday()))
	add(airportHistoryFactor(strings.ToUpper(in.Airport)))

	if in.International {
		add(Factor{
			Factor:      "Flight Type",
			Impact:      "Moderate",
			Description: "International flight - additional processing delays possible",
			Points:      10,
		})
	}

	add(seasonalFactor(in.Departure.Month()))

	if surge := holiday.SurgeFor(in.Departure); surge.Factor > 0 {
		add(Factor{
			Factor:      "Holiday Travel Surge",
			Impact:      string(surge.Severity),
			Description: surge.Description,
			Points:      surge.Factor,
		})
	}

	if in.AirlineCode != "" {
		add(airlineFactor(strings.ToUpper(in.AirlineCode)))
	}

	if groupSize > 2 {
		points, impact, desc := groupSizeDelay(groupSize)
		add(Factor{
			Factor:      "Travel Group Size",
			Impact:      impact,
			Description: fmt.Sprintf("%d travelers - %s", groupSize, desc),
			Points:      points,
		})
	}

	tier, recs := tierFor(score, in.AirlineCode, groupSize)
	return Assessment{
		OverallRisk:     tier,
		RiskScore:       score,
		Factors:         factors,
		Recommendations: recs,
	}
}

func timeOfDayFactor(hour int) Factor {
	points, desc := 8, "Mid-morning - moderate delay risk"
	switch {
	case hour >= 6 && hour < 9:
		points, desc = 25, "Morning rush hour - peak delay period"
	case hour >= 17 && hour < 20:
		points, desc = 20, "Evening rush hour - high delay risk"
	case hour >= 12 && hour < 17:
		points, desc = 10, "Afternoon - moderate delay risk"
	case hour >= 21 || hour < 6:
		points, desc = 5, "Off-peak hours - low delay risk"
	}

	impact := "Low"
	if points >= 20 {
		impact = "High"
	} else if points >= 10 {
		impact = "Moderate"
	}
	return Factor{Factor: "Departure Time", Impact: impact, Description: desc, Points: points}
}

func dayOfWeekFactor(day time.Weekday) Factor {
	points, desc := 8, "Mid-week - moderate delay risk"
	switch day {
	case time.Monday:
		points, desc = 15, "Monday - highest delay risk day"
	case time.Friday:
		points, desc = 12, "Friday - high delay risk"
	case time.Thursday:
		points, desc = 10, "Thursday - moderate delay risk"
	case time.Saturday, time.Sunday:
		points, desc = 5, "Weekend - lower delay risk"
	}

	impact := "Low"
	if points >= 12 {
		impact = "High"
	} else if points >= 8 {
		impact = "Moderate"
	}
	return Factor{Factor: "Day of Week", Impact: impact, Description: desc, Points: points}
}

func airportHistoryFactor(code string) Factor {
	entry, ok := airportDelayHistory[code]
	if !ok {
		return Factor{
			Factor:      "Airport History",
			Impact:      "Low",
			Description: "No significant historical delay patterns",
			Points:      0,
		}
	}

	impact := "Low"
	if entry.points >= 15 {
		impact = "High"
	} else if entry.points >= 10 {
		impact = "Moderate"
	}
	return Factor{Factor: "Airport History", Impact: impact, Description: entry.desc, Points: entry.points}
}

func seasonalFactor(month time.Month) Factor {
	points, desc := 5, "Mild season - minimal weather delays expected"
	switch {
	case month == time.December || month <= time.March:
		points, desc = 15, "Winter season - snow and ice delays likely"
	case month >= time.June && month <= time.September:
		points, desc = 8, "Summer season - thunderstorm delays possible"
	}

	impact := "Low"
	if points >= 12 {
		impact = "High"
	} else if points >= 8 {
		impact = "Moderate"
	}
	return Factor{Factor: "Seasonal Weather", Impact: impact, Description: desc, Points: points}
}

func airlineFactor(code string) Factor {
	entry, ok := airlineReliability[code]
	if !ok {
		return Factor{
			Factor:      "Airline Reliability",
			Impact:      "Unknown",
			Description: "Airline reliability data not available",
			Points:      0,
		}
	}

	var impact string
	switch entry.reliability {
	case "Very Poor":
		impact = "Very High"
	case "Poor":
		impact = "High"
	case "Below Average":
		impact = "Moderate"
	case "Average":
		impact = "Low"
	default:
		impact = "Very Low"
	}
	return Factor{Factor: "Airline Reliability", Impact: impact, Description: entry.desc, Points: entry.points}
}

func groupSizeDelay(size int) (points int, impact, desc string) {
	switch {
	case size <= 5:
		return 8, "Moderate", "coordination and check-in delays likely"
	case size <= 10:
		return 15, "High", "significant coordination delays expected"
	default:
		return 25, "Very High", "major delays for coordination and processing"
	}
}

// tierFor maps the total score to a tier with its recommendation list.
// A couple of entries are conditional on the unreliable-airline and
// large-group contexts.
func tierFor(score int, airlineCode string, groupSize int) (Tier, []string) {
	switch {
	case score >= 120:
		return TierExtreme, []string{
			"Arrive at airport 3+ hours early",
			"Strongly consider travel insurance",
			"Have multiple backup travel plans",
			"Monitor conditions hourly before departure",
			"Consider postponing non-essential travel",
		}
	case score >= 90:
		recs := []string{
			"Arrive at the airport extra early (2.5+ hours)",
			"Consider travel insurance for this flight",
			"Monitor weather and airport conditions closely",
			"Have backup travel plans ready",
		}
		if entry, ok := airlineReliability[strings.ToUpper(airlineCode)]; ok && entry.points > 15 {
			recs = append(recs, "Consider alternative airlines for future travel")
		}
		return TierVeryHigh, recs
	case score >= 60:
		recs := []string{
			"Add extra buffer time to your schedule",
			"Check in online and get mobile boarding passes",
			"Monitor flight status regularly",
			"Consider earlier connections if applicable",
		}
		if groupSize > 5 {
			recs = append(recs, "Coordinate group arrival and check-in process in advance")
		}
		return TierHigh, recs
	case score >= 35:
		return TierModerate, []string{
			"Follow standard arrival recommendations",
			"Check flight status before leaving",
			"Keep some flexibility in your schedule",
		}
	default:
		return TierLow, []string{
			"Standard procedures should be sufficient",
			"Minimal risk of significant delays expected",
		}
	}
}
