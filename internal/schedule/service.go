package schedule

import (
	"context"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/runwayready/runwayready/internal/airport"
)

const (
	// DefaultWindowMin is the half-window used to count departures.
	DefaultWindowMin = 90

	// fetchHalfWindowMin is the half-window for the provider fetch. Wider
	// than the count window, but under the 12 hour cap schedule APIs
	// commonly enforce on range queries.
	fetchHalfWindowMin = 355

	// localTimeLayout is the wall-time format schedule providers expect.
	localTimeLayout = "2006-01-02T15:04"
)

// ServiceConfig holds configuration for the busyness service.
type ServiceConfig struct {
	// Provider is the schedule data source. May be nil, in which case
	// every request resolves heuristically.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service computes airport busyness from departure schedules, falling back
// to an hour-of-day heuristic whenever schedule data is unusable. It never
// returns an error: every failure mode degrades to the heuristic.
type Service struct {
	provider Provider
	logger   zerolog.Logger
}

// NewService creates a new busyness service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// Busyness returns the busyness around a departure time. The departure must
// already be an instant; windowMin <= 0 uses DefaultWindowMin.
func (s *Service) Busyness(ctx context.Context, iata string, dep time.Time, windowMin int) Busyness {
	if windowMin <= 0 {
		windowMin = DefaultWindowMin
	}

	tier := airport.TierFor(iata)

	icao, ok := airport.IATAToICAO(iata)
	if !ok || s.provider == nil {
		return s.heuristic(iata, dep, tier, windowMin, "no ICAO mapping")
	}

	loc := airport.LocationFor(iata)
	fromLocal := dep.Add(-fetchHalfWindowMin * time.Minute).In(loc).Format(localTimeLayout)
	toLocal := dep.Add(fetchHalfWindowMin * time.Minute).In(loc).Format(localTimeLayout)

	records, err := s.provider.FetchDepartures(ctx, icao, fromLocal, toLocal)
	if err != nil || len(records) == 0 {
		s.logger.Warn().
			Str("icao", icao).
			Str("from", fromLocal).
			Str("to", toLocal).
			Err(err).
			Msg("empty or failed schedule fetch, using heuristic")
		return s.heuristic(iata, dep, tier, windowMin, "no schedule data")
	}

	times := make([]time.Time, 0, len(records))
	for _, rec := range records {
		if when, ok := departureTime(rec, loc); ok {
			times = append(times, when)
		}
	}
	if len(times) == 0 {
		s.logger.Warn().
			Str("icao", icao).
			Int("records", len(records)).
			Msg("flights with unrecognized time fields, using heuristic")
		return s.heuristic(iata, dep, tier, windowMin, "unrecognized time fields")
	}

	count := 0
	window := time.Duration(windowMin) * time.Minute
	for _, when := range times {
		if absDuration(when.Sub(dep)) <= window {
			count++
		}
	}
	if count == 0 {
		s.logger.Warn().
			Str("icao", icao).
			Int("total", len(times)).
			Int("window_min", windowMin).
			Msg("flights present but none within window, using heuristic")
		return s.heuristic(iata, dep, tier, windowMin, "no flights within window")
	}

	sat := airport.Saturation(tier)
	percent := clamp(int(math.Round(float64(count)/float64(sat)*100)), 0, 100)
	if percent == 0 {
		percent = 1
	}

	s.logger.Info().
		Str("iata", iata).
		Str("icao", icao).
		Int("count", count).
		Int("window_min", windowMin).
		Int("percent", percent).
		Msg("schedule window computed")

	return Busyness{
		DeparturesInWindow: count,
		Percent:            percent,
		Source:             SourceScheduleLoad,
		Tier:               tier,
		WindowMin:          windowMin,
	}
}

// heuristic builds a busyness result from the hour-of-day curve.
func (s *Service) heuristic(iata string, dep time.Time, tier airport.Tier, windowMin int, note string) Busyness {
	percent := HourlyPercent(dep.In(airport.LocationFor(iata)).Hour(), tier)
	return Busyness{
		DeparturesInWindow: 0,
		Percent:            percent,
		Source:             SourceHeuristic,
		Tier:               tier,
		WindowMin:          windowMin,
		Note:               note,
	}
}

// HourlyPercent is the hour-of-day busyness curve, nudged by capacity tier.
// Peaks in the morning and evening rush, troughs overnight. Always in
// [1,100].
func HourlyPercent(hour int, tier airport.Tier) int {
	var base int
	switch {
	case hour >= 5 && hour < 7:
		base = 60
	case hour >= 7 && hour < 10:
		base = 75
	case hour >= 10 && hour < 13:
		base = 60
	case hour >= 13 && hour < 16:
		base = 65
	case hour >= 16 && hour < 19:
		base = 75
	case hour >= 19 && hour < 22:
		base = 50
	default:
		base = 25
	}

	switch tier {
	case airport.TierSmall:
		base -= 10
	case airport.TierLarge:
		base += 5
	case airport.TierMega:
		base += 10
	}

	return clamp(base, 1, 100)
}

// timePaths are the known field paths for a scheduled departure time, in
// priority order, across provider endpoints and plan tiers.
var timePaths = [][]string{
	{"movement", "scheduledTimeLocal"},
	{"movement", "scheduledTimeUtc"},
	{"movement", "scheduledTime"},
	{"departure", "scheduledTimeLocal"},
	{"departure", "scheduledTimeUtc"},
	{"departure", "scheduledTime"},
	{"time", "scheduled", "departure", "local"},
	{"time", "scheduled", "departure", "utc"},
	{"times", "scheduled", "departure", "local"},
	{"times", "scheduled", "departure", "utc"},
	{"schedule", "departure", "local"},
	{"schedule", "departure", "utc"},
	{"scheduled", "departure", "local"},
	{"scheduled", "departure", "utc"},
}

var (
	looksLikeTimestamp = regexp.MustCompile(`\d{4}-\d{2}-\d{2}T?\d{2}:\d{2}`)
	minutePrecision    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}$`)
)

// departureTime extracts the scheduled departure time from a raw flight
// record, probing known field paths first and then any top-level value that
// looks like a timestamp.
func departureTime(rec FlightRecord, loc *time.Location) (time.Time, bool) {
	for _, path := range timePaths {
		var node any = map[string]any(rec)
		for _, key := range path {
			m, ok := node.(map[string]any)
			if !ok {
				node = nil
				break
			}
			node = m[key]
		}
		if s, ok := timeString(node); ok {
			if t, ok := parseFlexible(s, loc); ok {
				return t, true
			}
		}
	}

	for _, v := range rec {
		s, ok := timeString(v)
		if !ok || !looksLikeTimestamp.MatchString(s) {
			continue
		}
		if t, ok := parseFlexible(s, loc); ok {
			return t, true
		}
	}

	return time.Time{}, false
}

// timeString pulls a candidate timestamp string out of a value: either the
// string itself or the local/utc members of a nested object.
func timeString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		if val != "" {
			return normalizeISO(val), true
		}
	case map[string]any:
		if s, ok := timeString(val["local"]); ok {
			return s, true
		}
		if s, ok := timeString(val["utc"]); ok {
			return s, true
		}
	}
	return "", false
}

// normalizeISO repairs common wall-time spellings: a space instead of T,
// and missing seconds.
func normalizeISO(s string) string {
	t := strings.TrimSpace(s)
	if len(t) > 10 && t[10] == ' ' {
		t = t[:10] + "T" + t[11:]
	}
	if minutePrecision.MatchString(t) {
		t += ":00"
	}
	return t
}

// parseFlexible parses a timestamp that may or may not carry a zone offset.
// Zoneless timestamps are interpreted in the given location.
func parseFlexible(s string, loc *time.Location) (time.Time, bool) {
	s = normalizeISO(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04Z07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
