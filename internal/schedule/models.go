// Package schedule derives an airport busyness score from departure
// schedules, normalized against the airport's capacity tier.
package schedule

import (
	"context"
	"errors"

	"github.com/runwayready/runwayready/internal/airport"
)

// Schedule errors.
var (
	ErrProviderUnavailable = errors.New("schedule provider unavailable")
	ErrNoDepartures        = errors.New("no departures in window")
)

// Source identifies how a busyness score was produced.
type Source string

const (
	// SourceScheduleLoad means the score came from real departure counts.
	SourceScheduleLoad Source = "schedule+load"

	// SourceHeuristic means the score came from the hour-of-day curve.
	SourceHeuristic Source = "heuristic"
)

// Busyness is a normalized 1-100 measure of how full an airport's departure
// schedule is around a departure time.
type Busyness struct {
	// DeparturesInWindow is the observed departure count (0 for heuristic).
	DeparturesInWindow int `json:"departuresInWindow"`

	// Percent is in [1,100]. Never 0, so downstream consumers can treat
	// the zero value as "absent".
	Percent int `json:"percent"`

	// Source is schedule+load or heuristic.
	Source Source `json:"source"`

	// Tier is the airport's capacity tier used for normalization.
	Tier airport.Tier `json:"tier"`

	// WindowMin is the half-window in minutes the count was taken over.
	WindowMin int `json:"windowMin"`

	// Note explains a heuristic fallback, empty for schedule+load.
	Note string `json:"note,omitempty"`
}

// FlightRecord is a raw flight payload from a schedule provider. Field names
// vary across providers and plan tiers, so extraction is shape-tolerant.
type FlightRecord map[string]any

// Provider fetches departures for an airport in a local-time window.
type Provider interface {
	// FetchDepartures returns raw departure records between two local wall
	// times formatted as 2006-01-02T15:04.
	FetchDepartures(ctx context.Context, icao, fromLocal, toLocal string) ([]FlightRecord, error)

	// Name identifies the provider for logging.
	Name() string
}
