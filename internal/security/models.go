// Package security predicts security screening wait times via a priority
// chain of strategies: explicit override, live wait-time sources, a
// schedule-plus-load model, and an hour-of-day heuristic.
package security

import (
	"context"
	"errors"
	"time"

	"github.com/runwayready/runwayready/internal/schedule"
)

// Security errors.
var (
	// ErrUnsupportedAirport means a live source has no coverage for the
	// airport; callers skip to the next source.
	ErrUnsupportedAirport = errors.New("airport not covered by this source")

	// ErrNoWaitData means the source responded but no usable wait time
	// could be extracted.
	ErrNoWaitData = errors.New("no wait time data")
)

// Source identifies where a wait estimate came from.
type Source string

const (
	SourceOverride     Source = "override"
	SourceCATSA        Source = "catsa"
	SourceTSA          Source = "tsa"
	SourceTSARapidAPI  Source = "tsa-rapidapi"
	SourceScheduleLoad Source = "schedule+load"
	SourceEstimate     Source = "estimate"
)

// Wait bounds: estimates are always clamped to this range regardless of
// where they came from.
const (
	MinWaitMinutes = 5
	MaxWaitMinutes = 90
)

// ClampMinutes clamps a wait estimate to [MinWaitMinutes, MaxWaitMinutes].
func ClampMinutes(m int) int {
	if m < MinWaitMinutes {
		return MinWaitMinutes
	}
	if m > MaxWaitMinutes {
		return MaxWaitMinutes
	}
	return m
}

// LiveWait is a wait time observed from a live source.
type LiveWait struct {
	// Minutes is the reported wait.
	Minutes int

	// Source labels the live source.
	Source Source

	// Detail is a short human-readable provenance note.
	Detail string
}

// LiveSource fetches a live security wait for an airport. Implementations
// return ErrUnsupportedAirport when they have no coverage so the chain can
// move on without logging a failure.
type LiveSource interface {
	Fetch(ctx context.Context, iata string) (*LiveWait, error)
	Name() string
}

// Prediction is the schedule-plus-load wait estimate.
type Prediction struct {
	// Minutes is the final clamped estimate.
	Minutes int

	// Detail describes the busyness input that produced the estimate.
	Detail string

	// Busyness is the underlying score.
	Busyness schedule.Busyness

	// Label buckets the busyness: light, moderate, heavy, or peak.
	Label string

	// RangeLowMin and RangeHighMin are the display range around Minutes.
	RangeLowMin  int
	RangeHighMin int

	// DeltaVsTypicalMin is the difference from the hour-of-day baseline.
	DeltaVsTypicalMin int

	// Summary is a one-line human-readable description.
	Summary string
}

// BusynessService is the slice of the schedule service the estimator needs.
type BusynessService interface {
	Busyness(ctx context.Context, iata string, dep time.Time, windowMin int) schedule.Busyness
}
