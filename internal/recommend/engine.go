package recommend

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/runwayready/runwayready/internal/airline"
	"github.com/runwayready/runwayready/internal/airport"
	"github.com/runwayready/runwayready/internal/security"
)

// Fixed terminal buffers in minutes.
const (
	walkBufferInternational = 20
	walkBufferDomestic      = 12
	airportMiscBuffer       = 8

	arrivalBufferSelfPark  = 20
	arrivalBufferDropoff   = 8
	arrivalBufferRideshare = 12

	policyFloorInternational = 120
	policyFloorDomestic      = 75
)

// scheduleLoadHorizon is the lead time beyond which live wait readings stop
// being meaningful and the schedule-based estimator takes over.
const scheduleLoadHorizon = 6 * time.Hour

// SecurityEstimator is the slice of the security service the engine needs.
type SecurityEstimator interface {
	PredictWithLoad(ctx context.Context, iata string, dep time.Time, trustedTraveler bool) security.Prediction
	Live(ctx context.Context, iata string) *security.LiveWait
}

// EngineConfig holds configuration for the recommendation engine.
type EngineConfig struct {
	// Security resolves wait estimates. Required.
	Security SecurityEstimator

	// Logger for engine operations.
	Logger zerolog.Logger

	// Now is the clock, injectable for tests. Defaults to time.Now.
	Now func() time.Time
}

// Engine computes arrival recommendations.
type Engine struct {
	security SecurityEstimator
	logger   zerolog.Logger
	now      func() time.Time
}

// NewEngine creates a new recommendation engine.
func NewEngine(cfg EngineConfig) *Engine {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		security: cfg.Security,
		logger:   cfg.Logger,
		now:      now,
	}
}

var iataPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// parseDeparture accepts RFC 3339 or minute-precision local timestamps,
// interpreting zoneless values in the airport's zone.
func parseDeparture(value string, loc *time.Location) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDeparture
}

// Compute derives the recommended airport arrival time for a departure.
// Malformed input fails fast; external-source trouble never does, it only
// degrades the security estimate.
func (e *Engine) Compute(ctx context.Context, input Input) (*Output, error) {
	code := airport.Normalize(input.Airport)
	if code == "" {
		return nil, ErrMissingAirport
	}
	if !iataPattern.MatchString(code) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAirport, input.Airport)
	}
	if input.DepartureLocal == "" {
		return nil, ErrInvalidDeparture
	}

	loc := airport.LocationFor(code)
	dep, err := parseDeparture(input.DepartureLocal, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDeparture, input.DepartureLocal)
	}
	dep = dep.In(loc)

	ft := input.FlightType
	if ft != airline.FlightInternational {
		ft = airline.FlightDomestic
	}

	rule := airline.RuleFor(input.Airline)
	gateCloseLeadMin := rule.GateCloseLead.For(ft)

	var bagDropCutoffMin, bagDropProcessMin *int
	if input.Options.CheckedBags {
		cutoff := rule.BagDropCutoff.For(ft)
		process := rule.BagDropProcessMin
		bagDropCutoffMin = &cutoff
		bagDropProcessMin = &process
	}

	horizon := dep.Sub(e.now())
	horizonHours := int(math.Round(horizon.Hours()))
	if horizonHours < 0 {
		horizonHours = 0
	}

	meta := Meta{HorizonHours: horizonHours}
	securityWaitMin := e.resolveSecurityWait(ctx, code, dep, input.Options, horizon, &meta)

	walkBufferMin := walkBufferDomestic
	if ft == airline.FlightInternational {
		walkBufferMin = walkBufferInternational
	}

	arrivalBufferMin := arrivalBufferRideshare
	switch input.Options.RideType {
	case RideSelfPark:
		arrivalBufferMin = arrivalBufferSelfPark
	case RideDropoff:
		arrivalBufferMin = arrivalBufferDropoff
	}

	gateScenarioMin := gateCloseLeadMin + securityWaitMin + walkBufferMin + airportMiscBuffer
	bagScenarioMin := 0
	if bagDropCutoffMin != nil && bagDropProcessMin != nil {
		bagScenarioMin = *bagDropCutoffMin + *bagDropProcessMin
	}
	policyFloorMin := policyFloorDomestic
	if ft == airline.FlightInternational {
		policyFloorMin = policyFloorInternational
	}

	chosenMin := max(gateScenarioMin, bagScenarioMin, policyFloorMin)
	constraint := ConstraintPolicyFloor
	switch chosenMin {
	case gateScenarioMin:
		constraint = ConstraintGateClose
	case bagScenarioMin:
		constraint = ConstraintBagDrop
	}

	meta.Constraint = constraint
	meta.LeadMinutes = LeadMinutes{
		GateScenarioMin: gateScenarioMin,
		BagScenarioMin:  bagScenarioMin,
		PolicyFloorMin:  policyFloorMin,
		ChosenMin:       chosenMin,
	}

	arrive := dep.Add(-time.Duration(chosenMin) * time.Minute)
	aggressive := arrive.Add(10 * time.Minute)
	cautious := arrive.Add(-20 * time.Minute)

	e.logger.Debug().
		Str("airport", code).
		Str("flight_type", string(ft)).
		Int("chosen_min", chosenMin).
		Str("constraint", string(constraint)).
		Str("security_source", string(meta.SecuritySource)).
		Msg("recommendation computed")

	return &Output{
		LeaveBy:       arrive,
		ArriveAirport: arrive,
		Breakdown: Breakdown{
			GateCloseLeadMin:     gateCloseLeadMin,
			SecurityWaitMin:      securityWaitMin,
			WalkBufferMin:        walkBufferMin,
			AirportMiscBufferMin: airportMiscBuffer,
			BagDropCutoffMin:     bagDropCutoffMin,
			BagDropProcessMin:    bagDropProcessMin,
			ArrivalBufferMin:     arrivalBufferMin,
		},
		Bands: Bands{
			AggressiveArrive: aggressive,
			NormalArrive:     arrive,
			CautiousArrive:   cautious,
			AggressiveLeave:  aggressive,
			NormalLeave:      arrive,
			CautiousLeave:    cautious,
		},
		Warnings: advisoryNotes(ft, input.Options),
		Meta:     meta,
	}, nil
}

// resolveSecurityWait applies the estimation priority chain: explicit
// override, schedule+load beyond the horizon, live sources, hour-of-day
// baseline. Fills the meta provenance fields as a side effect.
func (e *Engine) resolveSecurityWait(ctx context.Context, code string, dep time.Time, opts Options, horizon time.Duration, meta *Meta) int {
	if opts.SecurityOverrideMinutes != nil {
		meta.SecuritySource = security.SourceOverride
		return security.ClampMinutes(*opts.SecurityOverrideMinutes)
	}

	if horizon >= scheduleLoadHorizon {
		pred := e.security.PredictWithLoad(ctx, code, dep, opts.TrustedTraveler)
		meta.SecuritySource = security.SourceScheduleLoad
		meta.SecurityDetail = pred.Detail
		busyness := pred.Busyness
		meta.Busyness = &busyness
		return pred.Minutes
	}

	if live := e.security.Live(ctx, code); live != nil && live.Minutes > 0 {
		meta.SecuritySource = live.Source
		meta.SecurityDetail = live.Detail
		return security.ClampMinutes(live.Minutes)
	}

	meta.SecuritySource = security.SourceEstimate
	meta.SecurityDetail = "by-hour baseline"
	return security.EstimateByHour(code, dep, opts.TrustedTraveler)
}

// advisoryNotes mirrors the recommendation back as short caveats.
func advisoryNotes(ft airline.FlightType, opts Options) []string {
	notes := make([]string, 0, 3)

	switch {
	case opts.AlreadyCheckedIn && !opts.CheckedBags:
		notes = append(notes, "Already checked in with carry-on only; no check-in time needed.")
	case opts.CheckedBags:
		notes = append(notes, "Includes time for checked-bag drop and check-in.")
	default:
		notes = append(notes, "Carry-on only, no bag-drop time added.")
	}

	if opts.TrustedTraveler {
		notes = append(notes, "Trusted-traveler screening expected to shorten the security wait.")
	}

	if ft == airline.FlightInternational {
		notes = append(notes, "International departure: extra time for document checks is built in.")
	}

	return notes
}
