// Package recommend computes airport arrival recommendations: the latest
// sensible arrival time before a departure, from airline policy, security
// wait, and fixed terminal buffers.
package recommend

import (
	"errors"
	"time"

	"github.com/runwayready/runwayready/internal/airline"
	"github.com/runwayready/runwayready/internal/schedule"
	"github.com/runwayready/runwayready/internal/security"
)

// Recommendation errors.
var (
	ErrMissingAirport   = errors.New("airport code is required")
	ErrInvalidAirport   = errors.New("airport must be a 3-letter IATA code")
	ErrInvalidDeparture = errors.New("departure time is missing or malformed")
)

// RideType selects the arrival-buffer profile for the trip to the airport.
type RideType string

const (
	RideRideshare RideType = "rideshare"
	RideSelfPark  RideType = "self-park"
	RideDropoff   RideType = "dropoff"
)

// Constraint names the scenario that bound the chosen lead time.
type Constraint string

const (
	ConstraintGateClose   Constraint = "gate-close"
	ConstraintBagDrop     Constraint = "bag-drop"
	ConstraintPolicyFloor Constraint = "policy-floor"
)

// Options are the optional per-trip modifiers.
type Options struct {
	// CheckedBags adds the bag-drop cutoff scenario.
	CheckedBags bool `json:"checkedBags"`

	// TrustedTraveler discounts security wait estimates.
	TrustedTraveler bool `json:"trustedTraveler"`

	// RideType is rideshare, self-park, or dropoff (default rideshare).
	RideType RideType `json:"rideType,omitempty"`

	// SecurityOverrideMinutes replaces the estimated security wait when set.
	SecurityOverrideMinutes *int `json:"securityOverrideMinutes,omitempty"`

	// AlreadyCheckedIn notes online check-in is done; with carry-on only
	// this removes the check-in caveat from the advisory notes.
	AlreadyCheckedIn bool `json:"alreadyCheckedIn"`
}

// Input is a recommendation request.
type Input struct {
	// Airport is the departure airport IATA code.
	Airport string `json:"airport"`

	// Airline is the carrier name, matched against the policy table.
	Airline string `json:"airline"`

	// FlightType is domestic or international.
	FlightType airline.FlightType `json:"flightType"`

	// DepartureLocal is the scheduled departure as local wall time, either
	// RFC 3339 or 2006-01-02T15:04.
	DepartureLocal string `json:"depTimeLocalISO"`

	// Options are the optional modifiers.
	Options Options `json:"options"`
}

// Breakdown itemizes the minutes behind the recommendation.
type Breakdown struct {
	GateCloseLeadMin     int  `json:"gateCloseLeadMin"`
	SecurityWaitMin      int  `json:"securityWaitMin"`
	WalkBufferMin        int  `json:"walkBufferMin"`
	AirportMiscBufferMin int  `json:"airportMiscBufferMin"`
	BagDropCutoffMin     *int `json:"bagDropCutoffMin,omitempty"`
	BagDropProcessMin    *int `json:"bagDropProcessMin,omitempty"`

	// ArrivalBufferMin is the ride-type buffer. Reported for display only;
	// it does not feed the chosen lead time.
	ArrivalBufferMin int `json:"arrivalBufferMin"`
}

// Bands are the comfort envelopes around the recommended arrival.
// Aggressive is closest to departure, cautious is earliest.
type Bands struct {
	AggressiveArrive time.Time `json:"aggressiveArriveLocalISO"`
	NormalArrive     time.Time `json:"normalArriveLocalISO"`
	CautiousArrive   time.Time `json:"cautiousArriveLocalISO"`
	AggressiveLeave  time.Time `json:"aggressiveLeaveLocalISO"`
	NormalLeave      time.Time `json:"normalLeaveLocalISO"`
	CautiousLeave    time.Time `json:"cautiousLeaveLocalISO"`
}

// LeadMinutes records the competing scenarios and the winner.
type LeadMinutes struct {
	GateScenarioMin int `json:"gateScenarioMin"`
	BagScenarioMin  int `json:"bagScenarioMin"`
	PolicyFloorMin  int `json:"policyFloorMin"`
	ChosenMin       int `json:"chosenMin"`
}

// Meta carries provenance for the recommendation.
type Meta struct {
	// HorizonHours is the rounded hours until departure at compute time.
	HorizonHours int `json:"horizonHours"`

	// SecuritySource and SecurityDetail describe the wait estimate origin.
	SecuritySource security.Source `json:"securitySource"`
	SecurityDetail string          `json:"securityDetail,omitempty"`

	// Busyness is set when the schedule+load estimator ran.
	Busyness *schedule.Busyness `json:"busyness,omitempty"`

	// Constraint is the binding scenario.
	Constraint Constraint `json:"constraint"`

	// LeadMinutes is the scenario arithmetic.
	LeadMinutes LeadMinutes `json:"leadMinutes"`
}

// Output is a computed recommendation.
type Output struct {
	// LeaveBy and ArriveAirport are the recommended times in airport-local
	// time. With no travel-time model they coincide.
	LeaveBy       time.Time `json:"leaveByLocalISO"`
	ArriveAirport time.Time `json:"arriveAirportLocalISO"`

	Breakdown Breakdown `json:"breakdown"`
	Bands     Bands     `json:"bands"`
	Warnings  []string  `json:"warnings,omitempty"`
	Meta      Meta      `json:"meta"`
}
