package models

import "github.com/runwayready/runwayready/internal/risk"

// RiskAssessRequest is the body for POST /v1/risk:assess.
type RiskAssessRequest struct {
	// Airport is the departure airport IATA code.
	Airport string `json:"airport"`

	// AirlineCode is the two-letter IATA carrier code (optional).
	AirlineCode string `json:"airlineCode,omitempty"`

	// DepTimeLocalISO is the scheduled departure in airport-local time.
	DepTimeLocalISO string `json:"depTimeLocalISO"`

	// FlightType is domestic or international (default domestic).
	FlightType string `json:"flightType,omitempty"`

	// GroupSize is the traveler count (default 1).
	GroupSize int `json:"groupSize,omitempty"`

	// IncludeBusyness enables the schedule-derived traffic factor, which
	// may call the schedule provider.
	IncludeBusyness bool `json:"includeBusyness,omitempty"`
}

// RiskAssessResponse wraps a risk assessment with its generation time.
type RiskAssessResponse struct {
	GeneratedAt Timestamp        `json:"generatedAt"`
	Assessment  *risk.Assessment `json:"assessment"`
}
