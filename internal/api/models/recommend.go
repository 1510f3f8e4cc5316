package models

import "github.com/runwayready/runwayready/internal/recommend"

// RecommendComputeRequest is the body for POST /v1/recommendations:compute.
type RecommendComputeRequest struct {
	// Airport is the departure airport IATA code.
	Airport string `json:"airport"`

	// Airline is the carrier name (optional; the generic policy applies
	// when unmatched).
	Airline string `json:"airline,omitempty"`

	// FlightType is domestic or international (default domestic).
	FlightType string `json:"flightType,omitempty"`

	// DepTimeLocalISO is the scheduled departure in airport-local time.
	DepTimeLocalISO string `json:"depTimeLocalISO"`

	// Options are the optional per-trip modifiers.
	Options *recommend.Options `json:"options,omitempty"`
}

// RecommendComputeResponse wraps a recommendation with its generation time.
type RecommendComputeResponse struct {
	GeneratedAt    Timestamp         `json:"generatedAt"`
	Recommendation *recommend.Output `json:"recommendation"`
}
