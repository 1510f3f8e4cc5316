package models

// AirlineRule describes one carrier's lead-time policy for metadata listings.
type AirlineRule struct {
	Airline                   string `json:"airline"`
	GateCloseDomesticMin      int    `json:"gateCloseDomesticMin"`
	GateCloseInternationalMin int    `json:"gateCloseInternationalMin"`
	BagDropDomesticMin        int    `json:"bagDropDomesticMin"`
	BagDropInternationalMin   int    `json:"bagDropInternationalMin"`
	BagDropProcessMin         int    `json:"bagDropProcessMin"`
}

// AirlineList is the response for GET /v1/metadata/airlines.
type AirlineList struct {
	Items []AirlineRule `json:"items"`
}

// Airport describes one known airport for metadata listings.
type Airport struct {
	IATA         string `json:"iata"`
	ICAO         string `json:"icao,omitempty"`
	CapacityTier string `json:"capacityTier"`
	Saturation   int    `json:"saturation"`
	TimeZone     string `json:"timeZone,omitempty"`
}

// AirportList is the response for GET /v1/metadata/airports.
type AirportList struct {
	Items []Airport `json:"items"`
}
