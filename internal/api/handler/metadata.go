package handler

import (
	"net/http"
	"sort"

	"github.com/runwayready/runwayready/internal/airline"
	"github.com/runwayready/runwayready/internal/airport"
	"github.com/runwayready/runwayready/internal/api/models"
	"github.com/runwayready/runwayready/internal/api/response"
)

// MetadataHandler handles metadata endpoints.
type MetadataHandler struct{}

// NewMetadataHandler creates a new MetadataHandler.
func NewMetadataHandler() *MetadataHandler {
	return &MetadataHandler{}
}

// ListAirlines handles GET /v1/metadata/airlines - the carrier policy table.
func (h *MetadataHandler) ListAirlines(w http.ResponseWriter, r *http.Request) {
	rules := airline.Known()

	items := make([]models.AirlineRule, 0, len(rules))
	for _, rule := range rules {
		items = append(items, models.AirlineRule{
			Airline:                   rule.Airline,
			GateCloseDomesticMin:      rule.GateCloseLead.Domestic,
			GateCloseInternationalMin: rule.GateCloseLead.International,
			BagDropDomesticMin:        rule.BagDropCutoff.Domestic,
			BagDropInternationalMin:   rule.BagDropCutoff.International,
			BagDropProcessMin:         rule.BagDropProcessMin,
		})
	}

	response.JSON(w, r, http.StatusOK, models.AirlineList{Items: items})
}

// ListAirports handles GET /v1/metadata/airports - the capacity model table.
func (h *MetadataHandler) ListAirports(w http.ResponseWriter, r *http.Request) {
	codes := airport.Known()
	sort.Strings(codes)

	items := make([]models.Airport, 0, len(codes))
	for _, code := range codes {
		tier := airport.TierFor(code)

		item := models.Airport{
			IATA:         code,
			CapacityTier: string(tier),
			Saturation:   airport.Saturation(tier),
		}
		if icao, ok := airport.IATAToICAO(code); ok {
			item.ICAO = icao
		}
		if loc := airport.LocationFor(code); loc.String() != "UTC" {
			item.TimeZone = loc.String()
		}

		items = append(items, item)
	}

	response.JSON(w, r, http.StatusOK, models.AirportList{Items: items})
}
