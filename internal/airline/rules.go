// Package airline provides the static per-airline lead-time policy table.
package airline

import "strings"

// FlightType distinguishes domestic and international itineraries.
type FlightType string

const (
	FlightDomestic      FlightType = "domestic"
	FlightInternational FlightType = "international"
)

// Lead holds per-flight-type minutes before departure.
type Lead struct {
	Domestic      int
	International int
}

// For returns the minutes for the given flight type.
func (l Lead) For(ft FlightType) int {
	if ft == FlightInternational {
		return l.International
	}
	return l.Domestic
}

// Rule describes an airline's check-in policy constraints.
type Rule struct {
	// Airline is the carrier name the rule was matched against.
	Airline string

	// GateCloseLead is the gate-close lead time in minutes before departure.
	GateCloseLead Lead

	// BagDropCutoff is the checked-bag submission cutoff in minutes before departure.
	BagDropCutoff Lead

	// BagDropProcessMin is the time to drop a bag at the counter.
	BagDropProcessMin int
}

// rules is the static policy table. Matched by exact name first, then by
// substring containment, both case-insensitive.
var rules = []Rule{
	{
		Airline:           "Air Canada",
		GateCloseLead:     Lead{Domestic: 30, International: 45},
		BagDropCutoff:     Lead{Domestic: 45, International: 60},
		BagDropProcessMin: 10,
	},
	{
		Airline:           "WestJet",
		GateCloseLead:     Lead{Domestic: 30, International: 45},
		BagDropCutoff:     Lead{Domestic: 45, International: 60},
		BagDropProcessMin: 10,
	},
	{
		Airline:           "United",
		GateCloseLead:     Lead{Domestic: 30, International: 45},
		BagDropCutoff:     Lead{Domestic: 45, International: 60},
		BagDropProcessMin: 10,
	},
	{
		Airline:           "Delta",
		GateCloseLead:     Lead{Domestic: 30, International: 45},
		BagDropCutoff:     Lead{Domestic: 45, International: 60},
		BagDropProcessMin: 10,
	},
}

// generic is the fallback rule for unmatched airlines.
var generic = Rule{
	Airline:           "Generic",
	GateCloseLead:     Lead{Domestic: 30, International: 45},
	BagDropCutoff:     Lead{Domestic: 45, International: 60},
	BagDropProcessMin: 10,
}

// RuleFor looks up the policy rule for an airline name. The lookup never
// fails: unknown or empty names resolve to the generic rule.
func RuleFor(airline string) Rule {
	key := strings.ToLower(strings.TrimSpace(airline))
	if key == "" {
		return generic
	}

	for _, r := range rules {
		if strings.ToLower(r.Airline) == key {
			return r
		}
	}

	for _, r := range rules {
		if strings.Contains(key, strings.ToLower(r.Airline)) {
			return r
		}
	}

	return generic
}

// Known returns the carriers with explicit rules, for metadata endpoints.
func Known() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}
