package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runwayready/runwayready/internal/airline"
	"github.com/runwayready/runwayready/internal/airport"
	"github.com/runwayready/runwayready/internal/schedule"
	"github.com/runwayready/runwayready/internal/security"
)

type mockSecurity struct {
	pred         security.Prediction
	live         *security.LiveWait
	predictCalls int
	liveCalls    int
}

func (m *mockSecurity) PredictWithLoad(_ context.Context, _ string, _ time.Time, _ bool) security.Prediction {
	m.predictCalls++
	return m.pred
}

func (m *mockSecurity) Live(_ context.Context, _ string) *security.LiveWait {
	m.liveCalls++
	return m.live
}

func fixedNow() time.Time {
	return time.Date(2026, time.March, 10, 9, 0, 0, 0, airport.LocationFor("YYZ"))
}

func newTestEngine(sec SecurityEstimator) *Engine {
	return NewEngine(EngineConfig{
		Security: sec,
		Logger:   zerolog.Nop(),
		Now:      fixedNow,
	})
}

func depIn(d time.Duration) string {
	return fixedNow().Add(d).Format("2006-01-02T15:04")
}

func TestCompute_DomesticTrustedTraveler(t *testing.T) {
	sec := &mockSecurity{pred: security.Prediction{
		Minutes: 14,
		Detail:  "schedule+load (60% · 120 deps in ±90m)",
		Busyness: schedule.Busyness{
			DeparturesInWindow: 120,
			Percent:            60,
			Source:             schedule.SourceScheduleLoad,
			WindowMin:          90,
		},
	}}
	engine := newTestEngine(sec)

	out, err := engine.Compute(context.Background(), Input{
		Airport:        "YYZ",
		Airline:        "Air Canada",
		FlightType:     airline.FlightDomestic,
		DepartureLocal: depIn(12 * time.Hour),
		Options:        Options{TrustedTraveler: true},
	})
	require.NoError(t, err)

	// gate scenario 30 + 14 + 12 + 8 = 64, below the 75 min floor
	assert.Equal(t, 64, out.Meta.LeadMinutes.GateScenarioMin)
	assert.Equal(t, 0, out.Meta.LeadMinutes.BagScenarioMin)
	assert.Equal(t, 75, out.Meta.LeadMinutes.PolicyFloorMin)
	assert.Equal(t, 75, out.Meta.LeadMinutes.ChosenMin)
	assert.Equal(t, ConstraintPolicyFloor, out.Meta.Constraint)

	assert.Equal(t, security.SourceScheduleLoad, out.Meta.SecuritySource)
	require.NotNil(t, out.Meta.Busyness)
	assert.Equal(t, 60, out.Meta.Busyness.Percent)
	assert.Equal(t, 12, out.Meta.HorizonHours)

	wantArrive := fixedNow().Add(12*time.Hour - 75*time.Minute)
	assert.True(t, out.ArriveAirport.Equal(wantArrive))
	assert.True(t, out.LeaveBy.Equal(out.ArriveAirport))

	assert.Nil(t, out.Breakdown.BagDropCutoffMin)
	assert.Nil(t, out.Breakdown.BagDropProcessMin)
	assert.Equal(t, 1, sec.predictCalls)
	assert.Equal(t, 0, sec.liveCalls)
}

func TestCompute_InternationalWithBags(t *testing.T) {
	sec := &mockSecurity{pred: security.Prediction{Minutes: 20}}
	engine := newTestEngine(sec)

	out, err := engine.Compute(context.Background(), Input{
		Airport:        "YYZ",
		Airline:        "Air Canada",
		FlightType:     airline.FlightInternational,
		DepartureLocal: depIn(12 * time.Hour),
		Options:        Options{CheckedBags: true},
	})
	require.NoError(t, err)

	require.NotNil(t, out.Breakdown.BagDropCutoffMin)
	require.NotNil(t, out.Breakdown.BagDropProcessMin)
	assert.Equal(t, 60, *out.Breakdown.BagDropCutoffMin)
	assert.Equal(t, 10, *out.Breakdown.BagDropProcessMin)
	assert.Equal(t, 70, out.Meta.LeadMinutes.BagScenarioMin)

	// gate scenario 45 + 20 + 20 + 8 = 93, still under the 120 min floor
	assert.Equal(t, 93, out.Meta.LeadMinutes.GateScenarioMin)
	assert.Equal(t, 120, out.Meta.LeadMinutes.ChosenMin)
	assert.Equal(t, ConstraintPolicyFloor, out.Meta.Constraint)
	assert.Equal(t, 20, out.Breakdown.WalkBufferMin)
}

func TestCompute_GateCloseBinds(t *testing.T) {
	sec := &mockSecurity{pred: security.Prediction{Minutes: 60}}
	engine := newTestEngine(sec)

	out, err := engine.Compute(context.Background(), Input{
		Airport:        "YYZ",
		Airline:        "WestJet",
		FlightType:     airline.FlightDomestic,
		DepartureLocal: depIn(10 * time.Hour),
	})
	require.NoError(t, err)

	// gate scenario 30 + 60 + 12 + 8 = 110 beats the 75 min floor
	assert.Equal(t, 110, out.Meta.LeadMinutes.ChosenMin)
	assert.Equal(t, ConstraintGateClose, out.Meta.Constraint)
}

func TestCompute_ChosenIsAlwaysMax(t *testing.T) {
	sec := &mockSecurity{pred: security.Prediction{Minutes: 35}}
	engine := newTestEngine(sec)

	out, err := engine.Compute(context.Background(), Input{
		Airport:        "YVR",
		Airline:        "Unknown Carrier",
		FlightType:     airline.FlightInternational,
		DepartureLocal: depIn(8 * time.Hour),
		Options:        Options{CheckedBags: true},
	})
	require.NoError(t, err)

	lm := out.Meta.LeadMinutes
	assert.Equal(t, max(lm.GateScenarioMin, lm.BagScenarioMin, lm.PolicyFloorMin), lm.ChosenMin)
	assert.GreaterOrEqual(t, lm.ChosenMin, lm.PolicyFloorMin)
}

func TestCompute_SecurityOverride(t *testing.T) {
	sec := &mockSecurity{}
	engine := newTestEngine(sec)

	override := 200
	out, err := engine.Compute(context.Background(), Input{
		Airport:        "YYZ",
		Airline:        "Air Canada",
		FlightType:     airline.FlightDomestic,
		DepartureLocal: depIn(3 * time.Hour),
		Options:        Options{SecurityOverrideMinutes: &override},
	})
	require.NoError(t, err)

	assert.Equal(t, security.SourceOverride, out.Meta.SecuritySource)
	assert.Equal(t, security.MaxWaitMinutes, out.Breakdown.SecurityWaitMin)
	assert.Equal(t, 0, sec.predictCalls)
	assert.Equal(t, 0, sec.liveCalls)
}

func TestCompute_HorizonBoundary(t *testing.T) {
	t.Run("exactly six hours out uses schedule+load", func(t *testing.T) {
		sec := &mockSecurity{pred: security.Prediction{Minutes: 18}}
		engine := newTestEngine(sec)

		out, err := engine.Compute(context.Background(), Input{
			Airport:        "YYZ",
			Airline:        "Air Canada",
			FlightType:     airline.FlightDomestic,
			DepartureLocal: depIn(6 * time.Hour),
		})
		require.NoError(t, err)

		assert.Equal(t, security.SourceScheduleLoad, out.Meta.SecuritySource)
		assert.Equal(t, 1, sec.predictCalls)
		assert.Equal(t, 0, sec.liveCalls)
	})

	t.Run("just inside six hours tries live sources", func(t *testing.T) {
		sec := &mockSecurity{live: &security.LiveWait{
			Minutes: 24,
			Source:  security.SourceCATSA,
			Detail:  "catsa-acsta.gc.ca",
		}}
		engine := newTestEngine(sec)

		out, err := engine.Compute(context.Background(), Input{
			Airport:        "YYZ",
			Airline:        "Air Canada",
			FlightType:     airline.FlightDomestic,
			DepartureLocal: depIn(6*time.Hour - time.Minute),
		})
		require.NoError(t, err)

		assert.Equal(t, security.SourceCATSA, out.Meta.SecuritySource)
		assert.Equal(t, 24, out.Breakdown.SecurityWaitMin)
		assert.Equal(t, 0, sec.predictCalls)
		assert.Equal(t, 1, sec.liveCalls)
	})

	t.Run("live miss falls back to hour-of-day estimate", func(t *testing.T) {
		sec := &mockSecurity{}
		engine := newTestEngine(sec)

		out, err := engine.Compute(context.Background(), Input{
			Airport:        "YYZ",
			Airline:        "Air Canada",
			FlightType:     airline.FlightDomestic,
			DepartureLocal: depIn(2 * time.Hour),
		})
		require.NoError(t, err)

		assert.Equal(t, security.SourceEstimate, out.Meta.SecuritySource)
		assert.Equal(t, "by-hour baseline", out.Meta.SecurityDetail)
		assert.GreaterOrEqual(t, out.Breakdown.SecurityWaitMin, security.MinWaitMinutes)
	})
}

func TestCompute_BandOrdering(t *testing.T) {
	sec := &mockSecurity{pred: security.Prediction{Minutes: 25}}
	engine := newTestEngine(sec)

	out, err := engine.Compute(context.Background(), Input{
		Airport:        "YUL",
		Airline:        "Air Canada",
		FlightType:     airline.FlightDomestic,
		DepartureLocal: depIn(9 * time.Hour),
	})
	require.NoError(t, err)

	bands := out.Bands
	assert.True(t, bands.AggressiveArrive.After(bands.NormalArrive))
	assert.True(t, bands.NormalArrive.After(bands.CautiousArrive))
	assert.Equal(t, 10*time.Minute, bands.AggressiveArrive.Sub(bands.NormalArrive))
	assert.Equal(t, 20*time.Minute, bands.NormalArrive.Sub(bands.CautiousArrive))
	assert.True(t, bands.AggressiveLeave.Equal(bands.AggressiveArrive))
}

func TestCompute_RideTypeBuffers(t *testing.T) {
	tests := []struct {
		ride RideType
		want int
	}{
		{RideSelfPark, 20},
		{RideDropoff, 8},
		{RideRideshare, 12},
		{"", 12},
	}

	for _, tt := range tests {
		sec := &mockSecurity{pred: security.Prediction{Minutes: 15}}
		engine := newTestEngine(sec)

		out, err := engine.Compute(context.Background(), Input{
			Airport:        "YYZ",
			Airline:        "Air Canada",
			FlightType:     airline.FlightDomestic,
			DepartureLocal: depIn(8 * time.Hour),
			Options:        Options{RideType: tt.ride},
		})
		require.NoError(t, err)
		assert.Equal(t, tt.want, out.Breakdown.ArrivalBufferMin, string(tt.ride))
	}
}

func TestCompute_Idempotent(t *testing.T) {
	input := Input{
		Airport:        "YYZ",
		Airline:        "Air Canada",
		FlightType:     airline.FlightDomestic,
		DepartureLocal: depIn(12 * time.Hour),
		Options:        Options{TrustedTraveler: true},
	}

	sec := &mockSecurity{pred: security.Prediction{Minutes: 14}}
	engine := newTestEngine(sec)

	first, err := engine.Compute(context.Background(), input)
	require.NoError(t, err)
	second, err := engine.Compute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCompute_InvalidInput(t *testing.T) {
	engine := newTestEngine(&mockSecurity{})

	tests := []struct {
		name    string
		input   Input
		wantErr error
	}{
		{
			name:    "missing airport",
			input:   Input{DepartureLocal: depIn(4 * time.Hour)},
			wantErr: ErrMissingAirport,
		},
		{
			name:    "airport not a 3-letter code",
			input:   Input{Airport: "Toronto", DepartureLocal: depIn(4 * time.Hour)},
			wantErr: ErrInvalidAirport,
		},
		{
			name:    "missing departure time",
			input:   Input{Airport: "YYZ"},
			wantErr: ErrInvalidDeparture,
		},
		{
			name:    "malformed departure time",
			input:   Input{Airport: "YYZ", DepartureLocal: "next tuesday"},
			wantErr: ErrInvalidDeparture,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Compute(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCompute_AdvisoryNotes(t *testing.T) {
	sec := &mockSecurity{pred: security.Prediction{Minutes: 15}}
	engine := newTestEngine(sec)

	out, err := engine.Compute(context.Background(), Input{
		Airport:        "YYZ",
		Airline:        "Air Canada",
		FlightType:     airline.FlightInternational,
		DepartureLocal: depIn(8 * time.Hour),
		Options:        Options{AlreadyCheckedIn: true, TrustedTraveler: true},
	})
	require.NoError(t, err)

	require.Len(t, out.Warnings, 3)
	assert.Contains(t, out.Warnings[0], "Already checked in")
	assert.Contains(t, out.Warnings[1], "Trusted-traveler")
	assert.Contains(t, out.Warnings[2], "International")
}
