package holiday_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/runwayready/runwayready/internal/holiday"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSurgeFor_PostThanksgivingSunday(t *testing.T) {
	// Thanksgiving 2026 is Nov 26; the Sunday after is Nov 29.
	s := holiday.SurgeFor(date(2026, time.November, 29))
	assert.Equal(t, 35, s.Factor)
	assert.Equal(t, holiday.SeverityExtreme, s.Severity)
	assert.Equal(t, "Busiest travel day of the year", s.Description)
}

func TestSurgeFor_TimeOfDayDoesNotMatter(t *testing.T) {
	// An evening departure on the peak day still counts as the peak day.
	s := holiday.SurgeFor(time.Date(2026, time.November, 29, 21, 45, 0, 0, time.UTC))
	assert.Equal(t, 35, s.Factor)
	assert.Equal(t, holiday.SeverityExtreme, s.Severity)
}

func TestSurgeFor_NearDecay(t *testing.T) {
	// Nov 30 is one day past the post-Thanksgiving Sunday: 70% factor.
	s := holiday.SurgeFor(date(2026, time.November, 30))
	assert.Equal(t, 25, s.Factor) // round(35 * 0.7)
	assert.Equal(t, holiday.SeverityHigh, s.Severity)
	assert.Contains(t, s.Description, "Near ")
}

func TestSurgeFor_WeekDecay(t *testing.T) {
	// Dec 24 is two days from Dec 26 (the first in-range peak in priority
	// order): 40% factor, "week" label.
	s := holiday.SurgeFor(date(2026, time.December, 24))
	assert.Equal(t, 10, s.Factor) // round(26 * 0.4)
	assert.Equal(t, holiday.SeverityModerate, s.Severity)
	assert.Contains(t, s.Description, "week")
}

func TestSurgeFor_PriorityOrderBreaksTies(t *testing.T) {
	// Dec 23 sits between several Christmas-window peaks; the extreme-tier
	// entry for Dec 23 itself wins because it comes first.
	s := holiday.SurgeFor(date(2026, time.December, 23))
	assert.Equal(t, 22, s.Factor)
	assert.Equal(t, holiday.SeverityVeryHigh, s.Severity)
	assert.Equal(t, "Christmas Eve Eve travel", s.Description)
}

func TestSurgeFor_CanadianThanksgiving(t *testing.T) {
	// Second Monday of October 2026 is Oct 12.
	s := holiday.SurgeFor(date(2026, time.October, 12))
	assert.Equal(t, 12, s.Factor)
	assert.Equal(t, holiday.SeverityHigh, s.Severity)
}

func TestSurgeFor_VictoriaDay(t *testing.T) {
	// Victoria Day 2026: last Monday before May 25 is May 18.
	s := holiday.SurgeFor(date(2026, time.May, 18))
	assert.Equal(t, 10, s.Factor)
	assert.Equal(t, "Victoria Day long weekend", s.Description)
}

func TestSurgeFor_July4Weekend(t *testing.T) {
	// July 4 2026 is a Saturday; the Sunday-after peak is July 5.
	s := holiday.SurgeFor(date(2026, time.July, 5))
	assert.Equal(t, 28, s.Factor)
	assert.Equal(t, holiday.SeverityVeryHigh, s.Severity)
}

func TestSurgeFor_RegularDay(t *testing.T) {
	for _, d := range []time.Time{
		date(2026, time.March, 10),
		date(2026, time.August, 12),
		date(2025, time.January, 15),
	} {
		s := holiday.SurgeFor(d)
		assert.Equal(t, 0, s.Factor, "%s should be a regular day", d)
		assert.Equal(t, holiday.SeverityNone, s.Severity)
		assert.Equal(t, "Regular travel day", s.Description)
	}
}

func TestSurgeFor_EasterComputus(t *testing.T) {
	// Easter 2026 falls on April 5; the Thursday before is April 2.
	s := holiday.SurgeFor(date(2026, time.April, 2))
	assert.Equal(t, 10, s.Factor)
	assert.Equal(t, "Pre-Easter travel", s.Description)

	// Good Friday (April 3) is one day from the Easter Thursday entry,
	// which is listed first, so it resolves as a near-miss of that peak.
	s = holiday.SurgeFor(date(2026, time.April, 3))
	assert.Equal(t, 7, s.Factor) // round(10 * 0.7)
	assert.Equal(t, holiday.SeverityHigh, s.Severity)
}
