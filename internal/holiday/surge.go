// Package holiday computes deterministic travel-surge severity for North
// American holiday travel peaks. Dates are derived per-year with weekday
// arithmetic (nth weekday of month, Gregorian computus for Easter), so the
// table never goes stale.
package holiday

import (
	"fmt"
	"math"
	"time"
)

// Severity labels a surge magnitude.
type Severity string

const (
	SeverityNone     Severity = "None"
	SeverityModerate Severity = "Moderate"
	SeverityHigh     Severity = "High"
	SeverityVeryHigh Severity = "Very High"
	SeverityExtreme  Severity = "Extreme"
)

// Surge is the travel-surge assessment for a date.
type Surge struct {
	// Factor is the surge magnitude in risk points (0 when no surge).
	Factor int `json:"factor"`

	// Description explains the matched travel peak.
	Description string `json:"description"`

	// Severity is the tier label for the factor.
	Severity Severity `json:"severity"`
}

// peak is one dated travel surge candidate.
type peak struct {
	date        time.Time
	name        string
	points      int
	description string
}

// nthWeekday returns the nth occurrence of a weekday in a month.
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+(n-1)*7)
}

// lastWeekday returns the last occurrence of a weekday in a month.
func lastWeekday(year int, month time.Month, weekday time.Weekday) time.Time {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	offset := (int(last.Weekday()) - int(weekday) + 7) % 7
	return last.AddDate(0, 0, -offset)
}

// lastWeekdayBefore returns the last occurrence of a weekday strictly before
// the given date.
func lastWeekdayBefore(t time.Time, weekday time.Weekday) time.Time {
	offset := (int(t.Weekday()) - int(weekday) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	return t.AddDate(0, 0, -offset)
}

// easter computes Easter Sunday via the anonymous Gregorian computus.
func easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// peaksFor builds the ordered surge-candidate list for a year. Order is the
// tie-break: a date near two peaks resolves to the first listed, not the
// largest.
func peaksFor(year int) []peak {
	days := func(t time.Time, n int) time.Time { return t.AddDate(0, 0, n) }
	date := func(month time.Month, day int) time.Time {
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	}

	thanksgiving := nthWeekday(year, time.November, time.Thursday, 4)
	laborMon := nthWeekday(year, time.September, time.Monday, 1)
	presidentsMon := nthWeekday(year, time.February, time.Monday, 3)
	canadianThanksgiving := nthWeekday(year, time.October, time.Monday, 2)
	easterSun := easter(year)

	july4 := date(time.July, 4)
	july4Sun := july4
	if july4.Weekday() != time.Sunday {
		july4Sun = days(july4, (7-int(july4.Weekday()))%7)
	}
	july4Thu := july4
	if july4.Weekday() != time.Thursday {
		july4Thu = days(july4, (int(time.Thursday)-int(july4.Weekday())+7)%7-7)
	}

	christmas := date(time.December, 25)
	christmasWeekFri := days(christmas, (int(time.Friday)-int(christmas.Weekday())+7)%7-7)

	extreme := []peak{
		{days(thanksgiving, 3), "Post-Thanksgiving Sunday", 35, "Busiest travel day of the year"},
		{days(thanksgiving, -1), "Thanksgiving Wednesday", 32, "Pre-Thanksgiving exodus"},
		{days(thanksgiving, -2), "Thanksgiving Tuesday", 30, "Thanksgiving week travel begins"},
		{days(lastWeekday(year, time.May, time.Monday), -3), "Memorial Day Friday", 28, "Summer travel season kickoff"},
		{july4Sun, "July 4th Sunday", 28, "Post-Independence Day returns"},
		{date(time.December, 26), "Day after Christmas", 26, "Post-holiday departures spike"},
		{christmasWeekFri, "Christmas week Friday", 25, "Pre-Christmas travel rush"},
		{days(laborMon, -3), "Labor Day Friday", 24, "End of summer getaway rush"},
		{laborMon, "Labor Day Monday", 23, "Labor Day return travel"},
		{date(time.December, 23), "December 23rd", 22, "Christmas Eve Eve travel"},
	}

	high := []peak{
		{july4Thu, "July 4th Thursday", 20, "Pre-July 4th departures"},
		{date(time.December, 20), "Christmas week Saturday", 19, "Christmas week begins"},
		{date(time.December, 21), "Christmas week Sunday", 18, "Pre-Christmas Sunday"},
		{date(time.December, 22), "Christmas week Monday", 17, "Christmas week Monday"},
		{date(time.December, 27), "Post-Christmas Friday", 16, "Extended holiday travel"},
		{date(time.December, 28), "Post-Christmas Sunday", 15, "Holiday return travel"},
		{date(time.December, 29), "Post-Christmas Monday", 14, "Back to work travel"},
		{date(time.December, 30), "December 30th", 13, "Year-end return travel"},
		{days(presidentsMon, -3), "Presidents Week Friday", 12, "Presidents Day weekend begins"},
		{days(presidentsMon, -1), "Presidents Weekend Sunday", 11, "Presidents Day weekend"},
		{presidentsMon, "Presidents Day", 10, "Presidents Day holiday"},
		{days(easterSun, -3), "Easter Thursday", 10, "Pre-Easter travel"},
		{days(easterSun, -2), "Good Friday", 9, "Easter weekend begins"},
		{days(easterSun, 1), "Easter Monday", 8, "Easter return travel"},
	}

	canadian := []peak{
		{days(canadianThanksgiving, -3), "Canadian Thanksgiving Friday", 15, "Canadian Thanksgiving weekend"},
		{canadianThanksgiving, "Canadian Thanksgiving", 12, "Canadian Thanksgiving returns"},
		{lastWeekdayBefore(date(time.May, 25), time.Monday), "Victoria Day", 10, "Victoria Day long weekend"},
	}

	out := make([]peak, 0, len(extreme)+len(high)+len(canadian))
	out = append(out, extreme...)
	out = append(out, high...)
	out = append(out, canadian...)
	return out
}

// severityFor maps full-strength points to a severity tier.
func severityFor(points int) Severity {
	switch {
	case points >= 30:
		return SeverityExtreme
	case points >= 20:
		return SeverityVeryHigh
	default:
		return SeverityHigh
	}
}

// SurgeFor returns the travel surge for the calendar date of the given
// departure time. Distance decay: same day keeps the full factor, one day
// out keeps 70%, two days out keeps 40%, anything further does not match.
// Candidates are evaluated in a fixed priority order and the first match
// wins.
func SurgeFor(departure time.Time) Surge {
	day := time.Date(departure.Year(), departure.Month(), departure.Day(), 0, 0, 0, 0, time.UTC)

	for _, p := range peaksFor(day.Year()) {
		diff := math.Abs(day.Sub(p.date).Hours() / 24)
		switch {
		case diff < 0.5:
			return Surge{Factor: p.points, Description: p.description, Severity: severityFor(p.points)}
		case diff < 1.5:
			return Surge{
				Factor:      int(math.Round(float64(p.points) * 0.7)),
				Description: fmt.Sprintf("Near %s", p.description),
				Severity:    SeverityHigh,
			}
		case diff < 3:
			return Surge{
				Factor:      int(math.Round(float64(p.points) * 0.4)),
				Description: fmt.Sprintf("%s week", p.name),
				Severity:    SeverityModerate,
			}
		}
	}

	return Surge{Factor: 0, Description: "Regular travel day", Severity: SeverityNone}
}
