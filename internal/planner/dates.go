package planner

import "time"

// DateLayout is the only accepted start-date format.
const DateLayout = "2006-01-02"

// ParseDate parses a strict YYYY-MM-DD calendar date. Impossible dates such
// as 2024-02-30 are rejected, as is surrounding whitespace. The result is
// midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, invalidDate(s)
	}
	return d, nil
}

// DateOf returns the calendar date of t, as seen in t's own location,
// normalized to midnight UTC so day differences are exact.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

const secondsPerDay = 24 * 60 * 60

// DaysBetween returns the whole number of calendar days from one date to another.
// Negative when to precedes from. Unix seconds are used rather than
// time.Duration, which cannot span more than about 292 years.
func DaysBetween(from, to time.Time) int {
	return int((DateOf(to).Unix() - DateOf(from).Unix()) / secondsPerDay)
}

// FormatDate renders a date in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// floorDiv divides rounding toward negative infinity, unlike Go's / operator.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
