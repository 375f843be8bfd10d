package core

import "time"

// MonthRange returns the inclusive bounds of the calendar month that contains
// t, in t's location: day 1 at 00:00 through the last nanosecond of the last day.
func MonthRange(t time.Time) (start, end time.Time) {
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end = start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// ShiftMonth returns the first day of the month offset months away from t.
func ShiftMonth(t time.Time, offset int) time.Time {
	return time.Date(t.Year(), t.Month()+time.Month(offset), 1, 0, 0, 0, 0, t.Location())
}

// MonthLabel is the short English month name, e.g. "Jan".
func MonthLabel(t time.Time) string {
	return t.Month().String()[:3]
}

// DaysBetween counts whole 24-hour days elapsed from from to to. Partial days
// are truncated toward zero, so anything less than a day away in either
// direction is 0. Negative when to is at least a day earlier.
func DaysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}
