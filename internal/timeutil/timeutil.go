package timeutil

import "time"

func StartOfDay(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, value.Location())
}

func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// DaysInRange returns every date from `from` to `to` inclusive, at midnight.
func DaysInRange(from, to time.Time) []time.Time {
	start := StartOfDay(from)
	end := StartOfDay(to)

	days := make([]time.Time, 0, 32)
	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		days = append(days, current)
	}
	return days
}

// InRange reports whether the value's date falls inside [from, to].
func InRange(value, from, to time.Time) bool {
	day := StartOfDay(value)
	return !day.Before(StartOfDay(from)) && !day.After(StartOfDay(to))
}
