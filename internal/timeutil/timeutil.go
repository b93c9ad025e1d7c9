package timeutil

import "time"

// MonthKeyLayout formats the month buckets used by reports, e.g. "2025-02".
const MonthKeyLayout = "2006-01"

func StartOfDay(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, value.Location())
}

func StartOfMonth(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), 1, 0, 0, 0, 0, value.Location())
}

// EndOfMonth returns midnight of the last day of the month.
func EndOfMonth(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month()+1, 0, 0, 0, 0, 0, value.Location())
}

func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func MonthKey(value time.Time) string {
	return value.Format(MonthKeyLayout)
}
