package dashboard

import "time"

// MonthKeyLayout formats month buckets, e.g. "2025-01".
const MonthKeyLayout = "2006-01"

// MonthStart returns the first instant of t's calendar month in UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths shifts t's month start by n whole months, rolling the year over as needed.
func AddMonths(t time.Time, n int) time.Time {
	start := MonthStart(t)
	// time.Date normalizes out-of-range months into the adjacent years.
	return time.Date(start.Year(), start.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
}

// MonthKey returns the UTC "YYYY-MM" key of t.
func MonthKey(t time.Time) string {
	return t.UTC().Format(MonthKeyLayout)
}

// TrailingMonths returns n month keys ending with now's month, oldest first.
func TrailingMonths(now time.Time, n int) []string {
	if n <= 0 {
		return []string{}
	}
	keys := make([]string, 0, n)
	first := AddMonths(now, -(n - 1))
	for i := 0; i < n; i++ {
		keys = append(keys, MonthKey(AddMonths(first, i)))
	}
	return keys
}
