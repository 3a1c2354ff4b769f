package generator

import "time"

// walk returns every day from now-days to now inclusive, in ascending
// order, each at the same wall-clock time as now.
func walk(now time.Time, days int) []time.Time {
	start := now.AddDate(0, 0, -days)
	out := make([]time.Time, 0, days+1)
	for day := start; !day.After(now); day = day.AddDate(0, 0, 1) {
		out = append(out, day)
	}
	return out
}

// isWorkDay decides whether tickets are opened on day. Weekends never are,
// and the random gate is only drawn for weekdays.
func isWorkDay(day time.Time, src *Source, p float64) bool {
	switch day.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return src.chance(p)
}
