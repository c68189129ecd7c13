package services

import "time"

// ShouldCollect reports whether now falls on the monthly collection day.
// The hourly wake loop is only a polling mechanism; this predicate is the
// entire schedule, so it must stay pure.
func ShouldCollect(now time.Time, day int) bool {
	return now.Day() == day
}

// ShouldCollectToday is the default gate: collect on the 1st of the month.
// Collection is deliberately monthly because the provider rate-limits on
// call volume.
func ShouldCollectToday(now time.Time) bool {
	return ShouldCollect(now, 1)
}
