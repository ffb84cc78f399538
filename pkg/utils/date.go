package utils

import "time"

// TruncateToDay drops the time-of-day component in UTC. All prediction and
// target dates are calendar days in a single fixed time zone (UTC); weekends
// and market holidays are not skipped.
func TruncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NextDay returns the calendar day after t, truncated to midnight UTC.
func NextDay(t time.Time) time.Time {
	return TruncateToDay(t).AddDate(0, 0, 1)
}
