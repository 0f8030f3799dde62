package study

import "time"

// DateLayout is the key format used for per-day buckets.
const DateLayout = "2006-01-02"

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}

// StartOfDay truncates t to midnight of its calendar day in loc.
// A nil loc means time.Local.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	loc = location(loc)
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DateKey formats t as YYYY-MM-DD in loc.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(location(loc)).Format(DateLayout)
}

// ParseDateKey parses a YYYY-MM-DD key as midnight of that day in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, key, location(loc))
}

// daysBetween counts calendar days from a to b, both already truncated to
// midnight in the same location. Calendar arithmetic keeps DST days at one.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
