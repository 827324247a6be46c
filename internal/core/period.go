package core

import "time"

// A period is a "YYYY-MM" string naming a calendar month.

// ParseDate parses an ISO calendar date ("YYYY-MM-DD").
func ParseDate(date string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Month returns the period of a date string. The date must parse to a valid
// calendar date; records that fail are excluded from date-scoped aggregations.
func Month(date string) (string, bool) {
	if _, ok := ParseDate(date); !ok {
		return "", false
	}
	return date[:7], true
}

// PeriodOf formats a time as a period.
func PeriodOf(t time.Time) string {
	return t.Format("2006-01")
}

// LastNPeriods returns the n calendar months ending at now's month, inclusive,
// oldest first.
func LastNPeriods(n int, now time.Time) []string {
	out := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		m := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		out = append(out, PeriodOf(m))
	}
	return out
}
