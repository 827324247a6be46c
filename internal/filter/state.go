// Package filter holds the per-session filter selections and the derivation
// rules linking them. The transaction-list filters (type + month) and the
// summary period are independent axes, coupled only by the auto-follow latch.
package filter

import (
	"time"

	"fintrack/internal/core"
)

// TypeAll disables type filtering on the transaction list.
const TypeAll = "all"

// State is owned by a session and reset to defaults when a new one starts.
type State struct {
	TypeFilter  string // "all" or a core.Type value
	MonthFilter string // "YYYY-MM", empty = no month filter

	// MonthFilterAutoFollow keeps MonthFilter tracking SummaryPeriod until
	// the user sets MonthFilter explicitly. One-way: once off, it stays off
	// for the rest of the session.
	MonthFilterAutoFollow bool

	SummaryPeriod string // "YYYY-MM" driving totals, breakdowns, trends
	SelectedYear  int    // yearly view only
}

// Defaults returns the session-start state: both periods at the current month,
// auto-follow on, current year selected.
func Defaults(now time.Time) State {
	period := core.PeriodOf(now)
	return State{
		TypeFilter:            TypeAll,
		MonthFilter:           period,
		MonthFilterAutoFollow: true,
		SummaryPeriod:         period,
		SelectedYear:          now.Year(),
	}
}

// SetSummaryPeriod changes the summary period. While the latch is on, the
// list's month filter follows along.
func (s *State) SetSummaryPeriod(period string) {
	s.SummaryPeriod = period
	if s.MonthFilterAutoFollow {
		s.MonthFilter = period
	}
}

// SetMonthFilter is the explicit user override of the list month filter.
// It permanently decouples the list from the summary period.
func (s *State) SetMonthFilter(period string) {
	s.MonthFilter = period
	s.MonthFilterAutoFollow = false
}

// SetTypeFilter changes which transaction types the list shows. Unknown values
// fall back to "all".
func (s *State) SetTypeFilter(t string) {
	if t != TypeAll && !core.Type(t).IsValid() {
		t = TypeAll
	}
	s.TypeFilter = t
}

// SetYear selects the year for the yearly view; it never touches the
// month-based filters.
func (s *State) SetYear(year int) {
	s.SelectedYear = year
}

// YearOptions lists the selectable years, newest first: the current year and
// the 5 before it.
func YearOptions(now time.Time) []int {
	current := now.Year()
	out := make([]int, 0, 6)
	for y := current; y >= current-5; y-- {
		out = append(out, y)
	}
	return out
}
