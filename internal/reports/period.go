// Package reports computes dashboard and report figures from a snapshot.
// Every function is pure: snapshot in, numbers out.
package reports

import "time"

// Period is an inclusive time window aligned to local calendar boundaries.
type Period struct {
	Start time.Time
	End   time.Time
}

// Today covers the local calendar day of now.
func Today(now time.Time) Period {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return Period{Start: start, End: start.AddDate(0, 0, 1).Add(-time.Nanosecond)}
}

// MonthOf covers the local calendar month containing t.
func MonthOf(t time.Time) Period {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return Period{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Nanosecond)}
}

// MonthOffset covers the calendar month offset months before now's month.
// Offset 0 is the current month, 1 the previous one, and so on.
func MonthOffset(now time.Time, offset int) Period {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return MonthOf(first.AddDate(0, -offset, 0))
}

// Previous returns the immediately preceding window of equal length. A
// calendar month yields the previous calendar month; other windows shift
// back by their own duration.
func (p Period) Previous() Period {
	if p.isCalendarMonth() {
		return MonthOf(p.Start.AddDate(0, 0, -1))
	}
	d := p.End.Sub(p.Start)
	return Period{Start: p.Start.Add(-d - time.Nanosecond), End: p.Start.Add(-time.Nanosecond)}
}

// Contains reports whether t falls inside the window, bounds included.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// Days returns the number of calendar days the window spans.
func (p Period) Days() int {
	return int(p.End.Sub(p.Start).Hours()/24) + 1
}

func (p Period) isCalendarMonth() bool {
	m := MonthOf(p.Start)
	return p.Start.Equal(m.Start) && p.End.Equal(m.End)
}
