// Package fiscal derives reporting windows from the closing calendar.
// Periods are defined only by a label and a closing date; each window
// starts the day after the previous close.
package fiscal

import (
	"errors"
	"sort"
	"time"
)

// Period is one entry of the closing calendar.
type Period struct {
	Label    string    `json:"label"`
	ClosesAt time.Time `json:"closes_at"`
}

// Window is the resolved reporting interval for a period. End is
// inclusive, at the last instant of the closing date.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ErrPeriodNotFound indicates an unknown period label.
var ErrPeriodNotFound = errors.New("fiscal: period not found")

// ResolveWindow computes the window for the labelled period. The first
// period of the calendar has no predecessor and opens on the first day
// of its closing month.
func ResolveWindow(periods []Period, label string) (Window, error) {
	ordered := make([]Period, len(periods))
	copy(ordered, periods)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ClosesAt.Before(ordered[j].ClosesAt)
	})

	for i, p := range ordered {
		if p.Label != label {
			continue
		}
		var start time.Time
		if i == 0 {
			y, m, _ := p.ClosesAt.Date()
			start = time.Date(y, m, 1, 0, 0, 0, 0, p.ClosesAt.Location())
		} else {
			start = startOfDay(ordered[i-1].ClosesAt).AddDate(0, 0, 1)
		}
		return Window{Start: start, End: endOfDay(p.ClosesAt)}, nil
	}
	return Window{}, ErrPeriodNotFound
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
