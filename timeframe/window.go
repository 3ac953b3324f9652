package timeframe

import (
	"fmt"
	"time"
)

// Layout is the textual form used when windows and frames are printed.
const Layout = "2006-01-02 15:04:05"

// Window is a half-open date-time interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow returns the window [start, end). Zero-length and inverted
// windows are rejected with ErrInvalidRange.
func NewWindow(start, end time.Time) (Window, error) {
	w := Window{Start: start, End: end}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Validate reports ErrInvalidRange unless Start < End.
func (w Window) Validate() error {
	if !w.Start.Before(w.End) {
		return &Error{
			Kind:    ErrInvalidRange,
			Message: fmt.Sprintf("start %s is not before end %s", w.Start.Format(Layout), w.End.Format(Layout)),
		}
	}
	return nil
}

// Contains reports whether t lies in [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// ContainsWindow reports whether o lies entirely inside w.
func (w Window) ContainsWindow(o Window) bool {
	return !o.Start.Before(w.Start) && !o.End.After(w.End)
}

// Overlaps reports whether the two windows share at least one instant.
// Half-open: [a,b) and [c,d) overlap iff a < d && c < b.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

// Intersect returns the common part of w and o. The boolean is false when
// the windows do not overlap; touching windows do not overlap.
func (w Window) Intersect(o Window) (Window, bool) {
	start := w.Start
	if o.Start.After(start) {
		start = o.Start
	}
	end := w.End
	if o.End.Before(end) {
		end = o.End
	}
	if !start.Before(end) {
		return Window{}, false
	}
	return Window{Start: start, End: end}, true
}

// Compare orders windows by start, then by end.
func (w Window) Compare(o Window) int {
	if c := w.Start.Compare(o.Start); c != 0 {
		return c
	}
	return w.End.Compare(o.End)
}

// Duration returns End - Start.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(Layout), w.End.Format(Layout))
}

// Base rule domain. Chosen far outside any realistic query so the base rule
// always covers the requested range.
var (
	MinTime = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	MaxTime = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)
)

// Domain returns [MinTime, MaxTime), the extent of the base rule.
func Domain() Window {
	return Window{Start: MinTime, End: MaxTime}
}

// DayStart truncates t to midnight in its own location.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// TimeOfDayOf returns the offset of t from its midnight.
func TimeOfDayOf(t time.Time) time.Duration {
	return t.Sub(DayStart(t))
}
