// Package builder assembles timeframe rules from primitive fields such as
// textual date-times and weekday names.
package builder

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/mo"
	"golang.org/x/text/cases"

	"github.com/cyp0633/libavail/internal/dtparse"
	"github.com/cyp0633/libavail/timeframe"
)

// Builder collects the fields of one rule. Setters never fail on their own;
// the first problem is reported by Build.
type Builder[P any] struct {
	start   mo.Option[time.Time]
	end     mo.Option[time.Time]
	days    timeframe.Weekdays
	daysSet bool
	off     bool
	payload mo.Option[P]
	err     error
}

// New returns an empty builder. Without weekdays the rule is absolute.
func New[P any]() *Builder[P] {
	return &Builder[P]{}
}

// Start sets the start of the rule's window.
func (b *Builder[P]) Start(t time.Time) *Builder[P] {
	b.start = mo.Some(t)
	return b
}

// End sets the exclusive end of the rule's window.
func (b *Builder[P]) End(t time.Time) *Builder[P] {
	b.end = mo.Some(t)
	return b
}

// StartString parses s as the start, e.g. "2024-01-01 09:00:00" or "240101090000".
func (b *Builder[P]) StartString(s string) *Builder[P] {
	t, err := dtparse.Parse(s)
	if err != nil {
		b.fail(invalid(FieldStart, "", err))
		return b
	}
	return b.Start(t)
}

// EndString parses s as the end.
func (b *Builder[P]) EndString(s string) *Builder[P] {
	t, err := dtparse.Parse(s)
	if err != nil {
		b.fail(invalid(FieldEnd, "", err))
		return b
	}
	return b.End(t)
}

// Weekdays selects days by name. Full and three-letter English names are
// accepted in any case. Calling it makes the rule relative.
func (b *Builder[P]) Weekdays(names ...string) *Builder[P] {
	b.daysSet = true
	fold := cases.Fold()
	for _, name := range names {
		d, ok := timeframe.WeekdayByName(fold.String(strings.TrimSpace(name)))
		if !ok {
			b.fail(invalid(FieldWeekdays, fmt.Sprintf("unknown weekday %q", name), nil))
			continue
		}
		b.days |= d
	}
	return b
}

// Days adds an already built weekday set.
func (b *Builder[P]) Days(days timeframe.Weekdays) *Builder[P] {
	b.daysSet = true
	b.days |= days
	return b
}

func (b *Builder[P]) Monday() *Builder[P]    { return b.Days(timeframe.Monday) }
func (b *Builder[P]) Tuesday() *Builder[P]   { return b.Days(timeframe.Tuesday) }
func (b *Builder[P]) Wednesday() *Builder[P] { return b.Days(timeframe.Wednesday) }
func (b *Builder[P]) Thursday() *Builder[P]  { return b.Days(timeframe.Thursday) }
func (b *Builder[P]) Friday() *Builder[P]    { return b.Days(timeframe.Friday) }
func (b *Builder[P]) Saturday() *Builder[P]  { return b.Days(timeframe.Saturday) }
func (b *Builder[P]) Sunday() *Builder[P]    { return b.Days(timeframe.Sunday) }

// AllWeekdays selects every day of the week.
func (b *Builder[P]) AllWeekdays() *Builder[P] { return b.Days(timeframe.AllWeekdays) }

// Off marks the rule's time as unavailable.
func (b *Builder[P]) Off(off bool) *Builder[P] {
	b.off = off
	return b
}

// Payload attaches a value to the rule.
func (b *Builder[P]) Payload(p P) *Builder[P] {
	b.payload = mo.Some(p)
	return b
}

func (b *Builder[P]) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Build validates the collected fields and returns the rule. On failure the
// error is a *Error naming the offending field.
func (b *Builder[P]) Build() (timeframe.Rule[P], error) {
	if b.err != nil {
		return timeframe.Rule[P]{}, b.err
	}
	start, ok := b.start.Get()
	if !ok {
		return timeframe.Rule[P]{}, missing(FieldStart)
	}
	end, ok := b.end.Get()
	if !ok {
		return timeframe.Rule[P]{}, missing(FieldEnd)
	}

	var pattern timeframe.Pattern
	if b.daysSet {
		if b.days.IsEmpty() {
			return timeframe.Rule[P]{}, invalid(FieldWeekdays, "no weekday selected", nil)
		}
		rel, err := timeframe.NewRelative(start, end, b.days)
		if err != nil {
			return timeframe.Rule[P]{}, invalid(FieldRange, "", err)
		}
		pattern = rel
	} else {
		abs, err := timeframe.NewAbsolute(start, end)
		if err != nil {
			return timeframe.Rule[P]{}, invalid(FieldRange, "", err)
		}
		pattern = abs
	}

	return timeframe.Rule[P]{
		Pattern: pattern,
		Off:     b.off,
		Payload: b.payload,
	}, nil
}
