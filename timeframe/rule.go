package timeframe

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/mo"
)

// RuleID identifies a stored rule. Ids are assigned on insertion and never
// reused while the owning store is alive.
type RuleID uint64

// BaseRuleID is the id of the priority-0 base rule.
const BaseRuleID RuleID = 0

// Pattern is the temporal shape of a rule. It is a closed set: Absolute and
// Relative are the only implementations. Consumers switch over both.
type Pattern interface {
	// Extent returns the window outside of which the pattern is never active.
	Extent() Window
	isPattern()
}

// Absolute is a single fixed window.
type Absolute struct {
	Window Window
}

// NewAbsolute builds an absolute pattern for [start, end).
func NewAbsolute(start, end time.Time) (Absolute, error) {
	w, err := NewWindow(start, end)
	if err != nil {
		return Absolute{}, err
	}
	return Absolute{Window: w}, nil
}

func (a Absolute) Extent() Window { return a.Window }
func (Absolute) isPattern()       {}

// TimeOfDay is a daily sub-window expressed as offsets from midnight.
// When To is not after From the occurrence runs past midnight and ends on the
// following day; From == To therefore spans a full day.
type TimeOfDay struct {
	From time.Duration
	To   time.Duration
}

// Overnight reports whether an occurrence ends on the day after it starts.
func (t TimeOfDay) Overnight() bool {
	return t.To <= t.From
}

// Span is the length of one occurrence.
func (t TimeOfDay) Span() time.Duration {
	if t.Overnight() {
		return t.To + 24*time.Hour - t.From
	}
	return t.To - t.From
}

func (t TimeOfDay) valid() bool {
	const day = 24 * time.Hour
	return t.From >= 0 && t.From < day && t.To >= 0 && t.To < day
}

// Relative recurs on the selected weekdays inside Bounds, once per calendar
// day, using the Daily sub-window.
type Relative struct {
	Bounds Window
	Days   Weekdays
	Daily  TimeOfDay
}

// NewRelative builds a recurring pattern. The bounding window is [start, end)
// and the daily sub-window comes from the time-of-day parts of start and end.
func NewRelative(start, end time.Time, days Weekdays) (Relative, error) {
	w, err := NewWindow(start, end)
	if err != nil {
		return Relative{}, err
	}
	r := Relative{
		Bounds: w,
		Days:   days,
		Daily:  TimeOfDay{From: TimeOfDayOf(start), To: TimeOfDayOf(end)},
	}
	if err := r.validate(); err != nil {
		return Relative{}, err
	}
	return r, nil
}

func (r Relative) Extent() Window { return r.Bounds }
func (Relative) isPattern()       {}

// OccurrenceOn returns the occurrence starting on the calendar day of day,
// clipped to Bounds. The boolean is false if the weekday is not selected or
// the clipped occurrence is empty.
func (r Relative) OccurrenceOn(day time.Time) (Window, bool) {
	if !r.Days.Has(day.Weekday()) {
		return Window{}, false
	}
	start := DayStart(day).Add(r.Daily.From)
	occ := Window{Start: start, End: start.Add(r.Daily.Span())}
	return occ.Intersect(r.Bounds)
}

// ActiveAt reports whether an occurrence covers t. An overnight occurrence
// from the previous day is taken into account.
func (r Relative) ActiveAt(t time.Time) bool {
	if !r.Bounds.Contains(t) {
		return false
	}
	for _, day := range []time.Time{t, DayStart(t).AddDate(0, 0, -1)} {
		if occ, ok := r.OccurrenceOn(day); ok && occ.Contains(t) {
			return true
		}
	}
	return false
}

func (r Relative) validate() error {
	if err := r.Bounds.Validate(); err != nil {
		return err
	}
	if r.Days.IsEmpty() || !r.Days.Valid() {
		return &Error{Kind: ErrMalformedRule, Message: fmt.Sprintf("relative rule needs a non-empty weekday set, got %08b", uint8(r.Days))}
	}
	if !r.Daily.valid() {
		return &Error{Kind: ErrMalformedRule, Message: fmt.Sprintf("time of day %s-%s is outside a day", r.Daily.From, r.Daily.To)}
	}
	return nil
}

// Rule is a temporal pattern with an availability flag and optional payload.
// The payload is moved around by the engine, never inspected.
type Rule[P any] struct {
	Pattern Pattern
	// Off marks the rule's time as explicitly unavailable.
	Off     bool
	Payload mo.Option[P]
}

// IsAbsolute reports whether the pattern is a single fixed window.
func (r Rule[P]) IsAbsolute() bool {
	_, ok := r.Pattern.(Absolute)
	return ok
}

// Extent returns the pattern extent, or the zero window for a nil pattern.
func (r Rule[P]) Extent() Window {
	if r.Pattern == nil {
		return Window{}
	}
	return r.Pattern.Extent()
}

// ActiveAt reports whether the rule claims instant t.
func (r Rule[P]) ActiveAt(t time.Time) bool {
	switch p := r.Pattern.(type) {
	case Absolute:
		return p.Window.Contains(t)
	case Relative:
		return p.ActiveAt(t)
	default:
		return false
	}
}

// Validate re-checks a rule received from outside the core. Any failure
// matches ErrMalformedRule; window failures additionally match ErrInvalidRange.
func Validate[P any](r Rule[P]) error {
	var err error
	switch p := r.Pattern.(type) {
	case Absolute:
		err = p.Window.Validate()
	case Relative:
		err = p.validate()
	case nil:
		return &Error{Kind: ErrMalformedRule, Message: "rule has no pattern"}
	default:
		return &Error{Kind: ErrMalformedRule, Message: fmt.Sprintf("unknown pattern %T", p)}
	}
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) && te.Kind == ErrMalformedRule {
		return err
	}
	return &Error{Kind: ErrMalformedRule, Err: err}
}

// BaseRule returns the fallback rule covering the whole domain: on, no payload.
func BaseRule[P any]() Rule[P] {
	return Rule[P]{
		Pattern: Absolute{Window: Domain()},
		Off:     false,
		Payload: mo.None[P](),
	}
}

// Entry is a stored rule together with its identity.
type Entry[P any] struct {
	ID       RuleID
	Priority int
	Rule     Rule[P]
}
