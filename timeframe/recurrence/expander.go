package recurrence

import (
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/cyp0633/libavail/timeframe"
)

// Expander turns rule patterns into concrete, time-ordered windows
type Expander struct {
	cache  *Cache
	config ExpanderConfig
	logger *slog.Logger
}

// NewExpander creates an uncached, uncapped expander
func NewExpander() *Expander {
	return NewExpanderWithConfig(DefaultExpanderConfig, nil)
}

// Occurrences lazily yields the concrete windows of p inside clip, in start
// order. Absolute patterns yield at most their one window, clipped. Nothing
// outside clip is ever materialized.
func (e *Expander) Occurrences(p timeframe.Pattern, clip timeframe.Window) (iter.Seq[timeframe.Window], error) {
	switch p := p.(type) {
	case timeframe.Absolute:
		return func(yield func(timeframe.Window) bool) {
			if w, ok := p.Window.Intersect(clip); ok {
				yield(w)
			}
		}, nil
	case timeframe.Relative:
		return e.relativeOccurrences(p, clip)
	default:
		return nil, &timeframe.Error{
			Kind:    timeframe.ErrMalformedRule,
			Message: fmt.Sprintf("cannot expand pattern %T", p),
		}
	}
}

func (e *Expander) relativeOccurrences(p timeframe.Relative, clip timeframe.Window) (iter.Seq[timeframe.Window], error) {
	bounded, ok := p.Bounds.Intersect(clip)
	if !ok {
		return func(func(timeframe.Window) bool) {}, nil
	}

	rr, err := dailyRule(p, bounded)
	if err != nil {
		return nil, err
	}

	span := p.Daily.Span()
	return func(yield func(timeframe.Window) bool) {
		next := rr.Iterator()
		for day, ok := next(); ok; day, ok = next() {
			// rrule keeps whole seconds only; rebuild the start from the
			// day so sub-second offsets match OccurrenceOn.
			start := timeframe.DayStart(day).Add(p.Daily.From)
			if !start.Before(bounded.End) {
				return
			}
			occ := timeframe.Window{Start: start, End: start.Add(span)}
			w, ok := occ.Intersect(bounded)
			if !ok {
				// an overnight occurrence from before the clip start
				continue
			}
			if !yield(w) {
				return
			}
		}
	}, nil
}

// dailyRule builds a DAILY rrule filtered by weekday. Only the dates of its
// occurrences are used. It starts one day before
// the clip so the tail of an overnight occurrence is not lost, but never
// before the first day of the rule's own bounds.
func dailyRule(p timeframe.Relative, bounded timeframe.Window) (*rrule.RRule, error) {
	first := timeframe.DayStart(bounded.Start).AddDate(0, 0, -1)
	if boundsDay := timeframe.DayStart(p.Bounds.Start); first.Before(boundsDay) {
		first = boundsDay
	}

	rr, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.DAILY,
		Dtstart:   first.Add(p.Daily.From).Truncate(time.Second),
		Byweekday: byWeekday(p.Days),
		Until:     bounded.End,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build daily rule for %s: %w", p.Bounds, err)
	}
	return rr, nil
}

func byWeekday(days timeframe.Weekdays) []rrule.Weekday {
	mapping := map[timeframe.Weekdays]rrule.Weekday{
		timeframe.Monday:    rrule.MO,
		timeframe.Tuesday:   rrule.TU,
		timeframe.Wednesday: rrule.WE,
		timeframe.Thursday:  rrule.TH,
		timeframe.Friday:    rrule.FR,
		timeframe.Saturday:  rrule.SA,
		timeframe.Sunday:    rrule.SU,
	}

	var out []rrule.Weekday
	for _, d := range days.Days() {
		out = append(out, mapping[timeframe.WeekdayOf(d)])
	}
	return out
}

// Expand materializes the occurrences of a stored rule inside clip. Results
// for ids other than NoID are memoized when the cache is enabled. The
// configured MaxOccurrences cap, if any, fails the expansion with
// ErrExpansionLimit.
func (e *Expander) Expand(id timeframe.RuleID, p timeframe.Pattern, clip timeframe.Window) ([]timeframe.Window, error) {
	return e.expand(id, p, clip, e.config.Expansion.MaxOccurrences)
}

func (e *Expander) expand(id timeframe.RuleID, p timeframe.Pattern, clip timeframe.Window, limit int) ([]timeframe.Window, error) {
	cacheable := e.cache != nil && id != NoID
	if cacheable {
		if windows, found := e.cache.Get(id, clip); found {
			return slices.Clone(windows), nil
		}
	}

	seq, err := e.Occurrences(p, clip)
	if err != nil {
		return nil, err
	}

	var out []timeframe.Window
	for w := range seq {
		if limit > 0 && len(out) >= limit {
			return nil, &timeframe.Error{
				Kind:    timeframe.ErrExpansionLimit,
				Message: fmt.Sprintf("rule %d has more than %d occurrences in %s", id, limit, clip),
			}
		}
		out = append(out, w)
	}

	e.logger.Debug("expanded occurrences",
		"rule", id,
		"clip", clip.String(),
		"count", len(out))

	if cacheable {
		e.cache.Set(id, clip, slices.Clone(out))
	}
	return out, nil
}

// Conflict returns the first window claimed by both patterns. Two absolute
// patterns are compared directly; otherwise the occurrences of both are
// expanded over the intersection of their extents and compared pairwise.
// MaxOccurrences does not apply here.
func (e *Expander) Conflict(a, b timeframe.Pattern) (timeframe.Window, bool, error) {
	span, ok := a.Extent().Intersect(b.Extent())
	if !ok {
		return timeframe.Window{}, false, nil
	}

	ra, aRel := a.(timeframe.Relative)
	rb, bRel := b.(timeframe.Relative)
	if !aRel && !bRel {
		return span, true, nil
	}
	// Without overnight spill an occurrence stays on its own weekday.
	if aRel && bRel && !ra.Daily.Overnight() && !rb.Daily.Overnight() && !ra.Days.Intersects(rb.Days) {
		return timeframe.Window{}, false, nil
	}

	as, err := e.expand(NoID, a, span, 0)
	if err != nil {
		return timeframe.Window{}, false, err
	}
	bs, err := e.expand(NoID, b, span, 0)
	if err != nil {
		return timeframe.Window{}, false, err
	}

	i, j := 0, 0
	for i < len(as) && j < len(bs) {
		if w, ok := as[i].Intersect(bs[j]); ok {
			return w, true, nil
		}
		if as[i].End.After(bs[j].End) {
			j++
		} else {
			i++
		}
	}
	return timeframe.Window{}, false, nil
}

// Forget drops cached expansions of a rule, typically after its removal.
func (e *Expander) Forget(id timeframe.RuleID) {
	if e.cache != nil {
		e.cache.Forget(id)
	}
}

// CacheStats reports cache statistics; the boolean is false when caching is disabled.
func (e *Expander) CacheStats() (CacheStats, bool) {
	if e.cache == nil {
		return CacheStats{}, false
	}
	return e.cache.Stats(), true
}
