// Package resolver turns prioritized rules into the minimal sequence of
// frames covering a query window.
package resolver

import (
	"fmt"
	"io"
	"iter"
	"log/slog"
	"reflect"
	"slices"
	"time"

	"github.com/cyp0633/libavail/timeframe"
	"github.com/cyp0633/libavail/timeframe/recurrence"
)

// LevelSource yields rules grouped by ascending priority. Priority 0 must
// hold a rule covering every query passed to Resolve.
type LevelSource[P any] interface {
	Levels() iter.Seq2[int, []timeframe.Entry[P]]
}

// Resolver merges prioritized rules into a minimal sequence of frames.
type Resolver[P any] struct {
	expander *recurrence.Expander
	equal    func(a, b P) bool
	logger   *slog.Logger
}

// Option represents a configuration option for the Resolver
type Option[P any] func(*Resolver[P])

// WithExpander sets the expander used to materialize occurrences
func WithExpander[P any](e *recurrence.Expander) Option[P] {
	return func(r *Resolver[P]) {
		if e != nil {
			r.expander = e
		}
	}
}

// WithEqual sets the payload equality used when coalescing adjacent frames.
func WithEqual[P any](equal func(a, b P) bool) Option[P] {
	return func(r *Resolver[P]) {
		r.equal = equal
	}
}

// WithLogger sets the logger for the resolver
func WithLogger[P any](logger *slog.Logger) Option[P] {
	return func(r *Resolver[P]) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a resolver with an uncached expander
func New[P any](opts ...Option[P]) *Resolver[P] {
	r := &Resolver[P]{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.expander == nil {
		r.expander = recurrence.NewExpanderWithConfig(recurrence.DefaultExpanderConfig, r.logger)
	}
	return r
}

// piece is one concrete occurrence of a stored rule, clipped to the query
type piece[P any] struct {
	timeframe.Window
	priority int
	entry    *timeframe.Entry[P]
}

// Resolve partitions query into frames. Each instant takes the off flag and
// payload of the highest-priority rule active there; adjacent frames with
// equal off flags and equal payloads are merged.
//
// Resolve panics with *timeframe.InconsistencyError if two rules at the same
// priority are active at once, which the store never allows.
func (r *Resolver[P]) Resolve(src LevelSource[P], query timeframe.Window) ([]timeframe.Frame[P], error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if !timeframe.Domain().ContainsWindow(query) {
		return nil, &timeframe.Error{
			Kind:    timeframe.ErrInvalidRange,
			Message: fmt.Sprintf("query %s is outside %s", query, timeframe.Domain()),
		}
	}

	pieces, err := r.collect(src, query)
	if err != nil {
		return nil, err
	}

	cuts := make([]time.Time, 0, 2*len(pieces)+2)
	cuts = append(cuts, query.Start, query.End)
	for _, p := range pieces {
		cuts = append(cuts, p.Start, p.End)
	}
	slices.SortFunc(cuts, time.Time.Compare)
	cuts = slices.CompactFunc(cuts, time.Time.Equal)

	slices.SortStableFunc(pieces, func(a, b piece[P]) int {
		return a.Start.Compare(b.Start)
	})

	var (
		frames  []timeframe.Frame[P]
		last    *timeframe.Entry[P]
		active  []piece[P]
		pending = pieces
	)
	for i := 0; i+1 < len(cuts); i++ {
		seg := timeframe.Window{Start: cuts[i], End: cuts[i+1]}

		active = slices.DeleteFunc(active, func(p piece[P]) bool {
			return !p.End.After(seg.Start)
		})
		for len(pending) > 0 && !pending[0].Start.After(seg.Start) {
			active = append(active, pending[0])
			pending = pending[1:]
		}

		winner, ok := r.winner(active, seg)
		if !ok {
			return nil, &timeframe.Error{
				Kind:    timeframe.ErrInvalidRange,
				Message: fmt.Sprintf("no rule covers %s", seg),
			}
		}

		if n := len(frames); n > 0 && r.mergeable(last, winner) {
			frames[n-1].End = seg.End
			continue
		}
		frames = append(frames, timeframe.Frame[P]{
			Window:  seg,
			Off:     winner.Rule.Off,
			Payload: winner.Rule.Payload,
		})
		last = winner
	}

	r.logger.Debug("resolved frames",
		"query", query.String(),
		"occurrences", len(pieces),
		"frames", len(frames))
	return frames, nil
}

func (r *Resolver[P]) collect(src LevelSource[P], query timeframe.Window) ([]piece[P], error) {
	var pieces []piece[P]
	for priority, entries := range src.Levels() {
		for i := range entries {
			e := &entries[i]
			windows, err := r.expander.Expand(e.ID, e.Rule.Pattern, query)
			if err != nil {
				return nil, fmt.Errorf("failed to expand rule %d at priority %d: %w", e.ID, priority, err)
			}
			for _, w := range windows {
				pieces = append(pieces, piece[P]{Window: w, priority: priority, entry: e})
			}
		}
	}
	return pieces, nil
}

// winner picks the highest-priority piece covering seg.
func (r *Resolver[P]) winner(active []piece[P], seg timeframe.Window) (*timeframe.Entry[P], bool) {
	var top []piece[P]
	for _, p := range active {
		if !p.ContainsWindow(seg) {
			continue
		}
		switch {
		case len(top) == 0 || p.priority > top[0].priority:
			top = append(top[:0], p)
		case p.priority == top[0].priority:
			top = append(top, p)
		}
	}
	if len(top) == 0 {
		return nil, false
	}
	if len(top) > 1 {
		ids := make([]timeframe.RuleID, len(top))
		for i, p := range top {
			ids[i] = p.entry.ID
		}
		fault := &timeframe.InconsistencyError{Priority: top[0].priority, At: seg, Rules: ids}
		r.logger.Error("same-priority rules overlap",
			"priority", fault.Priority,
			"at", seg.String(),
			"rules", ids)
		panic(fault)
	}
	return top[0].entry, true
}

func (r *Resolver[P]) mergeable(a, b *timeframe.Entry[P]) bool {
	if a.Rule.Off != b.Rule.Off {
		return false
	}
	pa, aok := a.Rule.Payload.Get()
	pb, bok := b.Rule.Payload.Get()
	if !aok || !bok {
		return aok == bok
	}
	return r.payloadEqual(pa, pb, a.ID == b.ID)
}

// payloadEqual compares payloads with the configured function, then an
// Equal method, then ==. Values that cannot be compared are equal only when
// they come from the same rule.
func (r *Resolver[P]) payloadEqual(a, b P, sameRule bool) bool {
	if r.equal != nil {
		return r.equal(a, b)
	}
	if eq, ok := any(a).(interface{ Equal(P) bool }); ok {
		return eq.Equal(b)
	}
	va, vb := reflect.ValueOf(any(a)), reflect.ValueOf(any(b))
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}
	if va.Comparable() && vb.Comparable() {
		return any(a) == any(b)
	}
	return sameRule
}
