package availability

import (
	"fmt"
	"io"
	"iter"
	"log/slog"
	"slices"
	"time"

	"github.com/samber/mo"

	"github.com/cyp0633/libavail/timeframe"
	"github.com/cyp0633/libavail/timeframe/recurrence"
	"github.com/cyp0633/libavail/timeframe/resolver"
	"github.com/cyp0633/libavail/timeframe/store"
)

// Engine owns a prioritized rule store and the frames of its most recent
// resolution. Any successful mutation discards those frames.
//
// An Engine is not safe for concurrent use; callers sharing one must
// serialize access.
type Engine[P any] struct {
	store    *store.Store[P]
	resolver *resolver.Resolver[P]
	expander *recurrence.Expander
	logger   *slog.Logger

	frames []timeframe.Frame[P]
	query  timeframe.Window
	valid  bool
}

// New creates an engine holding only the base rule
func New[P any](opts ...Option) *Engine[P] {
	c := config{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		expander: recurrence.DefaultExpanderConfig,
	}
	for _, opt := range opts {
		opt(&c)
	}

	expander := recurrence.NewExpanderWithConfig(c.expander, c.logger)
	resolverOpts := []resolver.Option[P]{
		resolver.WithExpander[P](expander),
		resolver.WithLogger[P](c.logger),
	}
	if c.equal != nil {
		if equal, ok := c.equal.(func(a, b P) bool); ok {
			resolverOpts = append(resolverOpts, resolver.WithEqual(equal))
		} else {
			c.logger.Warn("ignoring payload equality with mismatched type",
				"got", fmt.Sprintf("%T", c.equal))
		}
	}

	return &Engine[P]{
		store:    store.New[P](store.WithExpander(expander), store.WithLogger(c.logger)),
		resolver: resolver.New(resolverOpts...),
		expander: expander,
		logger:   c.logger,
	}
}

// AddRule inserts rule at priority and returns its id.
func (e *Engine[P]) AddRule(rule timeframe.Rule[P], priority int) (timeframe.RuleID, error) {
	id, err := e.store.Add(rule, priority)
	if err != nil {
		return 0, err
	}
	e.invalidate()
	return id, nil
}

// RemoveRule deletes the rule with the given id.
func (e *Engine[P]) RemoveRule(id timeframe.RuleID) error {
	if _, err := e.store.Remove(id); err != nil {
		return err
	}
	e.invalidate()
	return nil
}

// RemoveRuleAt deletes the first rule at priority active at t and returns its id.
func (e *Engine[P]) RemoveRuleAt(priority int, t time.Time) (timeframe.RuleID, error) {
	entry, err := e.store.RemoveAt(priority, t)
	if err != nil {
		return 0, err
	}
	e.invalidate()
	return entry.ID, nil
}

// Rule returns a stored rule and its priority.
func (e *Engine[P]) Rule(id timeframe.RuleID) (timeframe.Entry[P], error) {
	return e.store.Get(id)
}

// Len returns the number of user rules.
func (e *Engine[P]) Len() int {
	return e.store.Len()
}

// Levels yields the stored rules by ascending priority, base rule first.
func (e *Engine[P]) Levels() iter.Seq2[int, []timeframe.Entry[P]] {
	return e.store.Levels()
}

func (e *Engine[P]) invalidate() {
	if e.valid {
		e.logger.Debug("dropping resolved frames", "query", e.query.String())
	}
	e.frames = nil
	e.query = timeframe.Window{}
	e.valid = false
}

// Resolve partitions query into frames and keeps them for the lookups below.
// The returned slice is a copy.
func (e *Engine[P]) Resolve(query timeframe.Window) ([]timeframe.Frame[P], error) {
	if e.valid && e.query == query {
		return slices.Clone(e.frames), nil
	}

	frames, err := e.resolver.Resolve(e.store, query)
	if err != nil {
		return nil, err
	}
	e.frames = frames
	e.query = query
	e.valid = true
	return slices.Clone(frames), nil
}

// Frames returns a copy of the last resolved frames.
func (e *Engine[P]) Frames() ([]timeframe.Frame[P], error) {
	if !e.valid {
		return nil, e.notGenerated("no resolution since the last change")
	}
	return slices.Clone(e.frames), nil
}

// Range returns the window of the last resolution.
func (e *Engine[P]) Range() (timeframe.Window, bool) {
	return e.query, e.valid
}

// FrameAt returns the resolved frame containing t. It never resolves on its
// own: ErrNotGenerated is returned before the first Resolve, after a
// mutation, and for instants outside the resolved range.
func (e *Engine[P]) FrameAt(t time.Time) (timeframe.Frame[P], error) {
	if !e.valid {
		return timeframe.Frame[P]{}, e.notGenerated("no resolution since the last change")
	}
	if !e.query.Contains(t) {
		return timeframe.Frame[P]{}, e.notGenerated(fmt.Sprintf("%s is outside %s", t.Format(timeframe.Layout), e.query))
	}

	i, found := slices.BinarySearchFunc(e.frames, t, func(f timeframe.Frame[P], t time.Time) int {
		switch {
		case !f.End.After(t):
			return -1
		case f.Start.After(t):
			return 1
		}
		return 0
	})
	if !found {
		return timeframe.Frame[P]{}, e.notGenerated(fmt.Sprintf("no frame contains %s", t.Format(timeframe.Layout)))
	}
	return e.frames[i], nil
}

// PayloadAt returns the payload in effect at t, or None when no frame is
// available or the winning rule carries none.
func (e *Engine[P]) PayloadAt(t time.Time) mo.Option[P] {
	f, err := e.FrameAt(t)
	if err != nil {
		return mo.None[P]()
	}
	return f.Payload
}

// IsOpenAt reports whether t falls in a resolved frame that is on.
func (e *Engine[P]) IsOpenAt(t time.Time) bool {
	f, err := e.FrameAt(t)
	return err == nil && f.IsOn()
}

// FramesIn returns the resolved frames overlapping w, clipped to w. w must
// lie inside the resolved range.
func (e *Engine[P]) FramesIn(w timeframe.Window) ([]timeframe.Frame[P], error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if !e.valid {
		return nil, e.notGenerated("no resolution since the last change")
	}
	if !e.query.ContainsWindow(w) {
		return nil, e.notGenerated(fmt.Sprintf("%s is outside %s", w, e.query))
	}

	var out []timeframe.Frame[P]
	for _, f := range e.frames {
		clipped, ok := f.Window.Intersect(w)
		if !ok {
			continue
		}
		f.Window = clipped
		out = append(out, f)
	}
	return out, nil
}

// CacheStats reports occurrence cache statistics when WithOccurrenceCache is set.
func (e *Engine[P]) CacheStats() (recurrence.CacheStats, bool) {
	return e.expander.CacheStats()
}

func (e *Engine[P]) notGenerated(msg string) error {
	return &timeframe.Error{Kind: timeframe.ErrNotGenerated, Message: msg}
}
