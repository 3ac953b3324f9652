package store

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/cyp0633/libavail/timeframe"
	"github.com/cyp0633/libavail/timeframe/recurrence"
)

// Store keeps rules grouped by priority. Rules sharing a priority never claim
// the same instant. Priority 0 holds only the base rule.
//
// A Store is not safe for concurrent use.
type Store[P any] struct {
	base     timeframe.Entry[P]
	levels   map[int][]*timeframe.Entry[P] // vacated slots are nil
	index    map[timeframe.RuleID]int      // id -> priority
	lastID   timeframe.RuleID
	expander *recurrence.Expander
	logger   *slog.Logger
}

type options struct {
	expander *recurrence.Expander
	logger   *slog.Logger
}

// Option represents a configuration option for the Store
type Option func(*options)

// WithLogger sets the logger for the store
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithExpander sets the expander used for same-priority overlap checks.
// Sharing it with the resolver lets removals evict cached expansions.
func WithExpander(e *recurrence.Expander) Option {
	return func(o *options) {
		if e != nil {
			o.expander = e
		}
	}
}

// New creates a store holding only the base rule
func New[P any](opts ...Option) *Store[P] {
	o := options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.expander == nil {
		o.expander = recurrence.NewExpanderWithConfig(recurrence.DefaultExpanderConfig, o.logger)
	}

	return &Store[P]{
		base: timeframe.Entry[P]{
			ID:       timeframe.BaseRuleID,
			Priority: 0,
			Rule:     timeframe.BaseRule[P](),
		},
		levels:   make(map[int][]*timeframe.Entry[P]),
		index:    make(map[timeframe.RuleID]int),
		expander: o.expander,
		logger:   o.logger,
	}
}

// Add validates rule and inserts it at priority. It fails without modifying
// the store if priority is not positive, the rule is malformed, or the rule
// overlaps a rule already stored at the same priority.
func (s *Store[P]) Add(rule timeframe.Rule[P], priority int) (timeframe.RuleID, error) {
	if priority == 0 {
		s.logger.Warn("rejected rule: priority reserved")
		return 0, &timeframe.Error{Kind: timeframe.ErrPriorityReserved, Message: "cannot add a rule at priority 0"}
	}
	if priority < 0 {
		s.logger.Warn("rejected rule: negative priority", "priority", priority)
		return 0, &timeframe.Error{
			Kind:     timeframe.ErrMalformedRule,
			Message:  fmt.Sprintf("priority %d is negative", priority),
			Priority: priority,
		}
	}
	if err := timeframe.Validate(rule); err != nil {
		s.logger.Warn("rejected rule: validation failed", "priority", priority, "error", err)
		return 0, err
	}

	for _, existing := range s.levels[priority] {
		if existing == nil {
			continue
		}
		at, conflict, err := s.expander.Conflict(rule.Pattern, existing.Rule.Pattern)
		if err != nil {
			return 0, fmt.Errorf("failed to check overlap with rule %d: %w", existing.ID, err)
		}
		if conflict {
			s.logger.Warn("rejected rule: overlap conflict",
				"priority", priority,
				"with", existing.ID,
				"at", at.String())
			return 0, &timeframe.OverlapError{With: existing.ID, Priority: priority, At: at}
		}
	}

	s.lastID++
	id := s.lastID
	s.levels[priority] = append(s.levels[priority], &timeframe.Entry[P]{
		ID:       id,
		Priority: priority,
		Rule:     rule,
	})
	s.index[id] = priority

	s.logger.Debug("rule added",
		"rule", id,
		"priority", priority,
		"extent", rule.Extent().String(),
		"off", rule.Off)
	return id, nil
}

// Remove deletes a rule by id and returns it. The slot it occupied is
// vacated; other ids are unaffected.
func (s *Store[P]) Remove(id timeframe.RuleID) (timeframe.Rule[P], error) {
	if id == timeframe.BaseRuleID {
		return timeframe.Rule[P]{}, &timeframe.Error{Kind: timeframe.ErrPriorityReserved, Message: "the base rule cannot be removed"}
	}
	priority, ok := s.index[id]
	if !ok {
		s.logger.Warn("failed to remove rule: not found", "rule", id)
		return timeframe.Rule[P]{}, &timeframe.Error{Kind: timeframe.ErrNotFound, Message: fmt.Sprintf("no rule with id %d", id)}
	}

	level := s.levels[priority]
	for i, e := range level {
		if e == nil || e.ID != id {
			continue
		}
		level[i] = nil
		delete(s.index, id)
		if !slices.ContainsFunc(level, func(e *timeframe.Entry[P]) bool { return e != nil }) {
			delete(s.levels, priority)
		}
		s.expander.Forget(id)

		s.logger.Debug("rule removed", "rule", id, "priority", priority)
		return e.Rule, nil
	}

	// index and levels disagree
	return timeframe.Rule[P]{}, &timeframe.Error{
		Kind:     timeframe.ErrNotFound,
		Message:  "rule indexed but missing from its level",
		RuleID:   id,
		Priority: priority,
	}
}

// RemoveAt deletes the first rule at priority that is active at t.
func (s *Store[P]) RemoveAt(priority int, t time.Time) (timeframe.Entry[P], error) {
	if priority == 0 {
		return timeframe.Entry[P]{}, &timeframe.Error{Kind: timeframe.ErrPriorityReserved, Message: "the base rule cannot be removed"}
	}
	for _, e := range s.levels[priority] {
		if e == nil || !e.Rule.ActiveAt(t) {
			continue
		}
		entry := *e
		if _, err := s.Remove(e.ID); err != nil {
			return timeframe.Entry[P]{}, err
		}
		return entry, nil
	}
	return timeframe.Entry[P]{}, &timeframe.Error{
		Kind:     timeframe.ErrNotFound,
		Message:  fmt.Sprintf("no rule at priority %d is active at %s", priority, t.Format(timeframe.Layout)),
		Priority: priority,
	}
}

// Get returns the stored entry for id. BaseRuleID yields the base rule.
func (s *Store[P]) Get(id timeframe.RuleID) (timeframe.Entry[P], error) {
	if id == timeframe.BaseRuleID {
		return s.base, nil
	}
	priority, ok := s.index[id]
	if ok {
		for _, e := range s.levels[priority] {
			if e != nil && e.ID == id {
				return *e, nil
			}
		}
	}
	return timeframe.Entry[P]{}, &timeframe.Error{Kind: timeframe.ErrNotFound, Message: fmt.Sprintf("no rule with id %d", id)}
}

// Len returns the number of user rules, excluding the base rule.
func (s *Store[P]) Len() int {
	return len(s.index)
}

// Priorities returns the occupied priorities in ascending order, starting with 0.
func (s *Store[P]) Priorities() []int {
	return append([]int{0}, slices.Sorted(maps.Keys(s.levels))...)
}

// Levels yields each occupied priority with its rules in insertion order,
// ascending by priority. Priority 0 comes first and holds the base rule.
// The sequence may be iterated again; the store must not be mutated while
// iterating.
func (s *Store[P]) Levels() iter.Seq2[int, []timeframe.Entry[P]] {
	return func(yield func(int, []timeframe.Entry[P]) bool) {
		for _, priority := range s.Priorities() {
			if !yield(priority, s.level(priority)) {
				return
			}
		}
	}
}

func (s *Store[P]) level(priority int) []timeframe.Entry[P] {
	if priority == 0 {
		return []timeframe.Entry[P]{s.base}
	}
	var out []timeframe.Entry[P]
	for _, e := range s.levels[priority] {
		if e != nil {
			out = append(out, *e)
		}
	}
	return out
}

// IsConflict reports whether err is an overlap rejection and returns the id
// of the rule already in place.
func IsConflict(err error) (timeframe.RuleID, bool) {
	var oe *timeframe.OverlapError
	if errors.As(err, &oe) {
		return oe.With, true
	}
	return 0, false
}
