package resolver

import (
	"iter"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/libavail/timeframe"
	"github.com/cyp0633/libavail/timeframe/store"
)

func dt(day, hour int) time.Time {
	return time.Date(2024, 1, day, hour, 0, 0, 0, time.UTC)
}

func win(startDay, startHour, endDay, endHour int) timeframe.Window {
	return timeframe.Window{Start: dt(startDay, startHour), End: dt(endDay, endHour)}
}

// levels is a hand-made LevelSource that skips the store's overlap checks
type levels[P any] map[int][]timeframe.Entry[P]

func (l levels[P]) Levels() iter.Seq2[int, []timeframe.Entry[P]] {
	return func(yield func(int, []timeframe.Entry[P]) bool) {
		if !yield(0, []timeframe.Entry[P]{{ID: timeframe.BaseRuleID, Rule: timeframe.BaseRule[P]()}}) {
			return
		}
		for p := 1; p <= 10; p++ {
			if entries, ok := l[p]; ok && !yield(p, entries) {
				return
			}
		}
	}
}

func absolute[P any](w timeframe.Window, off bool, payload mo.Option[P]) timeframe.Rule[P] {
	return timeframe.Rule[P]{Pattern: timeframe.Absolute{Window: w}, Off: off, Payload: payload}
}

func assertPartition[P any](t *testing.T, frames []timeframe.Frame[P], query timeframe.Window) {
	t.Helper()
	require.NotEmpty(t, frames)
	assert.Equal(t, query.Start, frames[0].Start)
	assert.Equal(t, query.End, frames[len(frames)-1].End)
	for i, f := range frames {
		assert.True(t, f.Start.Before(f.End), "frame %d is empty", i)
		if i > 0 {
			assert.Equal(t, frames[i-1].End, f.Start, "frames %d and %d are not contiguous", i-1, i)
		}
	}
}

func TestResolve_BaseOnly(t *testing.T) {
	s := store.New[int]()
	query := win(1, 0, 8, 0)

	frames, err := New[int]().Resolve(s, query)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, query, frames[0].Window)
	assert.True(t, frames[0].IsOn())
	assert.True(t, frames[0].Payload.IsAbsent())
}

func TestResolve_InvalidQuery(t *testing.T) {
	r := New[int]()
	s := store.New[int]()

	tests := []struct {
		name  string
		query timeframe.Window
	}{
		{"empty", win(1, 0, 1, 0)},
		{"inverted", win(2, 0, 1, 0)},
		{"after domain", timeframe.Window{Start: timeframe.MaxTime.Add(-time.Hour), End: timeframe.MaxTime.Add(time.Hour)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(s, tt.query)
			assert.ErrorIs(t, err, timeframe.ErrInvalidRange)
		})
	}
}

func TestResolve_HigherPriorityWins(t *testing.T) {
	s := store.New[string]()
	_, err := s.Add(absolute(win(1, 9, 1, 17), false, mo.Some("low")), 1)
	require.NoError(t, err)
	_, err = s.Add(absolute(win(1, 12, 1, 13), true, mo.Some("lunch")), 2)
	require.NoError(t, err)

	query := win(1, 0, 2, 0)
	frames, err := New[string]().Resolve(s, query)
	require.NoError(t, err)
	assertPartition(t, frames, query)

	want := []timeframe.Frame[string]{
		{Window: win(1, 0, 1, 9)},
		{Window: win(1, 9, 1, 12), Payload: mo.Some("low")},
		{Window: win(1, 12, 1, 13), Off: true, Payload: mo.Some("lunch")},
		{Window: win(1, 13, 1, 17), Payload: mo.Some("low")},
		{Window: win(1, 17, 2, 0)},
	}
	assert.Equal(t, want, frames)
}

func TestResolve_CoalescesEqualPayloads(t *testing.T) {
	s := store.New[string]()
	// Two adjacent rules at different priorities carrying the same payload.
	_, err := s.Add(absolute(win(1, 9, 1, 12), false, mo.Some("open")), 1)
	require.NoError(t, err)
	_, err = s.Add(absolute(win(1, 12, 1, 17), false, mo.Some("open")), 2)
	require.NoError(t, err)

	frames, err := New[string]().Resolve(s, win(1, 0, 2, 0))
	require.NoError(t, err)
	require.Len(t, frames, 3)
	assert.Equal(t, win(1, 9, 1, 17), frames[1].Window)
}

func TestResolve_RelativeOccurrences(t *testing.T) {
	s := store.New[int]()
	p, err := timeframe.NewRelative(dt(1, 9), dt(31, 17), timeframe.WorkWeek)
	require.NoError(t, err)
	_, err = s.Add(timeframe.Rule[int]{Pattern: p, Payload: mo.Some(3)}, 1)
	require.NoError(t, err)

	// Friday 00:00 to Tuesday 00:00
	query := win(5, 0, 9, 0)
	frames, err := New[int]().Resolve(s, query)
	require.NoError(t, err)
	assertPartition(t, frames, query)

	want := []timeframe.Window{
		win(5, 0, 5, 9),
		win(5, 9, 5, 17),
		win(5, 17, 8, 9),
		win(8, 9, 8, 17),
		win(8, 17, 9, 0),
	}
	require.Len(t, frames, len(want))
	for i, w := range want {
		assert.Equal(t, w, frames[i].Window)
	}
	assert.Equal(t, 3, frames[1].Payload.MustGet())
	assert.True(t, frames[2].Payload.IsAbsent())
}

type staff struct {
	names []string
}

func TestResolve_PayloadEquality(t *testing.T) {
	t.Run("Equal method", func(t *testing.T) {
		src := levels[time.Time]{
			1: {{ID: 1, Rule: absolute(win(1, 9, 1, 12), false, mo.Some(dt(1, 0)))}},
			2: {{ID: 2, Rule: absolute(win(1, 12, 1, 17), false, mo.Some(dt(1, 0).In(time.FixedZone("X", 3600))))}},
		}
		frames, err := New[time.Time]().Resolve(src, win(1, 9, 1, 17))
		require.NoError(t, err)
		assert.Len(t, frames, 1)
	})

	t.Run("incomparable payloads use identity", func(t *testing.T) {
		src := levels[staff]{
			1: {{ID: 1, Rule: absolute(win(1, 9, 1, 12), false, mo.Some(staff{names: []string{"a"}}))}},
			2: {{ID: 2, Rule: absolute(win(1, 12, 1, 17), false, mo.Some(staff{names: []string{"a"}}))}},
		}
		frames, err := New[staff]().Resolve(src, win(1, 9, 1, 17))
		require.NoError(t, err)
		assert.Len(t, frames, 2)
	})

	t.Run("configured equality", func(t *testing.T) {
		src := levels[staff]{
			1: {{ID: 1, Rule: absolute(win(1, 9, 1, 12), false, mo.Some(staff{names: []string{"a"}}))}},
			2: {{ID: 2, Rule: absolute(win(1, 12, 1, 17), false, mo.Some(staff{names: []string{"a"}}))}},
		}
		r := New(WithEqual(func(a, b staff) bool {
			return len(a.names) == len(b.names) && a.names[0] == b.names[0]
		}))
		frames, err := r.Resolve(src, win(1, 9, 1, 17))
		require.NoError(t, err)
		assert.Len(t, frames, 1)
	})

	t.Run("off flag differs", func(t *testing.T) {
		src := levels[int]{
			1: {{ID: 1, Rule: absolute(win(1, 9, 1, 12), false, mo.Some(1))}},
			2: {{ID: 2, Rule: absolute(win(1, 12, 1, 17), true, mo.Some(1))}},
		}
		frames, err := New[int]().Resolve(src, win(1, 9, 1, 17))
		require.NoError(t, err)
		assert.Len(t, frames, 2)
	})

	t.Run("any payload with mixed types", func(t *testing.T) {
		src := levels[any]{
			1: {{ID: 1, Rule: absolute(win(1, 9, 1, 12), false, mo.Some[any](1))}},
			2: {{ID: 2, Rule: absolute(win(1, 12, 1, 17), false, mo.Some[any]("1"))}},
		}
		frames, err := New[any]().Resolve(src, win(1, 9, 1, 17))
		require.NoError(t, err)
		assert.Len(t, frames, 2)
	})
}

func TestResolve_SamePriorityOverlapPanics(t *testing.T) {
	src := levels[int]{
		1: {
			{ID: 1, Priority: 1, Rule: absolute(win(1, 9, 1, 17), false, mo.Some(1))},
			{ID: 2, Priority: 1, Rule: absolute(win(1, 12, 1, 18), false, mo.Some(2))},
		},
	}

	defer func() {
		v := recover()
		require.NotNil(t, v)
		fault, ok := v.(*timeframe.InconsistencyError)
		require.True(t, ok)
		assert.ErrorIs(t, fault, timeframe.ErrInternalInconsistency)
		assert.Equal(t, 1, fault.Priority)
		assert.Equal(t, []timeframe.RuleID{1, 2}, fault.Rules)
		assert.Equal(t, win(1, 12, 1, 17), fault.At)
	}()
	_, _ = New[int]().Resolve(src, win(1, 0, 2, 0))
}

func TestResolve_Deterministic(t *testing.T) {
	s := store.New[int]()
	p, err := timeframe.NewRelative(dt(1, 22), dt(31, 6), timeframe.AllWeekdays)
	require.NoError(t, err)
	_, err = s.Add(timeframe.Rule[int]{Pattern: p, Payload: mo.Some(1)}, 1)
	require.NoError(t, err)
	_, err = s.Add(absolute(win(3, 0, 4, 0), true, mo.None[int]()), 2)
	require.NoError(t, err)

	r := New[int]()
	query := win(1, 0, 10, 0)
	first, err := r.Resolve(s, query)
	require.NoError(t, err)
	second, err := r.Resolve(s, query)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assertPartition(t, first, query)
}
