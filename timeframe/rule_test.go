package timeframe

import (
	"errors"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRelative(t *testing.T) {
	r, err := NewRelative(at(1, 9), at(31, 17), WorkWeek)
	require.NoError(t, err)

	assert.Equal(t, Window{Start: at(1, 9), End: at(31, 17)}, r.Bounds)
	assert.Equal(t, 9*time.Hour, r.Daily.From)
	assert.Equal(t, 17*time.Hour, r.Daily.To)
	assert.False(t, r.Daily.Overnight())
	assert.Equal(t, 8*time.Hour, r.Daily.Span())

	_, err = NewRelative(at(1, 9), at(31, 17), 0)
	assert.True(t, errors.Is(err, ErrMalformedRule))

	_, err = NewRelative(at(31, 9), at(1, 17), WorkWeek)
	assert.True(t, errors.Is(err, ErrInvalidRange))
}

func TestRelative_OccurrenceOn(t *testing.T) {
	// 2024-01-01 is a Monday.
	r, err := NewRelative(at(1, 9), at(31, 17), Monday|Wednesday)
	require.NoError(t, err)

	occ, ok := r.OccurrenceOn(at(1, 0))
	require.True(t, ok)
	assert.Equal(t, Window{Start: at(1, 9), End: at(1, 17)}, occ)

	_, ok = r.OccurrenceOn(at(2, 0))
	assert.False(t, ok, "tuesday is not selected")

	occ, ok = r.OccurrenceOn(at(31, 12))
	require.True(t, ok)
	assert.Equal(t, Window{Start: at(31, 9), End: at(31, 17)}, occ)
}

func TestRelative_Overnight(t *testing.T) {
	r, err := NewRelative(at(1, 22), at(10, 6), AllWeekdays)
	require.NoError(t, err)

	assert.True(t, r.Daily.Overnight())
	assert.Equal(t, 8*time.Hour, r.Daily.Span())
	assert.True(t, r.ActiveAt(at(2, 3)), "previous night's occurrence reaches 03:00")
	assert.False(t, r.ActiveAt(at(2, 12)))
	assert.True(t, r.ActiveAt(at(2, 23)))
	assert.False(t, r.ActiveAt(at(10, 6)), "bounds end is exclusive")

	whole, err := NewRelative(at(1, 0), at(8, 0), Saturday)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, whole.Daily.Span())
	assert.True(t, whole.ActiveAt(at(6, 15)))
	assert.False(t, whole.ActiveAt(at(7, 15)))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		rule      Rule[string]
		wantErr   bool
		wantRange bool
	}{
		{
			name: "absolute",
			rule: Rule[string]{Pattern: Absolute{Window: Window{at(1, 9), at(1, 17)}}},
		},
		{
			name: "relative",
			rule: Rule[string]{Pattern: Relative{Bounds: Window{at(1, 9), at(5, 17)}, Days: Monday, Daily: TimeOfDay{From: 9 * time.Hour, To: 17 * time.Hour}}},
		},
		{
			name:    "nil pattern",
			rule:    Rule[string]{},
			wantErr: true,
		},
		{
			name:      "absolute zero length",
			rule:      Rule[string]{Pattern: Absolute{Window: Window{at(1, 9), at(1, 9)}}},
			wantErr:   true,
			wantRange: true,
		},
		{
			name:    "relative empty weekdays",
			rule:    Rule[string]{Pattern: Relative{Bounds: Window{at(1, 9), at(5, 17)}, Daily: TimeOfDay{From: 9 * time.Hour, To: 17 * time.Hour}}},
			wantErr: true,
		},
		{
			name:    "relative time of day beyond a day",
			rule:    Rule[string]{Pattern: Relative{Bounds: Window{at(1, 9), at(5, 17)}, Days: Monday, Daily: TimeOfDay{From: 25 * time.Hour, To: 26 * time.Hour}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.rule)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedRule))
			assert.Equal(t, tt.wantRange, errors.Is(err, ErrInvalidRange))
		})
	}
}

func TestBaseRule(t *testing.T) {
	base := BaseRule[string]()

	assert.True(t, base.IsAbsolute())
	assert.False(t, base.Off)
	assert.True(t, base.Payload.IsAbsent())
	assert.Equal(t, Domain(), base.Extent())
	assert.NoError(t, Validate(base))
}

func TestRule_ActiveAt(t *testing.T) {
	abs := Rule[int]{Pattern: Absolute{Window: Window{at(5, 0), at(6, 0)}}, Off: true, Payload: mo.Some(2)}
	assert.True(t, abs.ActiveAt(at(5, 10)))
	assert.False(t, abs.ActiveAt(at(6, 0)))

	rel, err := NewRelative(at(1, 9), at(31, 17), WorkWeek)
	require.NoError(t, err)
	r := Rule[int]{Pattern: rel}
	assert.True(t, r.ActiveAt(at(10, 10)))
	assert.False(t, r.ActiveAt(at(13, 10)), "saturday")
	assert.False(t, r.ActiveAt(at(10, 17)))
}

func TestErrors(t *testing.T) {
	overlap := &OverlapError{With: 3, Priority: 1, At: Window{at(1, 9), at(1, 10)}}
	assert.True(t, errors.Is(overlap, ErrOverlapConflict))
	assert.Contains(t, overlap.Error(), "rule 3 at priority 1")

	err := &Error{Kind: ErrNotFound, Message: "no such rule", RuleID: 7, Priority: 2}
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "rule not found: no such rule (rule=7, priority=2)", err.Error())

	inc := &InconsistencyError{Priority: 1, Rules: []RuleID{1, 2}}
	assert.True(t, errors.Is(inc, ErrInternalInconsistency))
}
