/*
Package timeframe holds the data model shared by the availability engine:
half-open windows, weekday sets, rules and the frames produced by resolution.

# Rules

A rule is either Absolute, a single fixed window, or Relative, a daily
sub-window repeated on selected weekdays inside a bounding window:

	sale, err := timeframe.NewRelative(
		time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),  // bounds start, daily 09:00
		time.Date(2024, 1, 7, 20, 0, 0, 0, time.UTC), // bounds end, daily 20:00
		timeframe.WorkWeek,
	)

Rules carry an Off flag and an optional payload of any type. The payload is
never inspected by the engine.

# Errors

All recoverable failures match one of the Err* sentinels with errors.Is.
ErrInternalInconsistency is only ever raised through panic with an
*InconsistencyError value.
*/
package timeframe
