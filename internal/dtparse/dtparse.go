// Package dtparse reads the textual date-time forms accepted at the edges of
// the module: schedule files, the CLI and the rule builder.
package dtparse

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnrecognized is returned when no supported layout matches.
var ErrUnrecognized = errors.New("unrecognized date-time")

// Layouts are tried in order. Values without an offset are read as UTC.
var Layouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"20060102150405",
	"060102150405",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Parse reads s in one of Layouts or RFC 3339. The result is always in UTC.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty string", ErrUnrecognized)
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range Layouts {
		// fixed-width numeric forms must match exactly
		if isDigits(s) && len(s) != len(layout) {
			continue
		}
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognized, s)
}

// MustParse is like Parse but panics on error. Intended for tests and fixtures.
func MustParse(s string) time.Time {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
