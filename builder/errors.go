package builder

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField is the reason for a required field that was never set.
	ErrMissingField = errors.New("missing field")
	// ErrInvalidField is the reason for a field whose value cannot be used.
	ErrInvalidField = errors.New("invalid field")
)

// Field names reported in Error.
const (
	FieldStart    = "start"
	FieldEnd      = "end"
	FieldRange    = "range"
	FieldWeekdays = "weekdays"
)

// Error names the field that stopped a rule from being built.
type Error struct {
	Field  string
	Reason error // ErrMissingField or ErrInvalidField
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("build rule: %s: %v", e.Field, e.Reason)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Reason, e.Err}
	}
	return []error{e.Reason}
}

func missing(field string) *Error {
	return &Error{Field: field, Reason: ErrMissingField}
}

func invalid(field, detail string, err error) *Error {
	return &Error{Field: field, Reason: ErrInvalidField, Detail: detail, Err: err}
}
