package timeframe

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRange is returned for windows whose start is not before their end,
	// and for queries outside the base rule's domain.
	ErrInvalidRange = errors.New("invalid range")
	// ErrMalformedRule is returned when a structurally invalid rule reaches the store.
	ErrMalformedRule = errors.New("malformed rule")
	// ErrPriorityReserved is returned when inserting or removing at priority 0.
	ErrPriorityReserved = errors.New("priority 0 is reserved for the base rule")
	// ErrOverlapConflict is returned when a rule collides with a sibling at the same priority.
	ErrOverlapConflict = errors.New("overlap conflict")
	// ErrNotFound is returned when a rule id is unknown.
	ErrNotFound = errors.New("rule not found")
	// ErrNotGenerated is returned by lookups before resolution or outside the resolved range.
	ErrNotGenerated = errors.New("frames not generated")
	// ErrInternalInconsistency marks a broken store invariant. It is raised with
	// panic, never returned.
	ErrInternalInconsistency = errors.New("internal inconsistency")
	// ErrExpansionLimit is returned when a configured occurrence cap is exceeded.
	ErrExpansionLimit = errors.New("expansion limit exceeded")
)

// Error carries one of the sentinel kinds above plus context. errors.Is
// matches both the kind and any wrapped cause.
type Error struct {
	Kind     error
	Message  string
	RuleID   RuleID
	Priority int
	Err      error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.RuleID != 0 {
		msg = fmt.Sprintf("%s (rule=%d, priority=%d)", msg, e.RuleID, e.Priority)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// OverlapError reports the existing rule a candidate collided with.
type OverlapError struct {
	// With is the id of the rule already stored at Priority.
	With     RuleID
	Priority int
	// At is the first instant range both rules claim.
	At Window
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("%s: rule %d at priority %d already covers %s", ErrOverlapConflict, e.With, e.Priority, e.At)
}

func (e *OverlapError) Unwrap() error {
	return ErrOverlapConflict
}

// InconsistencyError is the panic value raised when two rules at the same
// priority claim the same sub-interval during resolution.
type InconsistencyError struct {
	Priority int
	At       Window
	Rules    []RuleID
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("%s: rules %v both win priority %d over %s", ErrInternalInconsistency, e.Rules, e.Priority, e.At)
}

func (e *InconsistencyError) Unwrap() error {
	return ErrInternalInconsistency
}
