package recurrence

import "github.com/cyp0633/libavail/timeframe"

// NoID marks an expansion that must not be cached, e.g. a candidate rule
// that has not been assigned an id yet.
const NoID timeframe.RuleID = 0

// ExpansionOptions controls how recurrence expansion behaves. The cap only
// applies to expansions for resolution; overlap checks between stored rules
// always expand in full.
type ExpansionOptions struct {
	MaxOccurrences int // Maximum occurrences materialized per rule and clip (0 = unlimited)
}

// DefaultExpansionOptions leaves expansion uncapped; cost is bounded by the
// clip range the caller asks for.
var DefaultExpansionOptions = ExpansionOptions{
	MaxOccurrences: 0,
}
