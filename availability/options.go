package availability

import (
	"log/slog"

	"github.com/cyp0633/libavail/timeframe/recurrence"
)

type config struct {
	logger   *slog.Logger
	equal    any // func(a, b P) bool, checked in New
	expander recurrence.ExpanderConfig
}

// Option represents a configuration option for the Engine
type Option func(*config)

// WithLogger sets the logger for the engine and the components it owns
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPayloadEqual sets the equality used to merge adjacent frames. Its type
// parameter must match the engine's payload type; a mismatched function is
// ignored with a warning.
func WithPayloadEqual[P any](equal func(a, b P) bool) Option {
	return func(c *config) {
		c.equal = equal
	}
}

// WithExpansionOptions caps occurrence expansion
func WithExpansionOptions(opts recurrence.ExpansionOptions) Option {
	return func(c *config) {
		c.expander.Expansion = opts
	}
}

// WithOccurrenceCache memoizes rule expansions between resolutions
func WithOccurrenceCache(cfg recurrence.CacheConfig) Option {
	return func(c *config) {
		c.expander.CacheEnabled = true
		c.expander.CacheConfig = cfg
	}
}
