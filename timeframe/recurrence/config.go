package recurrence

import (
	"io"
	"log/slog"
)

// ExpanderConfig holds configuration options for the occurrence expander
type ExpanderConfig struct {
	// Cache configuration
	CacheEnabled bool
	CacheConfig  CacheConfig

	Expansion ExpansionOptions
}

// DefaultExpanderConfig expands without a cap and without caching
var DefaultExpanderConfig = ExpanderConfig{
	CacheEnabled: false,
	CacheConfig:  DefaultCacheConfig,
	Expansion:    DefaultExpansionOptions,
}

// CachedExpanderConfig memoizes expansions of stored rules. Useful when the
// same range is resolved repeatedly between mutations.
var CachedExpanderConfig = ExpanderConfig{
	CacheEnabled: true,
	CacheConfig:  DefaultCacheConfig,
	Expansion:    DefaultExpansionOptions,
}

// NewExpanderWithConfig creates a new expander with custom configuration
func NewExpanderWithConfig(config ExpanderConfig, logger *slog.Logger) *Expander {
	var cache *Cache
	if config.CacheEnabled {
		cache = NewCache(config.CacheConfig)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Expander{
		cache:  cache,
		config: config,
		logger: logger,
	}
}
