package recurrence

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cyp0633/libavail/timeframe"
)

// CacheEntry represents a cached expansion result
type CacheEntry struct {
	RuleID  timeframe.RuleID
	Windows []timeframe.Window
}

// Cache memoizes occurrence expansions of stored rules.
//
// Entries are evicted least-recently-used once MaxEntries is exceeded. The
// hit and miss counters are not synchronized, so a Cache is not safe for
// concurrent use.
type Cache struct {
	entries    *lru.Cache[string, *CacheEntry]
	maxEntries int
	hits       int
	misses     int
}

// CacheConfig holds configuration for the expansion cache
type CacheConfig struct {
	MaxEntries int // Maximum number of entries before eviction
}

// DefaultCacheConfig provides sensible defaults for expansion caching
var DefaultCacheConfig = CacheConfig{
	MaxEntries: 1000,
}

// NewCache creates a new expansion cache with the given configuration
func NewCache(config CacheConfig) *Cache {
	maxEntries := config.MaxEntries
	if maxEntries <= 0 {
		maxEntries = DefaultCacheConfig.MaxEntries
	}
	// lru.New only fails for non-positive sizes
	entries, err := lru.New[string, *CacheEntry](maxEntries)
	if err != nil {
		panic(fmt.Sprintf("recurrence: create cache: %v", err))
	}
	return &Cache{
		entries:    entries,
		maxEntries: maxEntries,
	}
}

// generateCacheKey creates a unique key for a rule id and clip range
func (c *Cache) generateCacheKey(id timeframe.RuleID, clip timeframe.Window) string {
	hasher := sha256.New()

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(id))
	hasher.Write(buf[:])

	hasher.Write([]byte(clip.Start.Format(time.RFC3339Nano)))
	hasher.Write([]byte(clip.End.Format(time.RFC3339Nano)))

	return fmt.Sprintf("%x", hasher.Sum(nil))
}

// Get retrieves a cached expansion if present
func (c *Cache) Get(id timeframe.RuleID, clip timeframe.Window) ([]timeframe.Window, bool) {
	entry, exists := c.entries.Get(c.generateCacheKey(id, clip))
	if !exists {
		c.misses++
		return nil, false
	}

	c.hits++
	return entry.Windows, true
}

// Set stores an expansion in the cache, evicting the least recently used
// entry when full
func (c *Cache) Set(id timeframe.RuleID, clip timeframe.Window, windows []timeframe.Window) {
	c.entries.Add(c.generateCacheKey(id, clip), &CacheEntry{
		RuleID:  id,
		Windows: windows,
	})
}

// Forget removes every entry belonging to a rule
func (c *Cache) Forget(id timeframe.RuleID) {
	for _, key := range c.entries.Keys() {
		if entry, ok := c.entries.Peek(key); ok && entry.RuleID == id {
			c.entries.Remove(key)
		}
	}
}

// Clear drops all entries
func (c *Cache) Clear() {
	c.entries.Purge()
}

// Stats returns cache statistics
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		TotalEntries: c.entries.Len(),
		Hits:         c.hits,
		Misses:       c.misses,
	}
}

// CacheStats provides information about cache performance
type CacheStats struct {
	TotalEntries int
	Hits         int
	Misses       int
}
