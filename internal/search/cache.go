package search

import (
	"strings"
	"sync"

	"github.com/aqipro/aqipro/internal/aqi"
)

// SuggestionCache memoizes autocomplete results for the lifetime of a
// session. Keys are lowercased; there is no TTL because suggestion sets
// change far slower than a session lasts.
type SuggestionCache struct {
	mu      sync.RWMutex
	entries map[string][]aqi.Suggestion
}

// NewSuggestionCache creates an empty cache.
func NewSuggestionCache() *SuggestionCache {
	return &SuggestionCache{
		entries: make(map[string][]aqi.Suggestion),
	}
}

// Get returns the cached suggestions for a query, if any. The second
// return distinguishes a cached empty result from a miss.
func (c *SuggestionCache) Get(query string) ([]aqi.Suggestion, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	suggestions, ok := c.entries[strings.ToLower(query)]
	return suggestions, ok
}

// Put stores the suggestions for a query. Empty results are cached
// too, so repeated no-match queries skip the network.
func (c *SuggestionCache) Put(query string, suggestions []aqi.Suggestion) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[strings.ToLower(query)] = suggestions
}

// Len returns the number of cached queries.
func (c *SuggestionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
