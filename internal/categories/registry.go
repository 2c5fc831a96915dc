package categories

import (
	"fmt"
	"sort"
)

// Registry maps cache keys to the fetchers currently available. Categories
// whose remote dependency is not configured are simply never registered, so
// the orchestrator's task list shrinks with partial configuration instead of
// reporting failures. The registry is built once at startup and read-only
// afterwards.
type Registry struct {
	fetchers map[string]Fetcher
}

// NewRegistry creates an empty category registry
func NewRegistry() *Registry {
	return &Registry{
		fetchers: make(map[string]Fetcher),
	}
}

// Register adds a fetcher, rejecting duplicate cache keys
func (r *Registry) Register(f Fetcher) error {
	key := f.CacheKey()
	if key == "" {
		return fmt.Errorf("fetcher cache key cannot be empty")
	}
	if _, exists := r.fetchers[key]; exists {
		return fmt.Errorf("duplicate category cache key '%s'", key)
	}
	r.fetchers[key] = f
	return nil
}

// Lookup returns the fetcher for a cache key, if registered
func (r *Registry) Lookup(key string) (Fetcher, bool) {
	f, ok := r.fetchers[key]
	return f, ok
}

// Keys returns the registered cache keys in sorted order
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.fetchers))
	for key := range r.fetchers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Fetchers returns the registered fetchers ordered by cache key
func (r *Registry) Fetchers() []Fetcher {
	keys := r.Keys()
	fetchers := make([]Fetcher, 0, len(keys))
	for _, key := range keys {
		fetchers = append(fetchers, r.fetchers[key])
	}
	return fetchers
}

// Len returns the number of registered categories
func (r *Registry) Len() int {
	return len(r.fetchers)
}
