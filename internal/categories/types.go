// Package categories defines the per-category fetch capability and the
// registry the bulk sync orchestrator iterates. A fetcher only knows how to
// retrieve one category's collection from the remote API; busy/status state
// and cache writes belong to the executor so every category behaves
// uniformly under orchestration.
package categories

import (
	"context"
	"encoding/json"
)

//go:generate mockgen -destination=mocks/mock_fetcher.go -package=mocks -source=types.go Fetcher

// Fetcher retrieves one data category from the remote management API
type Fetcher interface {
	// Category returns the human-readable category label used in status text
	Category() string

	// CacheKey returns the stable data type identifier used as cache key
	CacheKey() string

	// Fetch retrieves the category's collection. It must honor ctx
	// cancellation by returning promptly with ctx.Err(), and must not touch
	// reporter state or the cache.
	Fetch(ctx context.Context) (*Result, error)
}

// Result contains the result of a successful category fetch
type Result struct {
	// Items is the fetched collection; serialized by the cache on write
	Items any

	// Count is the number of elements in the collection
	Count int
}

// NewResult creates a Result from a fetched collection
func NewResult(items []json.RawMessage) *Result {
	return &Result{
		Items: items,
		Count: len(items),
	}
}
