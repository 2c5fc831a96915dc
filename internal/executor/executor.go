// Package executor wraps a single category fetch with the uniform side
// effects every category shares: busy signaling, status text, error
// reporting, and the cache write-through. Per invocation it is a small state
// machine, Idle -> Busy -> {Success | Failed | Cancelled} -> Idle, with the
// busy reset guaranteed on every exit path.
package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tenantmirror/tenant-mirror/internal/cache"
	"github.com/tenantmirror/tenant-mirror/internal/categories"
	"github.com/tenantmirror/tenant-mirror/internal/status"
)

// TTLFunc returns the cache time-to-live for a category cache key
type TTLFunc func(cacheKey string) time.Duration

// Executor runs one category fetch with standardized busy/status/error and
// cache-write behavior around it. It is stateless across invocations.
type Executor struct {
	store    cache.Store
	reporter status.Reporter
	ttlFor   TTLFunc
}

// New creates an Executor. A nil ttlFor uses the store's default TTL.
func New(store cache.Store, reporter status.Reporter, ttlFor TTLFunc) *Executor {
	if ttlFor == nil {
		ttlFor = func(string) time.Duration { return 0 }
	}
	return &Executor{
		store:    store,
		reporter: reporter,
		ttlFor:   ttlFor,
	}
}

// Execute fetches one category and writes the result through to the cache.
//
// On success the collection is cached under the fetcher's cache key for the
// tenant (skipped when tenantID is empty, i.e. offline mode), the view is
// refreshed, and the result returned. Fetch errors are reported through the
// error sink and returned wrapped; the nil result is the "no result" signal
// and callers must not treat the category as loaded. Cancellation propagates
// unreported. A cache write failure after a successful fetch is reported but
// does not discard the fetched collection.
func (e *Executor) Execute(
	ctx context.Context, fetcher categories.Fetcher, tenantID string,
) (*categories.Result, error) {
	e.reporter.SetBusy(true)
	defer e.reporter.SetBusy(false)

	e.reporter.SetStatus(fmt.Sprintf("Loading %s...", fetcher.Category()))

	result, err := fetcher.Fetch(ctx)
	if err != nil {
		if isCancellation(err) {
			return nil, err
		}
		e.reporter.SetError(status.FormatError(err))
		e.reporter.SetStatus(fmt.Sprintf("Failed to load %s", fetcher.Category()))
		return nil, fmt.Errorf("failed to load %s: %w", fetcher.Category(), err)
	}

	if tenantID != "" {
		if _, writeErr := e.store.Set(
			ctx, tenantID, fetcher.CacheKey(), result.Items, e.ttlFor(fetcher.CacheKey()),
		); writeErr != nil {
			// Durability failed; the fetched collection is still good
			e.reporter.SetError(status.FormatError(writeErr))
		}
	}

	e.reporter.RefreshView()
	e.reporter.SetStatus(fmt.Sprintf("Loaded %d %s", result.Count, fetcher.Category()))

	return result, nil
}

// Freshness selects how GetOrFetch treats an existing cache entry
type Freshness int

const (
	// FreshnessAlwaysFetch ignores the cache and always fetches
	FreshnessAlwaysFetch Freshness = iota

	// FreshnessPreferCache uses a cached entry when present, regardless of age
	FreshnessPreferCache

	// FreshnessRespectTTL uses a cached entry only while it is unexpired
	FreshnessRespectTTL
)

// GetOrFetch is the unified read-through operation: it serves the category
// from cache when the freshness policy allows, and otherwise runs Execute.
// A cached payload that no longer decodes is reported and treated as a miss.
func (e *Executor) GetOrFetch(
	ctx context.Context, fetcher categories.Fetcher, tenantID string, policy Freshness,
) (*categories.Result, error) {
	if policy != FreshnessAlwaysFetch && tenantID != "" {
		if result := e.fromCache(ctx, fetcher, tenantID, policy); result != nil {
			return result, nil
		}
	}
	return e.Execute(ctx, fetcher, tenantID)
}

// fromCache attempts to serve the category from the cache, returning nil on
// any kind of miss.
func (e *Executor) fromCache(
	ctx context.Context, fetcher categories.Fetcher, tenantID string, policy Freshness,
) *categories.Result {
	entry, err := e.store.Get(ctx, tenantID, fetcher.CacheKey())
	if err != nil {
		// Absence is the normal miss; storage failures are surfaced before
		// falling back to a fetch.
		if !errors.Is(err, cache.ErrNotFound) {
			e.reporter.SetError(status.FormatError(err))
		}
		return nil
	}

	if policy == FreshnessRespectTTL && entry.Expired(time.Now()) {
		return nil
	}

	items, err := cache.Items[json.RawMessage](entry)
	if err != nil {
		// Schema drift; report and re-fetch rather than fail
		e.reporter.SetError(status.FormatError(err))
		return nil
	}

	return &categories.Result{Items: items, Count: entry.ItemCount}
}

// isCancellation reports whether err is a cancellation signal rather than a
// failure
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
