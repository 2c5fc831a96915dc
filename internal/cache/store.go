// Package cache implements the tenant-scoped local mirror store. One entry
// is kept per (tenant, dataType) pair, encrypted at rest, with expiry
// metadata. Writes replace the whole entry atomically; reads never evict.
package cache

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=store.go Store

// Store defines the interface for cached collection persistence
type Store interface {
	// Get retrieves the entry for a tenant and data type. Returns an error
	// wrapping ErrNotFound when no entry exists. The caller decides whether
	// to trust a stale entry; Get does not evict.
	Get(ctx context.Context, tenantID, dataType string) (*Entry, error)

	// Set serializes and encrypts the collection, replacing any existing
	// entry for the key. CachedAt is set to now and ExpiresAt to now+ttl;
	// a non-positive ttl uses the store default.
	Set(ctx context.Context, tenantID, dataType string, items any, ttl time.Duration) (*Entry, error)

	// Clear removes all entries for a tenant. Idempotent.
	Clear(ctx context.Context, tenantID string) error

	// ClearType removes the entry for a single tenant and data type. Idempotent.
	ClearType(ctx context.Context, tenantID, dataType string) error

	// List returns the entries stored for a tenant, payloads included,
	// sorted by data type.
	List(ctx context.Context, tenantID string) ([]*Entry, error)
}
