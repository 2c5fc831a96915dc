package cache

import (
	"encoding/json"
	"time"
)

// Entry is one cached collection, keyed by tenant and data category.
// Entries are replace-only: a successful Set atomically overwrites any
// previous entry for the same key.
type Entry struct {
	// ID is the composite key, deterministic from tenant and data type
	ID string `json:"id"`

	// TenantID partitions all cache content
	TenantID string `json:"tenantId"`

	// DataType is the stable category identifier (e.g. "CompliancePolicies")
	DataType string `json:"dataType"`

	// Payload is the serialized collection; opaque to the cache
	Payload json.RawMessage `json:"payload"`

	// CachedAt is when the entry was written
	CachedAt time.Time `json:"cachedAtUtc"`

	// ExpiresAt is when the entry goes stale; always after CachedAt
	ExpiresAt time.Time `json:"expiresAtUtc"`

	// ItemCount is the number of elements in the collection, informational only
	ItemCount int `json:"itemCount"`
}

// EntryID builds the composite cache key for a tenant and data type
func EntryID(tenantID, dataType string) string {
	return tenantID + "/" + dataType
}

// Expired reports whether the entry is past its time-to-live. The store
// never evicts on read; stale-but-present data is still useful for instant
// population while a refresh runs.
func (e *Entry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Items deserializes the entry payload into a slice of T, returning a
// DecodeError when the stored payload does not match the requested shape.
func Items[T any](e *Entry) ([]T, error) {
	var items []T
	if err := json.Unmarshal(e.Payload, &items); err != nil {
		return nil, &DecodeError{DataType: e.DataType, Err: err}
	}
	return items, nil
}
