package cache

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates no cache entry exists for the requested key
var ErrNotFound = errors.New("cache entry not found")

// ReadError indicates the underlying storage medium failed during a read
type ReadError struct {
	TenantID string
	DataType string
	Err      error
}

// Error returns the error message
func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read cache entry %s: %v", EntryID(e.TenantID, e.DataType), e.Err)
}

// Unwrap returns the underlying error
func (e *ReadError) Unwrap() error {
	return e.Err
}

// WriteError indicates the underlying storage medium failed during a write.
// A write failure after a successful fetch only loses durability; callers
// keep the in-memory result.
type WriteError struct {
	TenantID string
	DataType string
	Err      error
}

// Error returns the error message
func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write cache entry %s: %v", EntryID(e.TenantID, e.DataType), e.Err)
}

// Unwrap returns the underlying error
func (e *WriteError) Unwrap() error {
	return e.Err
}

// DecodeError indicates a cached payload does not match the requested shape,
// typically from schema drift between application versions. Callers should
// treat it as a cache miss and re-fetch.
type DecodeError struct {
	DataType string
	Err      error
}

// Error returns the error message
func (e *DecodeError) Error() string {
	return fmt.Sprintf("cached payload for %s does not match requested type: %v", e.DataType, e.Err)
}

// Unwrap returns the underlying error
func (e *DecodeError) Unwrap() error {
	return e.Err
}
