package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/tenantmirror/tenant-mirror/internal/sealer"
)

const (
	// entryFileExt is the extension of encrypted entry files
	entryFileExt = ".bin"

	// lockFileName is the cross-process write lock for the store directory
	lockFileName = ".store.lock"
)

// fileStore implements Store using one encrypted file per (tenant, dataType)
// under <basePath>/<tenant>/. Writes are atomic (temp file + rename) and
// serialized by an in-process mutex plus a cross-process file lock, so
// concurrent writers to the same key cannot interleave.
type fileStore struct {
	basePath   string
	sealer     sealer.Sealer
	defaultTTL time.Duration

	mu sync.RWMutex
}

// NewFileStore creates a file-backed Store rooted at basePath
func NewFileStore(basePath string, s sealer.Sealer, defaultTTL time.Duration) Store {
	return &fileStore{
		basePath:   basePath,
		sealer:     s,
		defaultTTL: defaultTTL,
	}
}

// Get retrieves and decrypts the entry for a tenant and data type
func (f *fileStore) Get(_ context.Context, tenantID, dataType string) (*Entry, error) {
	if err := validateKeyComponents(tenantID, dataType); err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	//nolint:gosec // Path components are validated above
	data, err := os.ReadFile(f.entryPath(tenantID, dataType))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("entry %s: %w", EntryID(tenantID, dataType), ErrNotFound)
		}
		return nil, &ReadError{TenantID: tenantID, DataType: dataType, Err: err}
	}

	plaintext, err := f.sealer.Open(data)
	if err != nil {
		return nil, &ReadError{TenantID: tenantID, DataType: dataType, Err: err}
	}

	var entry Entry
	if err := json.Unmarshal(plaintext, &entry); err != nil {
		return nil, &ReadError{TenantID: tenantID, DataType: dataType, Err: err}
	}

	return &entry, nil
}

// Set serializes, encrypts, and atomically replaces the entry for the key
func (f *fileStore) Set(
	_ context.Context, tenantID, dataType string, items any, ttl time.Duration,
) (*Entry, error) {
	if err := validateKeyComponents(tenantID, dataType); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = f.defaultTTL
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return nil, &WriteError{TenantID: tenantID, DataType: dataType, Err: err}
	}

	now := time.Now().UTC()
	entry := &Entry{
		ID:        EntryID(tenantID, dataType),
		TenantID:  tenantID,
		DataType:  dataType,
		Payload:   payload,
		CachedAt:  now,
		ExpiresAt: now.Add(ttl),
		ItemCount: countItems(items),
	}

	plaintext, err := json.Marshal(entry)
	if err != nil {
		return nil, &WriteError{TenantID: tenantID, DataType: dataType, Err: err}
	}

	sealed, err := f.sealer.Seal(plaintext)
	if err != nil {
		return nil, &WriteError{TenantID: tenantID, DataType: dataType, Err: err}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	unlock, err := f.lockStore()
	if err != nil {
		return nil, &WriteError{TenantID: tenantID, DataType: dataType, Err: err}
	}
	defer unlock()

	if err := f.writeEntryFile(tenantID, dataType, sealed); err != nil {
		return nil, &WriteError{TenantID: tenantID, DataType: dataType, Err: err}
	}

	return entry, nil
}

// Clear removes all cached entries for a tenant
func (f *fileStore) Clear(_ context.Context, tenantID string) error {
	if err := validateKeyComponent(tenantID); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	unlock, err := f.lockStore()
	if err != nil {
		return &WriteError{TenantID: tenantID, Err: err}
	}
	defer unlock()

	// RemoveAll is a no-op when the directory does not exist
	if err := os.RemoveAll(filepath.Join(f.basePath, tenantID)); err != nil {
		return &WriteError{TenantID: tenantID, Err: err}
	}
	return nil
}

// ClearType removes the cached entry for a single tenant and data type
func (f *fileStore) ClearType(_ context.Context, tenantID, dataType string) error {
	if err := validateKeyComponents(tenantID, dataType); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	unlock, err := f.lockStore()
	if err != nil {
		return &WriteError{TenantID: tenantID, DataType: dataType, Err: err}
	}
	defer unlock()

	if err := os.Remove(f.entryPath(tenantID, dataType)); err != nil && !os.IsNotExist(err) {
		return &WriteError{TenantID: tenantID, DataType: dataType, Err: err}
	}
	return nil
}

// List returns all entries stored for a tenant, sorted by data type
func (f *fileStore) List(ctx context.Context, tenantID string) ([]*Entry, error) {
	if err := validateKeyComponent(tenantID); err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(filepath.Join(f.basePath, tenantID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &ReadError{TenantID: tenantID, Err: err}
	}

	var entries []*Entry
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), entryFileExt) {
			continue
		}
		dataType := strings.TrimSuffix(de.Name(), entryFileExt)
		entry, err := f.Get(ctx, tenantID, dataType)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].DataType < entries[j].DataType
	})
	return entries, nil
}

// entryPath builds the on-disk path for a cache key
func (f *fileStore) entryPath(tenantID, dataType string) string {
	return filepath.Join(f.basePath, tenantID, dataType+entryFileExt)
}

// lockStore acquires the cross-process write lock, returning the release func
func (f *fileStore) lockStore() (func(), error) {
	if err := os.MkdirAll(f.basePath, 0750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	fl := flock.New(filepath.Join(f.basePath, lockFileName))
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("failed to acquire store lock: %w", err)
	}
	return func() {
		_ = fl.Unlock()
	}, nil
}

// writeEntryFile writes the sealed entry atomically via temp file + rename
func (f *fileStore) writeEntryFile(tenantID, dataType string, sealed []byte) error {
	if err := os.MkdirAll(filepath.Join(f.basePath, tenantID), 0750); err != nil {
		return fmt.Errorf("failed to create tenant directory: %w", err)
	}

	filePath := f.entryPath(tenantID, dataType)
	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, sealed, 0600); err != nil {
		return fmt.Errorf("failed to write temporary entry file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tempPath, filePath); err != nil {
		// Clean up temp file on error
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename entry file: %w", err)
	}
	return nil
}

// countItems returns the element count of a collection, or 1 for a scalar
func countItems(items any) int {
	if items == nil {
		return 0
	}
	v := reflect.ValueOf(items)
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return v.Len()
	default:
		return 1
	}
}

// validateKeyComponents validates both parts of a cache key
func validateKeyComponents(tenantID, dataType string) error {
	if err := validateKeyComponent(tenantID); err != nil {
		return err
	}
	return validateKeyComponent(dataType)
}

// validateKeyComponent rejects key parts that could escape the store directory
func validateKeyComponent(s string) error {
	if s == "" {
		return fmt.Errorf("cache key component cannot be empty")
	}
	if s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
		return fmt.Errorf("invalid cache key component: %s", s)
	}
	return nil
}
