package status

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// statusFileSuffix is the suffix of per-tenant status files
const statusFileSuffix = ".status.json"

// Persistence defines the interface for run status persistence
type Persistence interface {
	// SaveStatus saves the run status for a tenant to persistent storage
	SaveStatus(ctx context.Context, tenantID string, st *RunStatus) error

	// LoadStatus loads the run status for a tenant from persistent storage.
	// Returns an empty RunStatus if none was saved yet (first run).
	LoadStatus(ctx context.Context, tenantID string) (*RunStatus, error)
}

// FilePersistence implements Persistence using one JSON file per tenant
type FilePersistence struct {
	basePath string
}

// NewFilePersistence creates a file-based status persistence rooted at basePath
func NewFilePersistence(basePath string) *FilePersistence {
	return &FilePersistence{basePath: basePath}
}

// SaveStatus saves the run status to a JSON file
func (f *FilePersistence) SaveStatus(_ context.Context, tenantID string, st *RunStatus) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(f.basePath, 0750); err != nil {
		return fmt.Errorf("failed to create status directory: %w", err)
	}

	// Marshal status to JSON with pretty printing for readability
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status data: %w", err)
	}

	// Write to temporary file first for atomic operation
	filePath := f.statusPath(tenantID)
	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary status file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tempPath, filePath); err != nil {
		// Clean up temp file on error
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename status file: %w", err)
	}

	return nil
}

// LoadStatus loads the run status from a JSON file. A run left in phase
// Syncing was interrupted and is normalized to Failed so the next sync is
// not blocked by a stale in-progress marker.
func (f *FilePersistence) LoadStatus(_ context.Context, tenantID string) (*RunStatus, error) {
	data, err := os.ReadFile(f.statusPath(tenantID))
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist - this is OK for first run
			return &RunStatus{}, nil
		}
		return nil, fmt.Errorf("failed to read status file: %w", err)
	}

	var st RunStatus
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status data: %w", err)
	}

	if st.Phase == RunPhaseSyncing {
		st.Phase = RunPhaseFailed
		st.Message = "Previous sync was interrupted"
	}

	return &st, nil
}

func (f *FilePersistence) statusPath(tenantID string) string {
	return filepath.Join(f.basePath, tenantID+statusFileSuffix)
}
