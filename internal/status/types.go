package status

import "time"

// RunPhase represents the current phase of a bulk synchronization run
type RunPhase string

const (
	// RunPhaseSyncing means a bulk sync is currently in progress
	RunPhaseSyncing RunPhase = "Syncing"

	// RunPhaseComplete means the last bulk sync completed successfully
	RunPhaseComplete RunPhase = "Complete"

	// RunPhaseFailed means the last bulk sync had failures
	RunPhaseFailed RunPhase = "Failed"

	// RunPhaseCancelled means the last bulk sync was cancelled by the user
	RunPhaseCancelled RunPhase = "Cancelled"
)

// RunStatus represents the persisted state of the last bulk sync for a tenant
type RunStatus struct {
	// Phase represents the current synchronization phase
	Phase RunPhase `json:"phase"`

	// Message provides additional information about the run
	Message string `json:"message,omitempty"`

	// RunID is the identifier of the last run
	RunID string `json:"runId,omitempty"`

	// StartedAt is when the last run began
	StartedAt *time.Time `json:"startedAt,omitempty"`

	// FinishedAt is when the last run ended
	FinishedAt *time.Time `json:"finishedAt,omitempty"`

	// CategoryCount is the number of categories the run attempted
	CategoryCount int `json:"categoryCount,omitempty"`

	// SucceededCount is the number of categories loaded successfully
	SucceededCount int `json:"succeededCount,omitempty"`

	// FailedCount is the number of categories that failed
	FailedCount int `json:"failedCount,omitempty"`

	// CancelledCount is the number of categories cancelled before completion
	CancelledCount int `json:"cancelledCount,omitempty"`
}
