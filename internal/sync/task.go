package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/tenantmirror/tenant-mirror/internal/categories"
	"github.com/tenantmirror/tenant-mirror/internal/status"
)

// CategoryTask is one unit of work in a bulk sync run: a named, bound
// invocation of the load executor for a single category. Tasks are built
// fresh for each run and discarded afterwards.
type CategoryTask struct {
	// Name is the human-readable category label, unique within one run
	Name string

	// Run executes the category load and returns its result
	Run func(ctx context.Context) (*categories.Result, error)
}

// OutcomeStatus classifies how one category task ended
type OutcomeStatus string

const (
	// OutcomeSucceeded means the category was fetched and cached
	OutcomeSucceeded OutcomeStatus = "succeeded"

	// OutcomeFailed means the category fetch failed; siblings are unaffected
	OutcomeFailed OutcomeStatus = "failed"

	// OutcomeCancelled means the task was cancelled before completing
	OutcomeCancelled OutcomeStatus = "cancelled"
)

// Outcome is the structured per-task result the orchestrator collects.
// Task errors never escape as unhandled failures; they arrive here.
type Outcome struct {
	Category  string
	Status    OutcomeStatus
	ItemCount int
	Err       error
	Duration  time.Duration
}

// Summary aggregates the outcomes of one bulk sync run
type Summary struct {
	RunID    string
	TenantID string
	Started  time.Time
	Duration time.Duration
	Outcomes []Outcome

	Succeeded int
	Failed    int
	Cancelled int
}

// Total returns the number of categories the run attempted
func (s *Summary) Total() int {
	return len(s.Outcomes)
}

// Phase maps the summary to the persisted run phase. Cancellation is a
// distinct signal, never folded into failure.
func (s *Summary) Phase() status.RunPhase {
	switch {
	case s.Cancelled > 0:
		return status.RunPhaseCancelled
	case s.Failed > 0:
		return status.RunPhaseFailed
	default:
		return status.RunPhaseComplete
	}
}

// StatusLine renders the user-visible summary text
func (s *Summary) StatusLine() string {
	if s.Total() == 0 {
		return "No categories configured; nothing to sync"
	}
	if s.Cancelled > 0 {
		return fmt.Sprintf("Sync cancelled: %d/%d categories loaded; %d failed; %d cancelled",
			s.Succeeded, s.Total(), s.Failed, s.Cancelled)
	}
	return fmt.Sprintf("%d/%d categories loaded; %d failed", s.Succeeded, s.Total(), s.Failed)
}

// summarize builds a Summary from collected outcomes
func summarize(runID, tenantID string, started time.Time, outcomes []Outcome) *Summary {
	summary := &Summary{
		RunID:    runID,
		TenantID: tenantID,
		Started:  started,
		Duration: time.Since(started),
		Outcomes: outcomes,
	}
	for _, outcome := range outcomes {
		switch outcome.Status {
		case OutcomeSucceeded:
			summary.Succeeded++
		case OutcomeFailed:
			summary.Failed++
		case OutcomeCancelled:
			summary.Cancelled++
		}
	}
	return summary
}
