// Package sync implements the bulk synchronization orchestrator: it turns
// the set of currently registered category fetchers into a task list and
// runs all tasks concurrently under one cancellation scope, isolating each
// task's failure and aggregating per-task outcomes into a summary.
package sync

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tenantmirror/tenant-mirror/internal/categories"
	"github.com/tenantmirror/tenant-mirror/internal/executor"
	"github.com/tenantmirror/tenant-mirror/internal/status"
)

// ErrSyncInProgress is returned when a bulk sync is invoked while another
// run against the same orchestrator is still active. Re-entrant runs are
// rejected rather than queued so two writers never race on the same cache
// keys.
var ErrSyncInProgress = errors.New("bulk sync already in progress")

// Orchestrator runs bulk synchronization for one tenant
type Orchestrator interface {
	// SyncAll refreshes every registered category concurrently and returns
	// the aggregated summary. Task-level failures and cancellation are
	// reported inside the summary, never as a returned error; the only
	// error is ErrSyncInProgress for a re-entrant invocation.
	SyncAll(ctx context.Context, tenantID string) (*Summary, error)
}

// defaultOrchestrator is the default implementation of Orchestrator
type defaultOrchestrator struct {
	registry    *categories.Registry
	executor    *executor.Executor
	reporter    status.Reporter
	persistence status.Persistence
	limit       int

	running atomic.Bool
}

// Option is a function that configures the orchestrator
type Option func(*defaultOrchestrator)

// WithConcurrencyLimit bounds how many category fetches run in parallel.
// Zero or negative means unbounded.
func WithConcurrencyLimit(limit int) Option {
	return func(o *defaultOrchestrator) {
		o.limit = limit
	}
}

// WithPersistence records the run status per tenant across invocations
func WithPersistence(p status.Persistence) Option {
	return func(o *defaultOrchestrator) {
		o.persistence = p
	}
}

// New creates an orchestrator with injected dependencies
func New(
	registry *categories.Registry,
	exec *executor.Executor,
	reporter status.Reporter,
	opts ...Option,
) Orchestrator {
	o := &defaultOrchestrator{
		registry: registry,
		executor: exec,
		reporter: reporter,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// SyncAll runs one bulk synchronization for the tenant
func (o *defaultOrchestrator) SyncAll(ctx context.Context, tenantID string) (*Summary, error) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer o.running.Store(false)

	runID := uuid.NewString()
	started := time.Now()

	tasks := o.buildTasks(tenantID)
	slog.Info("Starting bulk sync",
		"run_id", runID,
		"tenant", tenantID,
		"category_count", len(tasks))

	// Zero configured categories is a no-op success, not an error
	if len(tasks) == 0 {
		summary := summarize(runID, tenantID, started, nil)
		o.reporter.SetStatus(summary.StatusLine())
		o.persistStatus(ctx, tenantID, summary)
		return summary, nil
	}

	o.persistRunning(ctx, tenantID, runID, started, len(tasks))

	outcomes := make([]Outcome, len(tasks))

	group, groupCtx := errgroup.WithContext(ctx)
	if o.limit > 0 {
		group.SetLimit(o.limit)
	}

	for i, task := range tasks {
		group.Go(func() error {
			outcomes[i] = o.runTask(groupCtx, task)
			// Task failures are captured as outcomes; returning them here
			// would cancel sibling tasks through the group context.
			return nil
		})
	}
	_ = group.Wait()

	summary := summarize(runID, tenantID, started, outcomes)
	o.reporter.SetStatus(summary.StatusLine())
	o.persistStatus(ctx, tenantID, summary)

	slog.Info("Bulk sync finished",
		"run_id", runID,
		"tenant", tenantID,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"cancelled", summary.Cancelled,
		"duration", summary.Duration)

	return summary, nil
}

// buildTasks assembles the task list from the registered fetchers. A
// category whose fetcher dependency is absent is simply not in the registry,
// so partial configuration shrinks the list instead of failing it.
func (o *defaultOrchestrator) buildTasks(tenantID string) []CategoryTask {
	fetchers := o.registry.Fetchers()
	tasks := make([]CategoryTask, 0, len(fetchers))
	for _, fetcher := range fetchers {
		tasks = append(tasks, CategoryTask{
			Name: fetcher.Category(),
			Run: func(ctx context.Context) (*categories.Result, error) {
				return o.executor.Execute(ctx, fetcher, tenantID)
			},
		})
	}
	return tasks
}

// runTask executes one task and classifies its outcome. Cancellation takes
// effect at task granularity: a task that never started is cancelled without
// invoking its fetch, and a completed task keeps its cache write.
func (o *defaultOrchestrator) runTask(ctx context.Context, task CategoryTask) Outcome {
	if err := ctx.Err(); err != nil {
		return Outcome{Category: task.Name, Status: OutcomeCancelled, Err: err}
	}

	taskStart := time.Now()
	result, err := task.Run(ctx)
	duration := time.Since(taskStart)

	switch {
	case err == nil:
		return Outcome{
			Category:  task.Name,
			Status:    OutcomeSucceeded,
			ItemCount: result.Count,
			Duration:  duration,
		}
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return Outcome{Category: task.Name, Status: OutcomeCancelled, Err: err, Duration: duration}
	default:
		return Outcome{Category: task.Name, Status: OutcomeFailed, Err: err, Duration: duration}
	}
}

// persistRunning records that a run is in progress
func (o *defaultOrchestrator) persistRunning(
	ctx context.Context, tenantID, runID string, started time.Time, categoryCount int,
) {
	if o.persistence == nil {
		return
	}
	st := &status.RunStatus{
		Phase:         status.RunPhaseSyncing,
		Message:       "Bulk sync in progress",
		RunID:         runID,
		StartedAt:     &started,
		CategoryCount: categoryCount,
	}
	if err := o.persistence.SaveStatus(ctx, tenantID, st); err != nil {
		slog.Error("Failed to persist sync status", "tenant", tenantID, "error", err)
	}
}

// persistStatus records the final state of a run
func (o *defaultOrchestrator) persistStatus(ctx context.Context, tenantID string, summary *Summary) {
	if o.persistence == nil {
		return
	}
	finished := summary.Started.Add(summary.Duration)
	st := &status.RunStatus{
		Phase:          summary.Phase(),
		Message:        summary.StatusLine(),
		RunID:          summary.RunID,
		StartedAt:      &summary.Started,
		FinishedAt:     &finished,
		CategoryCount:  summary.Total(),
		SucceededCount: summary.Succeeded,
		FailedCount:    summary.Failed,
		CancelledCount: summary.Cancelled,
	}
	if err := o.persistence.SaveStatus(ctx, tenantID, st); err != nil {
		slog.Error("Failed to persist sync status", "tenant", tenantID, "error", err)
	}
}
