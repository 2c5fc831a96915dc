package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	syncpkg "github.com/tenantmirror/tenant-mirror/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Refresh the local mirror for the configured tenant",
	Long: `Fetches every configured data category from the remote management API
concurrently and replaces the corresponding local cache entries. A category
that fails does not affect the others. Ctrl-C cancels in-flight and
not-yet-started fetches; categories that already completed keep their data.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, _ []string) error {
	comps, err := buildComponents(cmd)
	if err != nil {
		return err
	}
	defer comps.Close()

	// Ctrl-C is the user-visible "Cancel" for the whole run
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := comps.orchestrator.SyncAll(ctx, comps.cfg.Tenant.ID)
	if err != nil {
		if errors.Is(err, syncpkg.ErrSyncInProgress) {
			return fmt.Errorf("a sync is already running for this tenant")
		}
		return err
	}

	for _, outcome := range summary.Outcomes {
		switch outcome.Status {
		case syncpkg.OutcomeSucceeded:
			slog.Info("Category loaded",
				"category", outcome.Category,
				"items", outcome.ItemCount,
				"duration", outcome.Duration)
		case syncpkg.OutcomeFailed:
			slog.Error("Category failed",
				"category", outcome.Category,
				"error", outcome.Err)
		case syncpkg.OutcomeCancelled:
			slog.Warn("Category cancelled", "category", outcome.Category)
		}
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d categories failed", summary.Failed, summary.Total())
	}
	return nil
}
