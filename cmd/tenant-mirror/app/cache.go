package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the local mirror cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what is cached for the configured tenant",
	RunE:  runCacheStatus,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached data for the configured tenant",
	Long: `Removes all cached entries for the tenant, or a single category when
--category is given. Clearing an absent entry is a no-op.`,
	RunE: runCacheClear,
}

func init() {
	cacheStatusCmd.Flags().String("format", "", "Output format (json)")
	cacheClearCmd.Flags().String("category", "", "Clear only this category (cache key)")
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

// cacheEntrySummary is the JSON shape emitted by cache status
type cacheEntrySummary struct {
	DataType  string    `json:"dataType"`
	ItemCount int       `json:"itemCount"`
	CachedAt  time.Time `json:"cachedAtUtc"`
	ExpiresAt time.Time `json:"expiresAtUtc"`
	Stale     bool      `json:"stale"`
}

func runCacheStatus(cmd *cobra.Command, _ []string) error {
	comps, err := buildComponents(cmd)
	if err != nil {
		return err
	}
	defer comps.Close()

	entries, err := comps.store.List(cmd.Context(), comps.cfg.Tenant.ID)
	if err != nil {
		return fmt.Errorf("failed to list cache entries: %w", err)
	}

	now := time.Now()
	summaries := make([]cacheEntrySummary, 0, len(entries))
	for _, entry := range entries {
		summaries = append(summaries, cacheEntrySummary{
			DataType:  entry.DataType,
			ItemCount: entry.ItemCount,
			CachedAt:  entry.CachedAt,
			ExpiresAt: entry.ExpiresAt,
			Stale:     entry.Expired(now),
		})
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to read format flag: %w", err)
	}

	if format == "json" {
		output, err := json.MarshalIndent(summaries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format cache status: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	if len(summaries) == 0 {
		slog.Info("Cache is empty", "tenant", comps.cfg.Tenant.ID)
		return nil
	}
	for _, s := range summaries {
		slog.Info("Cached category",
			"category", s.DataType,
			"items", s.ItemCount,
			"cached_at", s.CachedAt.Format(time.RFC3339),
			"expires_at", s.ExpiresAt.Format(time.RFC3339),
			"stale", s.Stale)
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	comps, err := buildComponents(cmd)
	if err != nil {
		return err
	}
	defer comps.Close()

	category, err := cmd.Flags().GetString("category")
	if err != nil {
		return fmt.Errorf("failed to read category flag: %w", err)
	}

	tenantID := comps.cfg.Tenant.ID
	if category != "" {
		if err := comps.store.ClearType(cmd.Context(), tenantID, category); err != nil {
			return fmt.Errorf("failed to clear category %s: %w", category, err)
		}
		slog.Info("Cleared cached category", "tenant", tenantID, "category", category)
		return nil
	}

	if err := comps.store.Clear(cmd.Context(), tenantID); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	slog.Info("Cleared tenant cache", "tenant", tenantID)
	return nil
}
