package app

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tenantmirror/tenant-mirror/internal/cache"
	"github.com/tenantmirror/tenant-mirror/internal/categories"
	"github.com/tenantmirror/tenant-mirror/internal/config"
	"github.com/tenantmirror/tenant-mirror/internal/executor"
	"github.com/tenantmirror/tenant-mirror/internal/httpclient"
	"github.com/tenantmirror/tenant-mirror/internal/sealer"
	"github.com/tenantmirror/tenant-mirror/internal/status"
	"github.com/tenantmirror/tenant-mirror/internal/sync"
)

// components holds the wired application dependencies for one command run
type components struct {
	cfg          *config.Config
	store        cache.Store
	registry     *categories.Registry
	orchestrator sync.Orchestrator
	reporter     *status.EventReporter
}

// buildComponents loads configuration and wires the cache store, category
// registry, executor and orchestrator together. Close must be called when
// the command finishes so pending status events are flushed.
func buildComponents(cmd *cobra.Command) (*components, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to read config flag: %w", err)
	}
	if path == "" {
		return nil, fmt.Errorf("a configuration file is required (--config)")
	}

	cfg, err := config.LoadConfig(config.WithConfigPath(path))
	if err != nil {
		return nil, err
	}

	seal, err := buildSealer(cfg)
	if err != nil {
		return nil, err
	}

	store := cache.NewFileStore(cfg.CacheDir(), seal, cfg.DefaultTTL())
	client := httpclient.NewDefaultClient(cfg.RequestTimeout(), cfg.Token())

	registry, err := categories.NewRegistryFromConfig(cfg, client)
	if err != nil {
		return nil, err
	}

	reporter := status.NewEventReporter(status.NewLogReporter(slog.Default()))
	exec := executor.New(store, reporter, cfg.CategoryTTL)

	orchestrator := sync.New(registry, exec, reporter,
		sync.WithConcurrencyLimit(cfg.Sync.Concurrency),
		sync.WithPersistence(status.NewFilePersistence(cfg.CacheDir())),
	)

	return &components{
		cfg:          cfg,
		store:        store,
		registry:     registry,
		orchestrator: orchestrator,
		reporter:     reporter,
	}, nil
}

// buildSealer selects the at-rest encryption implementation. Development
// runs can opt out via cache.noEncrypt; everything else uses AES-GCM with
// the key kept in the OS keyring.
func buildSealer(cfg *config.Config) (sealer.Sealer, error) {
	if cfg.Cache.NoEncrypt {
		slog.Warn("Cache encryption is disabled; cached data is stored in plaintext")
		return sealer.NewPassthrough(), nil
	}
	return sealer.NewAES(sealer.NewKeyringProvider())
}

// Close flushes pending status events
func (c *components) Close() {
	c.reporter.Close()
}
