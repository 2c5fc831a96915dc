// Package config provides configuration loading and management for the tenant mirror.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment variables read by the application.
const EnvPrefix = "TENANT_MIRROR"

const (
	// DefaultEntryTTL is the cache time-to-live applied to categories without
	// an explicit ttl setting.
	DefaultEntryTTL = 24 * time.Hour

	// DefaultRequestTimeout is the per-request timeout for remote API calls.
	DefaultRequestTimeout = 30 * time.Second
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		// Validate the path to prevent path traversal attacks
		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// Tenant identifies the directory tenant whose data is mirrored locally
	Tenant TenantConfig `yaml:"tenant"`

	// API configures access to the remote device-management API
	API APIConfig `yaml:"api"`

	// Cache configures the local encrypted mirror store
	Cache CacheConfig `yaml:"cache,omitempty"`

	// Sync configures bulk synchronization behavior
	Sync SyncConfig `yaml:"sync,omitempty"`

	// Categories optionally restricts or tunes individual data categories.
	// When empty, every known category is enabled with default settings.
	Categories []CategoryConfig `yaml:"categories,omitempty"`
}

// TenantConfig identifies the active tenant
type TenantConfig struct {
	// ID is the opaque tenant identifier; it partitions all cached data
	ID string `yaml:"id"`

	// DisplayName is an optional human-readable tenant label
	DisplayName string `yaml:"displayName,omitempty"`
}

// APIConfig defines remote management API settings
type APIConfig struct {
	// Endpoint is the base API URL (without resource path)
	Endpoint string `yaml:"endpoint"`

	// TokenEnv names the environment variable holding the bearer token.
	// Credential acquisition itself is outside this tool; something else
	// must have placed a valid token there.
	TokenEnv string `yaml:"tokenEnv,omitempty"`

	// Timeout is the per-request timeout (e.g. "30s")
	Timeout string `yaml:"timeout,omitempty"`
}

// CacheConfig defines local cache storage settings
type CacheConfig struct {
	// Dir is the cache directory. Defaults to the per-user XDG data
	// directory for the application when empty.
	Dir string `yaml:"dir,omitempty"`

	// TTL is the default entry time-to-live (e.g. "24h")
	TTL string `yaml:"ttl,omitempty"`

	// NoEncrypt disables at-rest encryption. Intended for development only.
	NoEncrypt bool `yaml:"noEncrypt,omitempty"`
}

// SyncConfig defines bulk synchronization settings
type SyncConfig struct {
	// Concurrency bounds the number of categories fetched in parallel.
	// Zero means no bound.
	Concurrency int `yaml:"concurrency,omitempty"`
}

// CategoryConfig tunes a single data category
type CategoryConfig struct {
	// Key is the stable category identifier (e.g. "DeviceConfigurations")
	Key string `yaml:"key"`

	// TTL overrides the default cache time-to-live for this category
	TTL string `yaml:"ttl,omitempty"`

	// Disabled excludes the category from registration and bulk sync
	Disabled bool `yaml:"disabled,omitempty"`
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	// As of now, this is required because there's no other options to load
	// configuration. Once we add more options, we can remove this check.
	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	// Read the entire file into memory
	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML content
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	// Validate the config
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// CacheDir returns the configured cache directory, defaulting to the
// per-user XDG data directory.
func (c *Config) CacheDir() string {
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}
	return filepath.Join(xdg.DataHome, "tenant-mirror", "cache")
}

// DefaultTTL returns the default cache entry time-to-live
func (c *Config) DefaultTTL() time.Duration {
	if c.Cache.TTL == "" {
		return DefaultEntryTTL
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return DefaultEntryTTL
	}
	return d
}

// CategoryTTL returns the cache time-to-live for the named category,
// falling back to the default when no per-category override is set.
func (c *Config) CategoryTTL(key string) time.Duration {
	for _, cat := range c.Categories {
		if cat.Key != key || cat.TTL == "" {
			continue
		}
		if d, err := time.ParseDuration(cat.TTL); err == nil {
			return d
		}
	}
	return c.DefaultTTL()
}

// CategoryEnabled reports whether the named category should be registered.
// An empty categories list enables everything; otherwise the category must
// be listed and not disabled.
func (c *Config) CategoryEnabled(key string) bool {
	if len(c.Categories) == 0 {
		return true
	}
	for _, cat := range c.Categories {
		if cat.Key == key {
			return !cat.Disabled
		}
	}
	return false
}

// RequestTimeout returns the per-request timeout for remote API calls
func (c *Config) RequestTimeout() time.Duration {
	if c.API.Timeout == "" {
		return DefaultRequestTimeout
	}
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		return DefaultRequestTimeout
	}
	return d
}

// Token returns the bearer token from the configured environment variable,
// or the empty string when unset. An empty token puts the tool in offline
// mode: cache reads still work, fetches fail with an auth error.
func (c *Config) Token() string {
	if c.API.TokenEnv == "" {
		return os.Getenv(EnvPrefix + "_TOKEN")
	}
	return os.Getenv(c.API.TokenEnv)
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if c.Tenant.ID == "" {
		return fmt.Errorf("tenant.id is required")
	}

	if c.API.Endpoint == "" {
		return fmt.Errorf("api.endpoint is required")
	}

	if c.API.Timeout != "" {
		if _, err := time.ParseDuration(c.API.Timeout); err != nil {
			return fmt.Errorf("api.timeout must be a valid duration (e.g., '30s'): %w", err)
		}
	}

	if c.Cache.TTL != "" {
		if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
			return fmt.Errorf("cache.ttl must be a valid duration (e.g., '24h'): %w", err)
		}
	}

	if c.Sync.Concurrency < 0 {
		return fmt.Errorf("sync.concurrency must not be negative")
	}

	seen := make(map[string]bool)
	for i, cat := range c.Categories {
		if cat.Key == "" {
			return fmt.Errorf("categories[%d]: key is required", i)
		}
		if seen[cat.Key] {
			return fmt.Errorf("categories[%d]: duplicate category key '%s'", i, cat.Key)
		}
		seen[cat.Key] = true

		if cat.TTL != "" {
			if _, err := time.ParseDuration(cat.TTL); err != nil {
				return fmt.Errorf("categories[%d] (%s): ttl must be a valid duration: %w", i, cat.Key, err)
			}
		}
	}

	return nil
}
