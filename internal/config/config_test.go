package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantmirror/tenant-mirror/internal/config"
)

// writeConfigFile creates a temporary config file with the given content
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, `
tenant:
  id: "tenant-a"
  displayName: "Contoso"
api:
  endpoint: "https://api.example.com/v1.0"
  tokenEnv: "CONTOSO_TOKEN"
  timeout: "45s"
cache:
  dir: "/var/lib/tenant-mirror"
  ttl: "12h"
sync:
  concurrency: 4
categories:
  - key: "DeviceConfigurations"
    ttl: "1h"
  - key: "Groups"
  - key: "ManagedDevices"
    disabled: true
`)

	cfg, err := config.LoadConfig(config.WithConfigPath(path))
	require.NoError(t, err)

	assert.Equal(t, "tenant-a", cfg.Tenant.ID)
	assert.Equal(t, "Contoso", cfg.Tenant.DisplayName)
	assert.Equal(t, "https://api.example.com/v1.0", cfg.API.Endpoint)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout())
	assert.Equal(t, "/var/lib/tenant-mirror", cfg.CacheDir())
	assert.Equal(t, 12*time.Hour, cfg.DefaultTTL())
	assert.Equal(t, 4, cfg.Sync.Concurrency)

	assert.Equal(t, time.Hour, cfg.CategoryTTL("DeviceConfigurations"))
	assert.Equal(t, 12*time.Hour, cfg.CategoryTTL("Groups"), "category without override uses the default TTL")

	assert.True(t, cfg.CategoryEnabled("DeviceConfigurations"))
	assert.True(t, cfg.CategoryEnabled("Groups"))
	assert.False(t, cfg.CategoryEnabled("ManagedDevices"), "disabled category must be excluded")
	assert.False(t, cfg.CategoryEnabled("CompliancePolicies"), "unlisted category is excluded when a list is present")
}

func TestLoadConfig_Minimal(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, `
tenant:
  id: "tenant-a"
api:
  endpoint: "https://api.example.com/v1.0"
`)

	cfg, err := config.LoadConfig(config.WithConfigPath(path))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultEntryTTL, cfg.DefaultTTL())
	assert.Equal(t, config.DefaultRequestTimeout, cfg.RequestTimeout())
	assert.Contains(t, cfg.CacheDir(), filepath.Join("tenant-mirror", "cache"))
	assert.True(t, cfg.CategoryEnabled("Groups"), "empty categories list enables everything")
	assert.True(t, cfg.CategoryEnabled("DeviceConfigurations"))
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing tenant id",
			content: `
api:
  endpoint: "https://api.example.com"
`,
			wantErr: "tenant.id is required",
		},
		{
			name: "missing endpoint",
			content: `
tenant:
  id: "tenant-a"
`,
			wantErr: "api.endpoint is required",
		},
		{
			name: "bad api timeout",
			content: `
tenant:
  id: "tenant-a"
api:
  endpoint: "https://api.example.com"
  timeout: "soon"
`,
			wantErr: "api.timeout",
		},
		{
			name: "bad cache ttl",
			content: `
tenant:
  id: "tenant-a"
api:
  endpoint: "https://api.example.com"
cache:
  ttl: "never"
`,
			wantErr: "cache.ttl",
		},
		{
			name: "negative concurrency",
			content: `
tenant:
  id: "tenant-a"
api:
  endpoint: "https://api.example.com"
sync:
  concurrency: -1
`,
			wantErr: "sync.concurrency",
		},
		{
			name: "category without key",
			content: `
tenant:
  id: "tenant-a"
api:
  endpoint: "https://api.example.com"
categories:
  - ttl: "1h"
`,
			wantErr: "key is required",
		},
		{
			name: "duplicate category key",
			content: `
tenant:
  id: "tenant-a"
api:
  endpoint: "https://api.example.com"
categories:
  - key: "Groups"
  - key: "Groups"
`,
			wantErr: "duplicate category key",
		},
		{
			name: "bad category ttl",
			content: `
tenant:
  id: "tenant-a"
api:
  endpoint: "https://api.example.com"
categories:
  - key: "Groups"
    ttl: "often"
`,
			wantErr: "ttl must be a valid duration",
		},
		{
			name:    "malformed yaml",
			content: "tenant: [unclosed",
			wantErr: "failed to parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeConfigFile(t, tt.content)
			_, err := config.LoadConfig(config.WithConfigPath(path))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig_PathRequired(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(config.WithConfigPath(filepath.Join(t.TempDir(), "absent.yaml")))
	require.Error(t, err)
}

func TestConfig_Token(t *testing.T) {
	// Not parallel: manipulates process environment
	t.Setenv("CONTOSO_TOKEN", "secret-token")
	t.Setenv(config.EnvPrefix+"_TOKEN", "default-token")

	named := &config.Config{API: config.APIConfig{TokenEnv: "CONTOSO_TOKEN"}}
	assert.Equal(t, "secret-token", named.Token())

	fallback := &config.Config{}
	assert.Equal(t, "default-token", fallback.Token())
}

func TestConfig_CategoryTTL_BadOverrideFallsBack(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Cache:      config.CacheConfig{TTL: "6h"},
		Categories: []config.CategoryConfig{{Key: "Groups", TTL: ""}},
	}
	assert.Equal(t, 6*time.Hour, cfg.CategoryTTL("Groups"))
	assert.Equal(t, 6*time.Hour, cfg.CategoryTTL("Unknown"))
}
