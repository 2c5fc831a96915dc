package categories

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tenantmirror/tenant-mirror/internal/config"
	"github.com/tenantmirror/tenant-mirror/internal/httpclient"
)

// Definition describes one known data category of the management API
type Definition struct {
	// Key is the stable cache key (e.g. "DeviceConfigurations")
	Key string

	// Label is the human-readable category label used in status text
	Label string

	// Resource is the API resource path relative to the endpoint
	Resource string
}

// Definitions returns the known category set. A category only becomes
// fetchable when config enables it; the registry built from this list is
// what the orchestrator iterates.
func Definitions() []Definition {
	return []Definition{
		{Key: "AppProtectionPolicies", Label: "app protection policies", Resource: "deviceAppManagement/managedAppPolicies"},
		{Key: "CompliancePolicies", Label: "compliance policies", Resource: "deviceManagement/deviceCompliancePolicies"},
		{Key: "DeviceConfigurations", Label: "device configurations", Resource: "deviceManagement/deviceConfigurations"},
		{Key: "DeviceManagementScripts", Label: "device management scripts", Resource: "deviceManagement/deviceManagementScripts"},
		{Key: "EnrollmentConfigurations", Label: "enrollment configurations", Resource: "deviceManagement/deviceEnrollmentConfigurations"},
		{Key: "Groups", Label: "groups", Resource: "groups"},
		{Key: "ManagedApplications", Label: "managed applications", Resource: "deviceAppManagement/mobileApps"},
		{Key: "ManagedDevices", Label: "managed devices", Resource: "deviceManagement/managedDevices"},
	}
}

// collectionPage is one page of a collection response
type collectionPage struct {
	Value    []json.RawMessage `json:"value"`
	NextLink string            `json:"@odata.nextLink"`
}

// apiFetcher fetches one category's collection from the management API,
// following nextLink paging until the collection is complete.
type apiFetcher struct {
	def      Definition
	endpoint string
	client   httpclient.Client
}

// NewAPIFetcher creates a Fetcher for one category definition
func NewAPIFetcher(def Definition, endpoint string, client httpclient.Client) Fetcher {
	return &apiFetcher{
		def:      def,
		endpoint: strings.TrimSuffix(endpoint, "/"),
		client:   client,
	}
}

// Category returns the human-readable category label
func (f *apiFetcher) Category() string {
	return f.def.Label
}

// CacheKey returns the stable data type identifier
func (f *apiFetcher) CacheKey() string {
	return f.def.Key
}

// Fetch retrieves all pages of the category collection
func (f *apiFetcher) Fetch(ctx context.Context) (*Result, error) {
	var items []json.RawMessage

	url := f.endpoint + "/" + f.def.Resource
	for url != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := f.client.Get(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", f.def.Label, err)
		}

		var page collectionPage
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, fmt.Errorf("failed to parse %s response: %w", f.def.Label, err)
		}

		items = append(items, page.Value...)
		url = page.NextLink
	}

	return NewResult(items), nil
}

// NewRegistryFromConfig builds the registry of currently available
// categories: every known definition that config enables gets one API
// fetcher. Disabled categories are silently excluded.
func NewRegistryFromConfig(cfg *config.Config, client httpclient.Client) (*Registry, error) {
	registry := NewRegistry()
	for _, def := range Definitions() {
		if !cfg.CategoryEnabled(def.Key) {
			continue
		}
		if err := registry.Register(NewAPIFetcher(def, cfg.API.Endpoint, client)); err != nil {
			return nil, fmt.Errorf("failed to register category %s: %w", def.Key, err)
		}
	}
	return registry, nil
}
