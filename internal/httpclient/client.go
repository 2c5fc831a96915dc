// Package httpclient provides the HTTP transport used to fetch category
// collections from the remote management API. Transient failures (throttling
// and server errors) are retried with exponential backoff; client errors are
// returned immediately.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	// defaultTimeout is the per-request timeout when none is configured
	defaultTimeout = 30 * time.Second

	// defaultMaxTries bounds retry attempts for a single Get
	defaultMaxTries = 4

	// userAgent identifies this client to the management API
	userAgent = "tenant-mirror/1.0"

	// maxResponseSize caps response bodies at 50MB to prevent memory exhaustion
	maxResponseSize = 50 * 1024 * 1024
)

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=client.go Client

// Client defines the interface for fetching data over HTTP
type Client interface {
	// Get performs a GET request and returns the response body
	Get(ctx context.Context, url string) ([]byte, error)
}

// defaultClient is the default implementation of Client
type defaultClient struct {
	client   *http.Client
	token    string
	maxTries uint
}

// NewDefaultClient creates a client with the given timeout and bearer token.
// A zero timeout uses the default. An empty token sends unauthenticated
// requests (offline/dev mode against a local endpoint).
func NewDefaultClient(timeout time.Duration, token string) Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &defaultClient{
		client:   &http.Client{Timeout: timeout},
		token:    token,
		maxTries: defaultMaxTries,
	}
}

// Get performs a GET request with retry on throttling and server errors
func (c *defaultClient) Get(ctx context.Context, url string) ([]byte, error) {
	operation := func() ([]byte, error) {
		return c.doGet(ctx, url)
	}

	data, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.maxTries),
	)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// doGet performs a single GET attempt. Errors are classified for the retry
// policy: 429 honors Retry-After, 5xx and transport errors retry with
// backoff, everything else is permanent.
func (c *defaultClient) doGet(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// Transport-level failure; let the retry policy decide unless the
		// context is already gone.
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		if seconds, parseErr := strconv.Atoi(resp.Header.Get("Retry-After")); parseErr == nil && seconds > 0 {
			return nil, backoff.RetryAfter(seconds)
		}
		return nil, parseAPIError(resp.StatusCode, body, url)

	case resp.StatusCode >= 500:
		return nil, parseAPIError(resp.StatusCode, body, url)

	default:
		return nil, backoff.Permanent(parseAPIError(resp.StatusCode, body, url))
	}
}
