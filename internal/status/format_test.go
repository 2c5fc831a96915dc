package status_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tenantmirror/tenant-mirror/internal/httpclient"
	"github.com/tenantmirror/tenant-mirror/internal/status"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil error",
			err:  nil,
			want: "",
		},
		{
			name: "structured api error",
			err:  &httpclient.APIError{StatusCode: 403, Code: "Forbidden", Message: "insufficient privileges"},
			want: "HTTP 403 (Forbidden): insufficient privileges",
		},
		{
			name: "wrapped api error",
			err:  fmt.Errorf("fetching compliance policies: %w", &httpclient.APIError{StatusCode: 429, Code: "TooManyRequests", Message: "throttled"}),
			want: "HTTP 429 (TooManyRequests): throttled",
		},
		{
			name: "plain http error",
			err:  httpclient.NewHTTPError(502, "https://api.example.com/groups", "Bad Gateway"),
			want: "HTTP 502 for URL https://api.example.com/groups: Bad Gateway",
		},
		{
			name: "context cancelled",
			err:  context.Canceled,
			want: "operation cancelled",
		},
		{
			name: "deadline exceeded",
			err:  context.DeadlineExceeded,
			want: "operation cancelled",
		},
		{
			name: "generic error falls back to its message",
			err:  errors.New("connection refused"),
			want: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, status.FormatError(tt.err))
		})
	}
}
