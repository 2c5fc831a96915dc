package status

import (
	"context"
	"errors"

	"github.com/tenantmirror/tenant-mirror/internal/httpclient"
)

// FormatError maps an error to the human-readable string shown to the user.
// Structured management-API errors render as status code, service error code
// and message; anything else falls back to the error's own message.
// Cancellation is not an error and should never reach this function, but is
// rendered neutrally if it does.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "operation cancelled"
	}

	var apiErr *httpclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}

	var httpErr *httpclient.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Error()
	}

	return err.Error()
}
