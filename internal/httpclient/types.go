package httpclient

import (
	"encoding/json"
	"fmt"
)

// HTTPError represents an HTTP error without a structured service payload
type HTTPError struct {
	StatusCode int
	Message    string
	URL        string
}

// Error returns the error message
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for URL %s: %s", e.StatusCode, e.URL, e.Message)
}

// NewHTTPError creates a new HTTP error
func NewHTTPError(statusCode int, url, message string) error {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		URL:        url,
	}
}

// APIError represents a structured error payload returned by the management
// API: HTTP status plus the service's own error code and message.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error returns the error message
func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// errorEnvelope is the JSON error wrapper used by the management API
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// parseAPIError attempts to parse a structured API error from a response
// body, falling back to a plain HTTPError when the body is not the expected
// JSON envelope.
func parseAPIError(statusCode int, body []byte, url string) error {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Code != "" {
		return &APIError{
			StatusCode: statusCode,
			Code:       envelope.Error.Code,
			Message:    envelope.Error.Message,
		}
	}
	return NewHTTPError(statusCode, url, string(body))
}
