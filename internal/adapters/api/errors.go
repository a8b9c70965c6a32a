package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthorized is returned when the remote API answers 401.
	ErrUnauthorized = errors.New("not authorized")
	// ErrInvalidFormat is returned when a response body does not have the expected shape.
	ErrInvalidFormat = errors.New("unexpected response format")
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
)

// APIError is a non-2xx answer from the remote API.
// Message is the server-provided text when the body carried one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// MessageOf returns the user-facing text for err: the server's message for an
// *APIError, otherwise fallback.
func MessageOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// newAPIError reads the message from a JSON error body. The remote API uses
// "msg"; "message" and "error" are accepted as well.
func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status}
	var payload map[string]any
	if json.Unmarshal(body, &payload) == nil {
		for _, k := range []string{"msg", "message", "error"} {
			if s, ok := payload[k].(string); ok && strings.TrimSpace(s) != "" {
				e.Message = s
				return e
			}
		}
	}
	e.Message = fmt.Sprintf("Request failed with status %d", status)
	return e
}
