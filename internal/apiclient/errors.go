package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNetworkUnavailable means no response reached the process at all.
	ErrNetworkUnavailable = errors.New("network unavailable")
	// ErrTimeout means the request exceeded the client deadline.
	ErrTimeout = errors.New("request timed out")
)

// APIError is a failure status the backend responded with, carrying the
// normalized {message, details?} envelope.
type APIError struct {
	Status  int
	Message string
	Details json.RawMessage
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
