package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput signals that the caller supplied no meaningful query input.
	ErrEmptyInput = errors.New("empty input")
	// ErrTransport signals a network, TLS, DNS or non-2xx failure talking to the backend.
	ErrTransport = errors.New("backend transport failure")
	// ErrAuthentication signals that the backend rejected the API key (401/403).
	ErrAuthentication = errors.New("backend authentication failed")
	// ErrDecode signals a response body that is not JSON or lacks the expected envelope.
	ErrDecode = errors.New("backend response decode failure")
	// ErrTimeout signals that the backend did not answer within the request timeout.
	ErrTimeout = errors.New("backend request timed out")
	// ErrCanceled signals that the caller canceled the request.
	ErrCanceled = errors.New("request canceled")
	// ErrCategoryLimit signals that a category aggregation page was full and more buckets remain.
	ErrCategoryLimit = errors.New("category bucket limit reached")
)

// BackendError is a non-2xx backend response.
// Unwraps to ErrAuthentication for 401/403 and ErrTransport otherwise.
type BackendError struct {
	StatusCode int
	Type       string
	Reason     string
}

func (e *BackendError) Error() string {
	switch {
	case e.Type == "" && e.Reason == "":
		return fmt.Sprintf("backend status %d", e.StatusCode)
	case e.Type == "":
		return fmt.Sprintf("backend status %d: %s", e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("backend status %d: %s: %s", e.StatusCode, e.Type, e.Reason)
}

// Unwrap lets errors.Is match both the specific kind and ErrTransport.
func (e *BackendError) Unwrap() []error {
	if e.IsAuth() {
		return []error{ErrAuthentication, ErrTransport}
	}
	return []error{ErrTransport}
}

// IsAuth reports whether the backend rejected the credentials.
func (e *BackendError) IsAuth() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// Kind returns a short label for the error class, used as a metrics label.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, ErrCanceled):
		return "canceled"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrAuthentication):
		return "auth"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrCategoryLimit):
		return "category_limit"
	case errors.Is(err, ErrTransport):
		return "transport"
	default:
		return "other"
	}
}
