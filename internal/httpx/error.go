package httpx

import (
	"fmt"
	"net/http"
	"strings"
)

// HTTPError represents a non-2xx HTTP response returned by the remote service.
type HTTPError struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "<nil>"
	}
	body := strings.TrimSpace(string(e.Body))
	if body == "" {
		return fmt.Sprintf("http error: status=%d (%s)", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("http error: status=%d body=%s", e.StatusCode, body)
}

// Retryable reports whether the error should be considered transient.
func (e *HTTPError) Retryable() bool {
	if e == nil {
		return false
	}
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == http.StatusRequestTimeout ||
		(e.StatusCode >= 500 && e.StatusCode <= 599)
}

// NotFound reports a 404 or 410 response.
func (e *HTTPError) NotFound() bool {
	return e != nil && (e.StatusCode == http.StatusNotFound || e.StatusCode == http.StatusGone)
}

// Rejected reports a 400 or 422 response, i.e. the server refused the payload.
func (e *HTTPError) Rejected() bool {
	return e != nil && (e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity)
}
