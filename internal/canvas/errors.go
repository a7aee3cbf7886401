package canvas

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuth reports rejected credentials (HTTP 401/403).
	ErrAuth = errors.New("canvas rejected the API token")
	// ErrNetwork reports a transient failure: unreachable host, timeout or 5xx.
	ErrNetwork = errors.New("canvas unreachable")
)

// HTTPError is a non-2xx response from Canvas.
type HTTPError struct {
	StatusCode int
	Path       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.StatusCode)
}

// Unwrap maps the status onto the error taxonomy. Other 4xx responses have no
// sentinel.
func (e *HTTPError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized, e.StatusCode == http.StatusForbidden:
		return ErrAuth
	case e.StatusCode == http.StatusTooManyRequests, e.StatusCode >= 500:
		return ErrNetwork
	default:
		return nil
	}
}

// Retryable reports whether err is worth retrying with backoff.
func Retryable(err error) bool {
	return errors.Is(err, ErrNetwork)
}
