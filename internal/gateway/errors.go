package gateway

import (
	"fmt"
	"net/http"
	"strings"

	"pitchctl/internal/services"
)

const maxErrorBodyBytes = 4 << 10

// StatusError reports a non-2xx reply from the backend.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("gateway: %s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("gateway: %s %s: unexpected status %d: %s", e.Method, e.Path, e.StatusCode, body)
}

func (e *StatusError) Unwrap() error {
	return services.ErrTransport
}

// Retryable reports whether the same request might succeed later.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}
