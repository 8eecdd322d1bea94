package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/mkozhevin/campus-helpdesk/internal/infrastructure/resilience"
)

type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "gemini status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("gemini %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("gemini %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Body))
}

// isNotFound reports the endpoint-mismatch class: the version path or model
// identifier does not exist, so the sweep should advance to the next
// candidate instead of retrying this one.
func isNotFound(err error) bool {
	var statusErr *HTTPStatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

// classifyGeminiError drives the executor: transient transport and server
// conditions retry in place and count against the breaker; an endpoint
// mismatch neither retries nor counts, because probing nonexistent
// (base, model) pairs is expected during the sweep.
func classifyGeminiError(err error) resilience.Outcome {
	if err == nil {
		return resilience.Outcome{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.Outcome{Retryable: false, RecordFailure: true}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.Outcome{Retryable: false, RecordFailure: false}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode == http.StatusNotFound {
			return resilience.Outcome{Retryable: false, RecordFailure: false}
		}
		if isRetryableHTTPStatus(statusErr.StatusCode) {
			return resilience.Outcome{Retryable: true, RecordFailure: true}
		}
		return resilience.Outcome{Retryable: false, RecordFailure: true}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.Outcome{Retryable: true, RecordFailure: true}
	}

	return resilience.Outcome{Retryable: false, RecordFailure: true}
}

func isRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
