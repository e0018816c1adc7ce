package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Classify maps an OpenAI-compatible API error to a package sentinel.
// Unrecognized errors pass through unchanged.
func Classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			// Distinguish between temporary rate limit and quota exceeded
			// (billing issue). Quota exceeded requires user action, so it
			// must not be retried.
			if strings.Contains(apiErr.Message, "quota") ||
				strings.Contains(apiErr.Message, "billing") {
				return fmt.Errorf("%s: %w", apiErr.Message, ErrQuotaExceeded)
			}
			return fmt.Errorf("%s: %w", apiErr.Message, ErrRateLimit)
		case http.StatusUnauthorized:
			return fmt.Errorf("%s: %w", apiErr.Message, ErrAuthFailed)
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return fmt.Errorf("%s: %w", apiErr.Message, ErrTimeout)
		case http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound:
			return fmt.Errorf("%s: %w", apiErr.Message, ErrBadRequest)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", ErrTimeout)
	}

	return err
}

// IsRetryable reports whether an error is transient and worth retrying.
func IsRetryable(err error) bool {
	// Rate limits and timeouts are retryable (with backoff).
	if errors.Is(err, ErrRateLimit) || errors.Is(err, ErrTimeout) {
		return true
	}

	// Server errors (5xx) are retryable.
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	// Cancellation, auth failures and everything else are terminal.
	return false
}
