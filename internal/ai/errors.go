package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// Normalized provider errors. Provider-specific transport failures never leak
// past the gateway; callers branch on this closed set with errors.Is.
var (
	// ErrNoProviderConfigured means no backend was configured at all. This is
	// the only error the orchestrator treats as a hard stop rather than a
	// retryable condition.
	ErrNoProviderConfigured = errors.New("no AI provider configured")

	ErrProviderUnavailable = errors.New("AI provider unavailable")
	ErrProviderAuthFailed  = errors.New("AI provider authentication failed")
	ErrProviderRateLimited = errors.New("AI provider rate limited")
	ErrProviderBadResponse = errors.New("AI provider returned a bad response")
)

// normalizeError maps a raw provider/transport error onto the closed error set
func normalizeError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusUnauthorized || apiErr.HTTPStatusCode == http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrProviderAuthFailed, err)
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", ErrProviderRateLimited, err)
		case apiErr.HTTPStatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		default:
			return fmt.Errorf("%w: %v", ErrProviderBadResponse, err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
}
