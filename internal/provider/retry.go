package provider

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/flatout-solutions/rental-assistant/internal/domain"
)

const (
	maxAttempts    = 3
	initialBackoff = 500 * time.Millisecond
	defaultTimeout = 15 * time.Second
)

// StatusError is a non-2xx backend response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Code, e.Body)
}

// RetryingClient issues backend requests under the shared retry policy:
// up to 3 attempts, retrying only server-side (5xx) failures, with
// exponential backoff starting at 500ms and doubling per attempt.
// Connection failures and 4xx responses fail immediately.
type RetryingClient struct {
	HTTPClient *http.Client
	// Sleep is the backoff wait; tests replace it to observe delays.
	Sleep func(time.Duration)
}

// NewRetryingClient creates a client with a bounded request timeout.
func NewRetryingClient(timeout time.Duration) *RetryingClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &RetryingClient{
		HTTPClient: &http.Client{Timeout: timeout},
		Sleep:      time.Sleep,
	}
}

// Do runs the request built by build, retrying per the policy, and
// returns the response body. build is invoked once per attempt because a
// request body cannot be reused.
func (c *RetryingClient) Do(build func() (*http.Request, error)) ([]byte, error) {
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	sleep := c.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	backoff := initialBackoff
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			sleep(backoff)
			backoff *= 2
		}

		req, err := build()
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}

		resp, err := httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrBackendUnavailable, readErr)
		}

		if resp.StatusCode >= 500 {
			lastErr = &StatusError{Code: resp.StatusCode, Body: truncate(body)}
			continue
		}
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, &StatusError{Code: resp.StatusCode, Body: truncate(body)})
		}
		return body, nil
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", domain.ErrBackendUnavailable, maxAttempts, lastErr)
}

func truncate(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
