package sources

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"github.com/nick/grantlink/internal/models"
)

// shouldRetry limits retries to transient failure classes: timeouts on
// the network side, and 429/5xx on the HTTP side. Client errors and
// missing keys are never retried.
func shouldRetry(err error, statusCode int) bool {
	if err != nil {
		if netErr, ok := err.(interface{ Timeout() bool }); ok && netErr.Timeout() {
			return true
		}
		return false
	}

	switch statusCode {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}

// doWithRetry executes newRequest through client with bounded exponential
// backoff plus jitter. maxRetries counts extra attempts beyond the first.
// The request is rebuilt each attempt because a consumed body cannot be
// resent. Retries exhausted on a retryable status surface as the error
// taxonomy for src; non-retryable responses are returned to the caller
// untouched.
func doWithRetry(ctx context.Context, client *http.Client, src models.Source, maxRetries int, newRequest func() (*http.Request, error)) (*http.Response, error) {
	var lastErr error
	lastStatus := 0

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			// 0.5s, 1s, 2s + jitter
			backoff := time.Duration(500*(1<<uint(attempt-1))) * time.Millisecond
			jitter := time.Duration(rand.Intn(100)) * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff + jitter):
			}
		}

		req, err := newRequest()
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			lastStatus = 0
			if shouldRetry(err, 0) {
				continue
			}
			return nil, &UnavailableError{Source: src, Err: err}
		}

		if resp.StatusCode == http.StatusOK {
			return resp, nil
		}

		if shouldRetry(nil, resp.StatusCode) {
			resp.Body.Close()
			lastErr = nil
			lastStatus = resp.StatusCode
			continue
		}

		return resp, nil
	}

	if lastStatus != 0 {
		return nil, statusError(src, lastStatus)
	}
	return nil, &UnavailableError{Source: src, Err: lastErr}
}
