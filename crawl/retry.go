package crawl

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fwojciec/freeze"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) (*freeze.Response, error)

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// RetryDelays returns n exponential backoff delays starting at one second:
// 1s, 2s, 4s and so on.
func RetryDelays(n int) []time.Duration {
	delays := make([]time.Duration, 0, max(n, 0))
	for i := range max(n, 0) {
		delays = append(delays, time.Second<<i)
	}
	return delays
}

// Retryable reports whether a failed fetch may succeed if repeated.
// Client errors other than 408 and 429 are final, as is cancellation.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var status *freeze.StatusError
	if errors.As(err, &status) {
		switch {
		case status.StatusCode == http.StatusRequestTimeout, status.StatusCode == http.StatusTooManyRequests:
			return true
		case status.StatusCode >= 400 && status.StatusCode < 500:
			return false
		}
	}
	return true
}

// FetchWithRetry calls fetch once, then once more after each delay while
// the error is Retryable. log, if set, is called before every retry.
func FetchWithRetry(ctx context.Context, url string, fetch FetchFunc, log LogFunc, delays []time.Duration) (*freeze.Response, error) {
	resp, err := fetch(ctx, url)
	for attempt, delay := range delays {
		if err == nil || !Retryable(err) {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if log != nil {
			log("retry %s (attempt %d): %v", url, attempt+2, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		resp, err = fetch(ctx, url)
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}
