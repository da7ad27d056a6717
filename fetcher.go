package freeze

import (
	"context"
	"fmt"
)

// Response is the outcome of a successful fetch.
type Response struct {
	URL         string // final URL after redirects
	StatusCode  int
	ContentType string
	Body        []byte
}

// Fetcher retrieves resources over HTTP.
// Implementations return an EFETCH error for network failures, timeouts and
// non-2xx responses.
type Fetcher interface {
	// Fetch retrieves the URL. The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (*Response, error)

	// Close releases resources held by the fetcher.
	Close() error
}

// StatusError reports a non-2xx response. It unwraps to an EFETCH Error.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

func (e *StatusError) Unwrap() error {
	return Errorf(EFETCH, "%s", e.Error())
}
