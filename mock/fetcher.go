package mock

import (
	"context"

	"github.com/fwojciec/freeze"
)

var _ freeze.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of freeze.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*freeze.Response, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*freeze.Response, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}
