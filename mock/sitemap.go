package mock

import (
	"context"

	"github.com/fwojciec/freeze"
)

var _ freeze.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of freeze.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, filter freeze.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter freeze.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, filter)
}
