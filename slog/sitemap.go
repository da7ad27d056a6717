package slog

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/freeze"
)

// Ensure LoggingSitemapService implements freeze.SitemapService.
var _ freeze.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService wraps a SitemapService with logging.
type LoggingSitemapService struct {
	next   freeze.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService creates a new LoggingSitemapService.
func NewLoggingSitemapService(next freeze.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

// DiscoverURLs delegates to the wrapped service and logs how many seed
// URLs the sitemap contributed and how many the filter dropped.
func (s *LoggingSitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter freeze.URLFilter) (urls []string, err error) {
	var dropped int
	counted := filter
	if filter != nil {
		counted = func(u *url.URL) bool {
			keep := filter(u)
			if !keep {
				dropped++
			}
			return keep
		}
	}

	defer func(begin time.Time) {
		if err != nil {
			s.logger.Warn("sitemap seeds", "origin", baseURL, "duration", time.Since(begin), "err", err)
			return
		}
		s.logger.Info("sitemap seeds",
			"origin", baseURL,
			"count", len(urls),
			"dropped", dropped,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return s.next.DiscoverURLs(ctx, baseURL, counted)
}
