package freeze

import (
	"context"
	"net/url"
)

// SitemapService lists the URLs a site publishes in its sitemaps.
type SitemapService interface {
	// DiscoverURLs returns the page URLs of the sitemaps declared in
	// baseURL's robots.txt, or of /sitemap.xml when none are declared.
	// Sitemap indexes are followed. When baseURL has a path, only URLs
	// under it are returned. A nil filter keeps every URL.
	DiscoverURLs(ctx context.Context, baseURL string, filter URLFilter) ([]string, error)
}

// URLFilter reports whether a sitemap URL should be kept.
type URLFilter func(u *url.URL) bool

// Keep applies f to rawURL. Unparsable URLs are dropped; a nil filter
// keeps everything else.
func (f URLFilter) Keep(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return f == nil || f(u)
}
