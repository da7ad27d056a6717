package crawl

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fwojciec/freeze"
)

// SitemapRoutes returns a RoutesFunc that seeds a crawl with the origin's
// sitemap entries. Entries on other origins are dropped; the rest are
// returned as root-relative paths with their query.
func SitemapRoutes(sitemaps freeze.SitemapService, filter freeze.URLFilter) freeze.RoutesFunc {
	return func(ctx context.Context, origin *url.URL) ([]string, error) {
		urls, err := sitemaps.DiscoverURLs(ctx, origin.String(), filter)
		if err != nil {
			return nil, fmt.Errorf("sitemap routes: %w", err)
		}

		var routes []string
		for _, raw := range urls {
			u, err := freeze.ParseURL(raw, origin)
			if err != nil || !freeze.SameOrigin(u, origin) {
				continue
			}
			route := u.EscapedPath()
			if route == "" {
				route = "/"
			}
			if u.RawQuery != "" {
				route += "?" + u.RawQuery
			}
			routes = append(routes, route)
		}
		return routes, nil
	}
}

// JoinRoutes runs each RoutesFunc in order and concatenates their routes.
func JoinRoutes(funcs ...freeze.RoutesFunc) freeze.RoutesFunc {
	return func(ctx context.Context, origin *url.URL) ([]string, error) {
		var routes []string
		for _, fn := range funcs {
			if fn == nil {
				continue
			}
			r, err := fn(ctx, origin)
			if err != nil {
				return nil, err
			}
			routes = append(routes, r...)
		}
		return routes, nil
	}
}
