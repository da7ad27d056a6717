package http

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/freeze"
	"github.com/temoto/robotstxt"
)

// Ensure SitemapService implements freeze.SitemapService.
var _ freeze.SitemapService = (*SitemapService)(nil)

// SitemapService discovers URLs from website sitemaps. Every document is
// retrieved through a freeze.Fetcher, so sitemaps share the crawl's
// timeout, user agent and content decoding.
type SitemapService struct {
	fetcher freeze.Fetcher
}

// NewSitemapService creates a new SitemapService backed by fetcher.
func NewSitemapService(fetcher freeze.Fetcher) *SitemapService {
	return &SitemapService{fetcher: fetcher}
}

// DiscoverURLs returns the page URLs listed in the sitemaps of baseURL's
// host, in document order and without duplicates. Sitemap locations come
// from robots.txt, with /sitemap.xml as the fallback. A site without
// sitemaps yields an empty, non-nil slice.
//
// A baseURL path other than "/" scopes the result to that subtree:
// https://example.com/docs keeps /docs and /docs/intro, not /documentation.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter freeze.URLFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, freeze.Errorf(freeze.EINVALIDURL, "invalid base URL: %v", err)
	}
	host := &url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/"}

	locations, err := s.sitemapLocations(ctx, host)
	if err != nil {
		return nil, err
	}

	w := &sitemapWalk{service: s, visited: make(map[string]bool)}
	for _, loc := range locations {
		if err := w.read(ctx, loc); err != nil {
			return nil, err
		}
	}

	inScope := underPath(strings.TrimSuffix(base.Path, "/"))
	kept := make([]string, 0, len(w.pages))
	listed := make(map[string]bool, len(w.pages))
	for _, page := range w.pages {
		if listed[page] {
			continue
		}
		listed[page] = true
		if inScope(page) && filter.Keep(page) {
			kept = append(kept, page)
		}
	}
	return kept, nil
}

// underPath returns a predicate matching URLs at or below prefix, on
// segment boundaries. An empty prefix matches everything.
func underPath(prefix string) func(rawURL string) bool {
	return func(rawURL string) bool {
		if prefix == "" {
			return true
		}
		u, err := url.Parse(rawURL)
		if err != nil {
			return false
		}
		return u.Path == prefix || strings.HasPrefix(u.Path, prefix+"/")
	}
}

// sitemapLocations reads Sitemap: directives from robots.txt, falling back
// to /sitemap.xml when there are none.
func (s *SitemapService) sitemapLocations(ctx context.Context, host *url.URL) ([]string, error) {
	body, err := s.fetch(ctx, host.ResolveReference(&url.URL{Path: "/robots.txt"}).String())
	switch {
	case err != nil && ctx.Err() != nil:
		return nil, ctx.Err()
	case err == nil:
		if data, err := robotstxt.FromBytes(body); err == nil && len(data.Sitemaps) > 0 {
			return data.Sitemaps, nil
		}
	}
	return []string{host.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String()}, nil
}

// sitemapWalk follows sitemap indexes depth first, reading each document
// at most once and collecting page locations in document order.
type sitemapWalk struct {
	service *SitemapService
	visited map[string]bool
	pages   []string
}

// read loads one sitemap document. Documents that cannot be fetched
// contribute nothing; malformed ones abort the walk.
func (w *sitemapWalk) read(ctx context.Context, loc string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.visited[loc] {
		return nil
	}
	w.visited[loc] = true

	body, err := w.service.fetch(ctx, loc)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return ctx.Err()
	case freeze.ErrorCode(err) == freeze.EFETCH:
		return nil
	default:
		return err
	}

	if body, err = gunzipIfNeeded(body); err != nil {
		return fmt.Errorf("decompress sitemap %s: %w", loc, err)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return fmt.Errorf("parse sitemap %s: %w", loc, err)
	}
	top := doc.Root()
	if top == nil {
		return fmt.Errorf("parse sitemap %s: no root element", loc)
	}

	if top.Tag != "sitemapindex" {
		w.pages = append(w.pages, locs(top, "url")...)
		return nil
	}
	for _, child := range locs(top, "sitemap") {
		if err := w.read(ctx, child); err != nil {
			return err
		}
	}
	return nil
}

// locs returns the non-empty <loc> text of every child element named tag.
func locs(root *etree.Element, tag string) []string {
	var urls []string
	for _, el := range root.SelectElements(tag) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

func (s *SitemapService) fetch(ctx context.Context, targetURL string) ([]byte, error) {
	resp, err := s.fetcher.Fetch(ctx, targetURL)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// gunzipIfNeeded inflates .xml.gz sitemaps served without a
// Content-Encoding header.
func gunzipIfNeeded(body []byte) ([]byte, error) {
	if len(body) < 2 || body[0] != 0x1f || body[1] != 0x8b {
		return body, nil
	}
	gz, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer gz.Close()
	return io.ReadAll(gz)
}
