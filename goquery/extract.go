// Package goquery implements link extraction from HTML documents using
// goquery selections over golang.org/x/net/html parse trees.
package goquery

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/freeze"
	"golang.org/x/net/html"
)

// Ensure Extractor implements freeze.LinkExtractor at compile time.
var _ freeze.LinkExtractor = (*Extractor)(nil)

// syntheticOrigin resolves links when no real base URL is available.
// It never appears in output.
const syntheticOrigin = "http://freeze.invalid/"

// linkRels lists <link rel> values whose href is a crawlable resource.
var linkRels = map[string]bool{
	"stylesheet":       true,
	"icon":             true,
	"apple-touch-icon": true,
	"preload":          true,
	"modulepreload":    true,
	"prefetch":         true,
	"manifest":         true,
	"canonical":        true,
	"alternate":        true,
}

// metaKeys lists <meta> property/name values whose content is a URL.
var metaKeys = map[string]bool{
	"canonical":     true,
	"og:image":      true,
	"og:url":        true,
	"twitter:image": true,
}

var (
	cssURLPattern    = regexp.MustCompile(`url\(\s*(?:"([^"]*)"|'([^']*)'|([^)\s'"]*))\s*\)`)
	cssImportPattern = regexp.MustCompile(`@import\s+(?:"([^"]*)"|'([^']*)')`)
)

// Extractor extracts outbound links from every link-bearing construct of an
// HTML document: anchors, stylesheets, scripts, media, embeds, srcset
// lists, inline CSS and whitelisted meta tags.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractLinks returns outbound links as strings.
func (x *Extractor) ExtractLinks(src string, baseURL string, opts freeze.ExtractOptions) ([]string, error) {
	urls, err := x.ExtractURLs(src, baseURL, opts)
	if err != nil {
		return nil, err
	}
	links := make([]string, len(urls))
	for i, u := range urls {
		links[i] = u.String()
	}
	return links, nil
}

// ExtractURLs returns outbound links as parsed URLs. In relative mode,
// same-document links have an empty scheme and host.
func (x *Extractor) ExtractURLs(src string, baseURL string, opts freeze.ExtractOptions) ([]*url.URL, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, freeze.Errorf(freeze.EINVALID, "failed to parse HTML: %v", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	base, relative, err := resolveBase(doc, baseURL, opts.RespectBaseTag)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var urls []*url.URL
	for _, candidate := range collectCandidates(doc) {
		u, ok := resolveCandidate(candidate, base, relative, opts)
		if !ok {
			continue
		}
		if opts.Dedupe {
			key := u.String()
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		urls = append(urls, u)
	}
	return urls, nil
}

// resolveBase picks the URL that candidates resolve against and reports
// whether extraction runs in relative mode.
func resolveBase(doc *goquery.Document, baseURL string, respectBaseTag bool) (*url.URL, bool, error) {
	if baseURL != "" {
		base, err := url.Parse(baseURL)
		if err != nil || !base.IsAbs() || base.Host == "" {
			return nil, false, freeze.Errorf(freeze.EINVALID, "invalid base URL %q", baseURL)
		}
		return base, false, nil
	}

	synthetic, _ := url.Parse(syntheticOrigin)
	if respectBaseTag {
		if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
			if tag, err := url.Parse(strings.TrimSpace(href)); err == nil {
				if tag.IsAbs() && tag.Host != "" {
					return tag, false, nil
				}
				return synthetic.ResolveReference(tag), true, nil
			}
		}
	}
	return synthetic, true, nil
}

// collectCandidates gathers raw link values in construct order.
func collectCandidates(doc *goquery.Document) []string {
	var candidates []string
	attr := func(selector, name string) {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if v, ok := sel.Attr(name); ok {
				candidates = append(candidates, v)
			}
		})
	}

	attr("a[href], area[href]", "href")
	attr("img[src]", "src")
	attr("script[src]", "src")
	doc.Find("link[href]").Each(func(_ int, sel *goquery.Selection) {
		rel, _ := sel.Attr("rel")
		for _, r := range strings.Fields(strings.ToLower(rel)) {
			if linkRels[r] {
				href, _ := sel.Attr("href")
				candidates = append(candidates, href)
				return
			}
		}
	})
	attr("video[src], audio[src]", "src")
	attr("video[poster]", "poster")
	attr("iframe[src], embed[src], source[src], track[src]", "src")
	attr("object[data]", "data")

	doc.Find("img[srcset], source[srcset]").Each(func(_ int, sel *goquery.Selection) {
		srcset, _ := sel.Attr("srcset")
		candidates = append(candidates, parseSrcset(srcset)...)
	})

	doc.Find("style").Each(func(_ int, sel *goquery.Selection) {
		candidates = append(candidates, cssURLs(sel.Text())...)
	})
	doc.Find("[style]").Each(func(_ int, sel *goquery.Selection) {
		style, _ := sel.Attr("style")
		candidates = append(candidates, cssURLs(style)...)
	})

	doc.Find("meta[content]").Each(func(_ int, sel *goquery.Selection) {
		key, ok := sel.Attr("property")
		if !ok {
			key, _ = sel.Attr("name")
		}
		if metaKeys[strings.ToLower(strings.TrimSpace(key))] {
			content, _ := sel.Attr("content")
			candidates = append(candidates, content)
		}
	})

	return candidates
}

// resolveCandidate filters and resolves one raw link value.
func resolveCandidate(raw string, base *url.URL, relative bool, opts freeze.ExtractOptions) (*url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	if strings.HasPrefix(raw, "#") && !opts.IncludeHashOnly {
		return nil, false
	}

	switch schemeOf(raw) {
	case "", "http", "https":
	case "data":
		if !opts.IncludeDataURLs {
			return nil, false
		}
		u, err := url.Parse(raw)
		return u, err == nil
	default:
		// javascript:, mailto:, tel: and other non-fetchable schemes
		return nil, false
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	u := base.ResolveReference(ref)
	if u.Host == "" {
		return nil, false
	}

	internal := freeze.SameOrigin(u, base)
	switch opts.Scope {
	case freeze.ScopeInternal:
		if !internal {
			return nil, false
		}
	case freeze.ScopeExternal:
		if internal {
			return nil, false
		}
	}

	if opts.Normalize {
		u = freeze.Canonicalize(u)
	}
	if relative && internal {
		u.Scheme = ""
		u.Host = ""
		u.User = nil
	}
	return u, true
}

// schemeOf returns the lower-cased URI scheme of raw, or "" if it has none.
func schemeOf(raw string) string {
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		case i > 0 && c == ':':
			return strings.ToLower(raw[:i])
		default:
			return ""
		}
	}
	return ""
}

// parseSrcset returns the URL token of every srcset candidate.
func parseSrcset(srcset string) []string {
	var urls []string
	for _, part := range strings.Split(srcset, ",") {
		fields := strings.Fields(part)
		if len(fields) > 0 {
			urls = append(urls, fields[0])
		}
	}
	return urls
}

// cssURLs returns url(...) and @import targets found in a CSS fragment.
func cssURLs(css string) []string {
	var urls []string
	for _, m := range cssURLPattern.FindAllStringSubmatch(css, -1) {
		urls = append(urls, m[1]+m[2]+m[3])
	}
	for _, m := range cssImportPattern.FindAllStringSubmatch(css, -1) {
		urls = append(urls, m[1]+m[2])
	}
	return urls
}
