package freeze

import "net/url"

// Scope restricts extracted links by origin relative to the base URL.
type Scope string

// Link scopes.
const (
	ScopeAll      Scope = "all"
	ScopeInternal Scope = "internal"
	ScopeExternal Scope = "external"
)

// ExtractOptions controls link extraction.
type ExtractOptions struct {
	Scope           Scope
	Normalize       bool // canonicalize every resolved URL
	Dedupe          bool // keep the first occurrence of each URL
	IncludeDataURLs bool
	IncludeHashOnly bool
	RespectBaseTag  bool // honor <base href> when no base URL is given
}

// DefaultExtractOptions returns the options used by the crawler.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{
		Scope:          ScopeAll,
		Normalize:      true,
		Dedupe:         true,
		RespectBaseTag: true,
	}
}

// LinkExtractor finds outbound URLs in an HTML document.
//
// With a non-empty baseURL it works in absolute mode and returns absolute
// URLs. With an empty baseURL (and no usable <base> tag) it works in
// relative mode: same-document links come back as root-relative paths.
// Implementations are pure and never perform I/O.
type LinkExtractor interface {
	ExtractLinks(html string, baseURL string, opts ExtractOptions) ([]string, error)
	ExtractURLs(html string, baseURL string, opts ExtractOptions) ([]*url.URL, error)
}
