// Package trafilatura isolates readable page content for the markdown mirror.
package trafilatura

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/fwojciec/freeze"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements freeze.ContentExtractor at compile time.
var _ freeze.ContentExtractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura.
type Extractor struct {
	excludeTables bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithoutTables drops tables from the extracted content.
func WithoutTables() Option {
	return func(e *Extractor) { e.excludeTables = true }
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the main content of a page. Links and images are kept so
// the converted Markdown still points into the snapshot.
func (e *Extractor) Extract(body []byte, pageURL *url.URL) (*freeze.Content, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, freeze.Errorf(freeze.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback:  true,
		IncludeLinks:    true,
		IncludeImages:   true,
		OriginalURL:     pageURL,
		ExcludeComments: true,
		ExcludeTables:   e.excludeTables,
	}

	result, err := trafilatura.Extract(bytes.NewReader(body), opts)
	if err != nil {
		return nil, freeze.Errorf(freeze.EINVALID, "extract content: %v", err)
	}

	content := &freeze.Content{
		Title:       strings.TrimSpace(result.Metadata.Title),
		Description: strings.TrimSpace(result.Metadata.Description),
		Author:      strings.TrimSpace(result.Metadata.Author),
	}
	if result.ContentNode != nil {
		content.HTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}
	return content, nil
}

func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
