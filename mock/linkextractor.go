package mock

import (
	"net/url"

	"github.com/fwojciec/freeze"
)

var _ freeze.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of freeze.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html string, baseURL string, opts freeze.ExtractOptions) ([]string, error)
	ExtractURLsFn  func(html string, baseURL string, opts freeze.ExtractOptions) ([]*url.URL, error)
}

func (x *LinkExtractor) ExtractLinks(html string, baseURL string, opts freeze.ExtractOptions) ([]string, error) {
	return x.ExtractLinksFn(html, baseURL, opts)
}

func (x *LinkExtractor) ExtractURLs(html string, baseURL string, opts freeze.ExtractOptions) ([]*url.URL, error) {
	return x.ExtractURLsFn(html, baseURL, opts)
}
