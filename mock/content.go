package mock

import (
	"net/url"

	"github.com/fwojciec/freeze"
)

var (
	_ freeze.ContentExtractor = (*ContentExtractor)(nil)
	_ freeze.Converter        = (*Converter)(nil)
)

// ContentExtractor is a mock implementation of freeze.ContentExtractor.
type ContentExtractor struct {
	ExtractFn func(body []byte, pageURL *url.URL) (*freeze.Content, error)
}

func (e *ContentExtractor) Extract(body []byte, pageURL *url.URL) (*freeze.Content, error) {
	return e.ExtractFn(body, pageURL)
}

// Converter is a mock implementation of freeze.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
