package freeze

import "net/url"

// Content is the readable part of an HTML page.
type Content struct {
	Title       string
	Description string
	Author      string

	// HTML is the main content with navigation, footers and sidebars removed.
	HTML string
}

// ContentExtractor isolates the main content of an HTML page.
type ContentExtractor interface {
	// Extract parses body, fetched from pageURL, and returns its content.
	// Returns EINVALID for an empty body.
	Extract(body []byte, pageURL *url.URL) (*Content, error)
}

// Converter renders HTML as Markdown.
type Converter interface {
	Convert(html string) (string, error)
}
