package crawl

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/fwojciec/freeze"
	"gopkg.in/yaml.v3"
)

// MarkdownMirror writes a Markdown rendition of every HTML page next to the
// page itself, prefixed with YAML frontmatter.
type MarkdownMirror struct {
	Extractor freeze.ContentExtractor
	Converter freeze.Converter
	Store     freeze.SnapshotStore
	BasePath  string

	// Now returns the crawl date written to frontmatter. Defaults to time.Now.
	Now func() time.Time
}

// NewMarkdownMirror creates a MarkdownMirror.
func NewMarkdownMirror(
	extractor freeze.ContentExtractor,
	converter freeze.Converter,
	store freeze.SnapshotStore,
	basePath string,
) *MarkdownMirror {
	return &MarkdownMirror{
		Extractor: extractor,
		Converter: converter,
		Store:     store,
		BasePath:  basePath,
		Now:       time.Now,
	}
}

type frontmatter struct {
	Source      string `yaml:"source"`
	Title       string `yaml:"title,omitempty"`
	Description string `yaml:"description,omitempty"`
	Author      string `yaml:"author,omitempty"`
	Crawled     string `yaml:"crawled"`
}

// Write mirrors res and returns the path written. Resources other than HTML
// pages are skipped with an empty path.
func (m *MarkdownMirror) Write(ctx context.Context, res *freeze.Resource) (string, error) {
	if res == nil || !res.IsHTML() {
		return "", nil
	}

	source := res.URL()
	content, err := m.Extractor.Extract(res.Body(), source)
	if err != nil || content == nil {
		// Pages too short for the extractor are converted whole, without metadata.
		content = &freeze.Content{}
	}

	// Pages the extractor finds nothing in are converted whole.
	body := content.HTML
	if strings.TrimSpace(body) == "" {
		body = string(res.Body())
	}
	md, err := m.Converter.Convert(body)
	if err != nil {
		return "", fmt.Errorf("convert %s: %w", source, err)
	}

	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	doc, err := FormatMarkdown(frontmatter{
		Source:      source.String(),
		Title:       content.Title,
		Description: content.Description,
		Author:      content.Author,
		Crawled:     now().Format(time.DateOnly),
	}, md)
	if err != nil {
		return "", err
	}

	return m.Store.SaveFile(ctx, MarkdownPath(res.OutputPath(m.BasePath)), []byte(doc))
}

// FormatMarkdown joins YAML frontmatter and a Markdown body.
func FormatMarkdown(meta any, md string) (string, error) {
	head, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(head)
	b.WriteString("---\n\n")
	b.WriteString(md)
	return b.String(), nil
}

// MarkdownPath maps an HTML output path to its Markdown sibling.
//
//	index.html       -> index.md
//	docs/index.html  -> docs/index.md
//	legacy.htm       -> legacy.md
func MarkdownPath(outputPath string) string {
	switch ext := path.Ext(outputPath); ext {
	case ".html", ".htm", ".xhtml":
		return strings.TrimSuffix(outputPath, ext) + ".md"
	default:
		return outputPath + ".md"
	}
}
