package freeze

import (
	"fmt"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ResourceKind discriminates the Resource variants.
type ResourceKind int

// Resource kinds.
const (
	ResourceHTML ResourceKind = iota + 1
	ResourceAsset
	ResourceBundle
)

// String returns the kind's name.
func (k ResourceKind) String() string {
	switch k {
	case ResourceHTML:
		return "html"
	case ResourceAsset:
		return "asset"
	case ResourceBundle:
		return "bundle"
	default:
		return "unknown"
	}
}

// Resource is one fetched (or pre-built) artifact of the site.
// A Resource is immutable once created; the slice returned by Body must not
// be modified.
type Resource struct {
	kind        ResourceKind
	url         *url.URL
	body        []byte
	contentType string
	fetchedAt   time.Time
}

// NewResource wraps a fetched response body. The kind is HTML when the
// declared media type is text/html or application/xhtml+xml and asset
// otherwise.
func NewResource(u *url.URL, body []byte, contentType string) *Resource {
	kind := ResourceAsset
	if IsHTMLContentType(contentType) {
		kind = ResourceHTML
	}
	return &Resource{
		kind:        kind,
		url:         cloneURL(u),
		body:        body,
		contentType: contentType,
		fetchedAt:   time.Now().UTC(),
	}
}

// NewBundleResource wraps an in-memory build artifact served at mountPath.
// Bundles are never fetched; the crawler registers them as already crawled.
func NewBundleResource(mountPath string, body []byte, contentType string) (*Resource, error) {
	if !strings.HasPrefix(mountPath, "/") {
		return nil, Errorf(EINVALID, "bundle mount path %q must start with /", mountPath)
	}
	u, err := url.Parse(mountPath)
	if err != nil {
		return nil, Errorf(EINVALIDURL, "invalid bundle mount path %q: %v", mountPath, err)
	}
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(u.Path))
	}
	return &Resource{
		kind:        ResourceBundle,
		url:         u,
		body:        body,
		contentType: contentType,
		fetchedAt:   time.Now().UTC(),
	}, nil
}

// IsHTMLContentType reports whether a Content-Type header names an HTML document.
func IsHTMLContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// WithOrigin returns a copy of the resource whose URL is resolved against origin.
func (r *Resource) WithOrigin(origin *url.URL) *Resource {
	c := *r
	c.url = origin.ResolveReference(r.url)
	return &c
}

func (r *Resource) Kind() ResourceKind { return r.kind }

// IsHTML reports whether the resource is an HTML page.
func (r *Resource) IsHTML() bool { return r.kind == ResourceHTML }

// IsAsset reports whether the resource is opaque content (assets and bundles).
func (r *Resource) IsAsset() bool { return r.kind == ResourceAsset || r.kind == ResourceBundle }

// IsBundle reports whether the resource was injected from build output.
func (r *Resource) IsBundle() bool { return r.kind == ResourceBundle }

// URL returns a copy of the resource's source URL.
func (r *Resource) URL() *url.URL { return cloneURL(r.url) }

func (r *Resource) Body() []byte { return r.body }

func (r *Resource) ContentType() string { return r.contentType }

func (r *Resource) FetchedAt() time.Time { return r.fetchedAt }

// Checksum returns the hex xxhash of the body.
func (r *Resource) Checksum() string {
	return fmt.Sprintf("%016x", xxhash.Sum64(r.body))
}

// ExtractLinks returns the outbound links of an HTML resource, resolved
// against the resource's own URL. Other kinds have no links.
func (r *Resource) ExtractLinks(x LinkExtractor, opts ExtractOptions) ([]string, error) {
	switch r.kind {
	case ResourceHTML:
		return x.ExtractLinks(string(r.body), r.url.String(), opts)
	default:
		return nil, nil
	}
}

// OutputPath maps the resource URL to a slash-separated path relative to
// the output directory. The basePath prefix is stripped when present.
//
//	/              -> index.html
//	/docs/         -> docs/index.html
//	/about (html)  -> about/index.html
//	/app.js        -> app.js
func (r *Resource) OutputPath(basePath string) string {
	p := r.url.Path
	if p == "" {
		p = "/"
	}
	if base := strings.TrimSuffix(basePath, "/"); base != "" {
		if p == base {
			p = "/"
		} else if strings.HasPrefix(p, base+"/") {
			p = strings.TrimPrefix(p, base)
		}
	}

	dir := strings.HasSuffix(p, "/")
	p = path.Clean("/" + p)
	if p == "/" {
		return "index.html"
	}
	p = strings.TrimPrefix(p, "/")

	switch {
	case dir:
		return p + "/index.html"
	case r.kind == ResourceHTML && path.Ext(p) == "":
		return p + "/index.html"
	default:
		return p
	}
}

// SaveToFile writes the body to outputDir/OutputPath(basePath), creating
// directories as needed, and returns the absolute path written.
func (r *Resource) SaveToFile(outputDir, basePath string) (string, error) {
	rel := r.OutputPath(basePath)
	root, err := filepath.Abs(outputDir)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(root, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(fullPath, r.body, 0644); err != nil {
		return "", err
	}
	return fullPath, nil
}

func cloneURL(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	c := *u
	if u.User != nil {
		user := *u.User
		c.User = &user
	}
	return &c
}
