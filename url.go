package freeze

import (
	"net"
	"net/url"
	"sort"
	"strings"
)

// defaultPorts maps schemes to the port that canonicalization strips.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// ParseURL parses raw and resolves it against base, which may be nil.
// The result must be an absolute http or https URL with a host, otherwise
// an EINVALIDURL error is returned.
func ParseURL(raw string, base *url.URL) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, Errorf(EINVALIDURL, "empty URL")
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return nil, Errorf(EINVALIDURL, "invalid URL %q: %v", raw, err)
	}
	u := ref
	if base != nil {
		u = base.ResolveReference(ref)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, Errorf(EINVALIDURL, "URL %q is not an absolute http(s) URL", raw)
	}
	if u.Host == "" {
		return nil, Errorf(EINVALIDURL, "URL %q has no host", raw)
	}
	return u, nil
}

// Canonicalize returns a copy of u in canonical form: lower-case scheme and
// host, default port removed, query parameters sorted by key, fragment
// dropped and an empty path replaced by "/".
// Two URLs name the same resource iff their canonical strings are equal.
func Canonicalize(u *url.URL) *url.URL {
	c := *u
	c.Scheme = strings.ToLower(c.Scheme)

	hostname := strings.ToLower(u.Hostname())
	port := u.Port()
	if port == defaultPorts[c.Scheme] {
		port = ""
	}
	switch {
	case port != "":
		c.Host = net.JoinHostPort(hostname, port)
	case strings.Contains(hostname, ":"):
		c.Host = "[" + hostname + "]"
	default:
		c.Host = hostname
	}

	if c.Path == "" && c.Host != "" {
		c.Path = "/"
		c.RawPath = ""
	}
	c.RawQuery = sortQuery(c.RawQuery)
	c.ForceQuery = false
	c.Fragment = ""
	c.RawFragment = ""
	return &c
}

// CanonicalURL parses raw against base and returns its canonical string.
func CanonicalURL(raw string, base *url.URL) (string, error) {
	u, err := ParseURL(raw, base)
	if err != nil {
		return "", err
	}
	return Canonicalize(u).String(), nil
}

// sortQuery orders raw query parameters by key without re-encoding them.
// Parameters sharing a key keep their relative order.
func sortQuery(raw string) string {
	if raw == "" {
		return ""
	}
	var params []string
	for _, p := range strings.Split(raw, "&") {
		if p != "" {
			params = append(params, p)
		}
	}
	sort.SliceStable(params, func(i, j int) bool {
		return queryKey(params[i]) < queryKey(params[j])
	})
	return strings.Join(params, "&")
}

func queryKey(param string) string {
	if k, _, ok := strings.Cut(param, "="); ok {
		return k
	}
	return param
}

// SameOrigin reports whether a and b share scheme, host and port.
func SameOrigin(a, b *url.URL) bool {
	ca, cb := Canonicalize(a), Canonicalize(b)
	return ca.Scheme == cb.Scheme && ca.Host == cb.Host
}
