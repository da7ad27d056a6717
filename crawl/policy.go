package crawl

import (
	"regexp"
	"strings"
	"sync"

	"github.com/fwojciec/freeze"
)

// globCache maps glob patterns to their compiled regexps.
var globCache sync.Map

// Policy is a compiled freeze.DiscoverPolicy. It is a pure predicate;
// depth accounting belongs to the Crawler.
type Policy struct {
	maxDepth *int
	patterns []string
}

// NewPolicy validates p and compiles its ignore patterns.
func NewPolicy(p freeze.DiscoverPolicy) (*Policy, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	policy := &Policy{patterns: append([]string(nil), p.Ignore...)}
	if p.MaxDepth != nil {
		depth := *p.MaxDepth
		policy.maxDepth = &depth
	}
	for _, pattern := range policy.patterns {
		globRegexp(pattern)
	}
	return policy, nil
}

// ShouldIgnore reports whether any ignore pattern matches path.
func (p *Policy) ShouldIgnore(path string) bool {
	for _, pattern := range p.patterns {
		if globRegexp(pattern).MatchString(path) {
			return true
		}
	}
	return false
}

// Depth returns the configured depth bound, or nil when unbounded.
func (p *Policy) Depth() *int {
	if p.maxDepth == nil {
		return nil
	}
	depth := *p.maxDepth
	return &depth
}

// Allows reports whether links found on a page depth hops from a seed
// may be followed.
func (p *Policy) Allows(depth int) bool {
	return p.maxDepth == nil || depth < *p.maxDepth
}

// globRegexp returns the anchored regexp for a glob pattern, where "*"
// matches any run of characters and "?" matches exactly one.
func globRegexp(pattern string) *regexp.Regexp {
	if re, ok := globCache.Load(pattern); ok {
		return re.(*regexp.Regexp)
	}

	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")

	re, _ := globCache.LoadOrStore(pattern, regexp.MustCompile(b.String()))
	return re.(*regexp.Regexp)
}
