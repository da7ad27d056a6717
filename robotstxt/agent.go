// Package robotstxt implements freeze.RobotsPolicy on top of
// github.com/temoto/robotstxt.
package robotstxt

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/fwojciec/freeze"
	"github.com/temoto/robotstxt"
)

var _ freeze.RobotsPolicy = (*Agent)(nil)

// Agent evaluates robots.txt rules for one user agent, caching the parsed
// rules per host for the life of the agent.
type Agent struct {
	fetcher   freeze.Fetcher
	userAgent string

	mu    sync.Mutex
	cache map[string]*robotstxt.Group
}

// NewAgent creates an Agent that fetches robots.txt through fetcher.
func NewAgent(fetcher freeze.Fetcher, userAgent string) *Agent {
	return &Agent{
		fetcher:   fetcher,
		userAgent: userAgent,
		cache:     make(map[string]*robotstxt.Group),
	}
}

// Allowed reports whether target may be crawled. Unreachable or missing
// robots.txt files allow everything.
func (a *Agent) Allowed(ctx context.Context, target *url.URL) bool {
	if target == nil || !target.IsAbs() {
		return false
	}

	group := a.group(ctx, target)
	if group == nil {
		return true
	}

	path := target.EscapedPath()
	if path == "" {
		path = "/"
	}
	if target.RawQuery != "" {
		path += "?" + target.RawQuery
	}
	return group.Test(path)
}

// group returns the rule group that applies to the agent on target's host.
func (a *Agent) group(ctx context.Context, target *url.URL) *robotstxt.Group {
	host := strings.ToLower(target.Host)

	a.mu.Lock()
	defer a.mu.Unlock()

	if group, ok := a.cache[host]; ok {
		return group
	}

	robotsURL := target.Scheme + "://" + target.Host + "/robots.txt"
	var group *robotstxt.Group
	resp, err := a.fetcher.Fetch(ctx, robotsURL)
	if err == nil {
		if data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, resp.Body); err == nil {
			group = data.FindGroup(a.userAgent)
		}
	}

	// Cancellation is not an answer worth caching.
	if ctx.Err() == nil {
		a.cache[host] = group
	}
	return group
}
