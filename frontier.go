package freeze

import (
	"context"
	"net/url"
)

// FrontierStats summarizes frontier membership.
// Discovered counts pending URLs; Total is the sum of all three sets.
type FrontierStats struct {
	Discovered int `json:"discovered"`
	Crawled    int `json:"crawled"`
	Failed     int `json:"failed"`
	Total      int `json:"total"`
}

// URLFrontier tracks every URL seen by a crawl in exactly one of the
// pending, crawled and failed sets.
type URLFrontier interface {
	// Discover adds a URL to the pending set.
	// Returns false if the URL is already known in any state.
	Discover(rawURL string) (bool, error)

	// MarkCrawled moves a pending URL to the crawled set.
	MarkCrawled(rawURL string) error

	// MarkFailed moves a pending URL to the failed set.
	MarkFailed(rawURL string) error

	// Rediscover moves a failed URL back to the pending set.
	Rediscover(rawURL string) error

	// NextPending returns the oldest pending URL without removing it.
	NextPending() (string, bool)

	IsPending(rawURL string) bool
	IsCrawled(rawURL string) bool
	IsFailed(rawURL string) bool

	Stats() FrontierStats
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}

// RobotsPolicy decides whether a discovered URL may be crawled.
type RobotsPolicy interface {
	Allowed(ctx context.Context, target *url.URL) bool
}
