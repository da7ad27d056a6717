package mock

import (
	"context"
	"net/url"

	"github.com/fwojciec/freeze"
)

var _ freeze.URLFrontier = (*URLFrontier)(nil)

// URLFrontier is a mock implementation of freeze.URLFrontier.
type URLFrontier struct {
	DiscoverFn    func(rawURL string) (bool, error)
	MarkCrawledFn func(rawURL string) error
	MarkFailedFn  func(rawURL string) error
	RediscoverFn  func(rawURL string) error
	NextPendingFn func() (string, bool)
	IsPendingFn   func(rawURL string) bool
	IsCrawledFn   func(rawURL string) bool
	IsFailedFn    func(rawURL string) bool
	StatsFn       func() freeze.FrontierStats
}

func (f *URLFrontier) Discover(rawURL string) (bool, error) {
	return f.DiscoverFn(rawURL)
}

func (f *URLFrontier) MarkCrawled(rawURL string) error {
	return f.MarkCrawledFn(rawURL)
}

func (f *URLFrontier) MarkFailed(rawURL string) error {
	return f.MarkFailedFn(rawURL)
}

func (f *URLFrontier) Rediscover(rawURL string) error {
	return f.RediscoverFn(rawURL)
}

func (f *URLFrontier) NextPending() (string, bool) {
	return f.NextPendingFn()
}

func (f *URLFrontier) IsPending(rawURL string) bool {
	return f.IsPendingFn(rawURL)
}

func (f *URLFrontier) IsCrawled(rawURL string) bool {
	return f.IsCrawledFn(rawURL)
}

func (f *URLFrontier) IsFailed(rawURL string) bool {
	return f.IsFailedFn(rawURL)
}

func (f *URLFrontier) Stats() freeze.FrontierStats {
	return f.StatsFn()
}

var _ freeze.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of freeze.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}

var _ freeze.RobotsPolicy = (*RobotsPolicy)(nil)

// RobotsPolicy is a mock implementation of freeze.RobotsPolicy.
type RobotsPolicy struct {
	AllowedFn func(ctx context.Context, target *url.URL) bool
}

func (p *RobotsPolicy) Allowed(ctx context.Context, target *url.URL) bool {
	return p.AllowedFn(ctx, target)
}
