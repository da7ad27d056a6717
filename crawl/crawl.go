// Package crawl provides the crawl engine: the URL frontier, the discovery
// policy and the crawler that drives fetching and link discovery from a
// set of seed routes.
package crawl

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/freeze"
)

// Config configures a Crawler. Every field is read once, at Start.
type Config struct {
	Server freeze.Server
	Routes freeze.Routes

	// Discover enables link discovery. Nil crawls the seed routes only.
	Discover *freeze.DiscoverPolicy

	// BasePath is the deployment prefix stripped from output paths.
	BasePath string

	Fetcher   freeze.Fetcher
	Extractor freeze.LinkExtractor

	// Optional collaborators.
	RateLimiter freeze.DomainLimiter
	Robots      freeze.RobotsPolicy

	// Concurrency bounds in-flight fetches. Defaults to 1.
	Concurrency int

	// RetryDelays adds one retry per delay to every fetch. Defaults to none;
	// Frontier.Rediscover is the deliberate second attempt.
	RetryDelays []time.Duration

	Progress ProgressFunc
	Log      LogFunc
}

// CrawlOptions bounds a single Crawl call.
type CrawlOptions struct {
	// MaxResources caps the number of resources fetched by the crawler.
	// Zero or negative means unbounded.
	MaxResources int

	// RequestTimeout bounds each fetch. Zero means no timeout.
	RequestTimeout time.Duration
}

// ProgressEvent reports progress during a crawl operation.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

type crawlerState int

const (
	stateUnstarted crawlerState = iota
	stateStarted
	stateStopped
)

// Crawler walks a site from its seed routes and accumulates the fetched
// resources. Its lifecycle is unstarted -> started -> (crawling)* -> stopped.
type Crawler struct {
	cfg    Config
	policy *Policy

	// busy is the single-flight guard for Crawl.
	busy atomic.Bool

	mu        sync.Mutex
	state     crawlerState
	origin    *url.URL
	frontier  *Frontier
	shutdown  freeze.ShutdownFunc
	bundles   []*freeze.Resource
	resources []*freeze.Resource
	failures  map[string]error
	stats     freeze.CrawlStats
	fetched   int

	// depth maps canonical URLs to their hop count from a seed. It is only
	// touched by Start and the Crawl coordinator.
	depth map[string]int
}

// NewCrawler validates cfg and returns an unstarted Crawler.
func NewCrawler(cfg Config) (*Crawler, error) {
	if err := cfg.Server.Validate(); err != nil {
		return nil, err
	}
	if cfg.Fetcher == nil {
		return nil, freeze.Errorf(freeze.EINVALID, "crawler fetcher required")
	}

	c := &Crawler{
		cfg:      cfg,
		failures: make(map[string]error),
		depth:    make(map[string]int),
	}
	if c.cfg.Concurrency <= 0 {
		c.cfg.Concurrency = 1
	}

	if cfg.Discover != nil {
		if cfg.Extractor == nil {
			return nil, freeze.Errorf(freeze.EINVALID, "link extractor required when discovery is enabled")
		}
		policy, err := NewPolicy(*cfg.Discover)
		if err != nil {
			return nil, err
		}
		c.policy = policy
	}
	return c, nil
}

// AddVisitedResource registers a build-time artifact served at mountPath.
// It is added to the results and marked crawled at Start, so it is never
// fetched.
func (c *Crawler) AddVisitedResource(mountPath string, body []byte, contentType string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateUnstarted {
		return freeze.Errorf(freeze.EALREADYSTARTED, "cannot add visited resource after start")
	}
	res, err := freeze.NewBundleResource(mountPath, body, contentType)
	if err != nil {
		return err
	}
	c.bundles = append(c.bundles, res)
	return nil
}

// Start resolves the server, registers bundles and seeds the frontier with
// the configured routes.
func (c *Crawler) Start(ctx context.Context) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateUnstarted {
		return freeze.Errorf(freeze.EALREADYSTARTED, "crawler already started")
	}

	origin, shutdown, err := c.resolveServer(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil && shutdown != nil {
			_ = shutdown(context.WithoutCancel(ctx))
		}
	}()

	frontier := NewFrontier(origin)
	var resources []*freeze.Resource
	for _, bundle := range c.bundles {
		res := bundle.WithOrigin(origin)
		key := res.URL().String()
		ok, err := frontier.Discover(key)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := frontier.MarkCrawled(key); err != nil {
			return err
		}
		resources = append(resources, res)
	}

	routes := append([]string(nil), c.cfg.Routes.Static...)
	if c.cfg.Routes.Func != nil {
		more, err := c.cfg.Routes.Func(ctx, cloneURL(origin))
		if err != nil {
			return fmt.Errorf("resolve routes: %w", err)
		}
		routes = append(routes, more...)
	}
	for _, route := range routes {
		ok, err := frontier.Discover(route)
		if err != nil {
			return err
		}
		if ok {
			key, _ := frontier.Canonical(route)
			c.depth[key] = 0
		}
	}

	c.origin = origin
	c.shutdown = shutdown
	c.frontier = frontier
	c.resources = resources
	c.stats.StartTime = time.Now()
	c.state = stateStarted
	return nil
}

// resolveServer returns the crawl origin, booting the server if needed.
func (c *Crawler) resolveServer(ctx context.Context) (*url.URL, freeze.ShutdownFunc, error) {
	if c.cfg.Server.Origin != "" {
		u, err := freeze.ParseURL(c.cfg.Server.Origin, nil)
		if err != nil {
			return nil, nil, err
		}
		return freeze.Canonicalize(u), nil, nil
	}

	port, err := freePort()
	if err != nil {
		return nil, nil, err
	}
	shutdown, err := c.cfg.Server.Boot(ctx, port)
	if err != nil {
		return nil, nil, fmt.Errorf("boot server: %w", err)
	}
	return &url.URL{Scheme: "http", Host: fmt.Sprintf("127.0.0.1:%d", port), Path: "/"}, shutdown, nil
}

// Crawl fetches pending URLs until the frontier drains, MaxResources is
// reached or ctx is canceled. It returns every resource accumulated so far:
// bundles first, then fetched resources in completion order.
func (c *Crawler) Crawl(ctx context.Context, opts CrawlOptions) ([]*freeze.Resource, error) {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	switch state {
	case stateUnstarted:
		return nil, freeze.Errorf(freeze.ENOTSTARTED, "crawler has not been started")
	case stateStopped:
		return nil, freeze.Errorf(freeze.ENOTSTARTED, "crawler is stopped")
	}

	if !c.busy.CompareAndSwap(false, true) {
		return nil, freeze.Errorf(freeze.ECRAWLINPROGRESS, "a crawl is already in progress")
	}
	defer c.busy.Store(false)

	c.walk(ctx, opts)
	return c.Resources(), nil
}

// Stop finalizes statistics and shuts down a booted server. It is a no-op
// when the crawler was never started or is already stopped.
func (c *Crawler) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.state != stateStarted {
		c.mu.Unlock()
		return nil
	}
	c.state = stateStopped
	c.stats.EndTime = time.Now()
	c.stats.TotalTime = c.stats.EndTime.Sub(c.stats.StartTime)
	shutdown := c.shutdown
	c.shutdown = nil
	c.mu.Unlock()

	if shutdown != nil {
		if err := shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
	}
	return nil
}

// Resources returns a snapshot of the accumulated resources.
func (c *Crawler) Resources() []*freeze.Resource {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*freeze.Resource(nil), c.resources...)
}

// Stats returns a copy of the crawl statistics.
func (c *Crawler) Stats() freeze.CrawlStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Frontier returns the live frontier, or nil before Start.
func (c *Crawler) Frontier() *Frontier {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frontier
}

// Origin returns the resolved origin, or nil before Start.
func (c *Crawler) Origin() *url.URL {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneURL(c.origin)
}

// BasePath returns the configured deployment prefix.
func (c *Crawler) BasePath() string {
	return c.cfg.BasePath
}

// Failures returns the last fetch error of each URL that failed.
func (c *Crawler) Failures() map[string]error {
	c.mu.Lock()
	defer c.mu.Unlock()

	failures := make(map[string]error, len(c.failures))
	for u, err := range c.failures {
		failures[u] = err
	}
	return failures
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
