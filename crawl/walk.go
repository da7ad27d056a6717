package crawl

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/fwojciec/freeze"
	"golang.org/x/sync/errgroup"
)

// fetchJob is one URL dispatched to a worker.
type fetchJob struct {
	url   string
	depth int
}

// fetchResult holds the outcome of fetching a single URL.
type fetchResult struct {
	fetchJob
	resource *freeze.Resource
	links    []string
	err      error
}

// walk runs the fetch loop. A single coordinator (this goroutine) applies
// every frontier transition; workers only fetch and extract links, so no
// URL is dispatched twice or marked by two workers.
func (c *Crawler) walk(ctx context.Context, opts CrawlOptions) {
	frontier := c.Frontier()
	origin := c.Origin()
	concurrency := c.cfg.Concurrency

	workCh := make(chan fetchJob)
	resultCh := make(chan fetchResult)

	var g errgroup.Group
	for i := 0; i < concurrency; i++ {
		g.Go(func() error {
			for job := range workCh {
				resultCh <- c.process(ctx, origin, job, opts)
			}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(resultCh)
	}()

	c.notify(ProgressEvent{Type: ProgressStarted, Total: frontier.Stats().Total})

	inflight := make(map[string]bool, concurrency)

coordinatorLoop:
	for {
		if ctx.Err() != nil {
			break coordinatorLoop
		}

		var next *fetchJob
		if len(inflight) < concurrency && c.underBudget(len(inflight), opts.MaxResources) {
			next = c.nextJob(frontier, inflight)
		}
		if next == nil && len(inflight) == 0 {
			break coordinatorLoop
		}

		if next != nil {
			select {
			case <-ctx.Done():
				break coordinatorLoop
			case workCh <- *next:
				inflight[next.url] = true
			case res := <-resultCh:
				delete(inflight, res.url)
				c.handle(ctx, frontier, res)
			}
		} else {
			select {
			case <-ctx.Done():
				break coordinatorLoop
			case res := <-resultCh:
				delete(inflight, res.url)
				c.handle(ctx, frontier, res)
			}
		}
	}

	// Workers finish their current job; results still count.
	close(workCh)
	for res := range resultCh {
		c.handle(ctx, frontier, res)
	}

	stats := frontier.Stats()
	c.notify(ProgressEvent{Type: ProgressFinished, Completed: stats.Crawled + stats.Failed, Total: stats.Total})
}

// underBudget reports whether another fetch may be dispatched.
func (c *Crawler) underBudget(inflight, maxResources int) bool {
	if maxResources <= 0 {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetched+inflight < maxResources
}

// nextJob returns the oldest pending URL that is not already in flight.
func (c *Crawler) nextJob(frontier *Frontier, inflight map[string]bool) *fetchJob {
	for _, u := range frontier.NextPendingN(len(inflight) + 1) {
		if !inflight[u] {
			return &fetchJob{url: u, depth: c.depth[u]}
		}
	}
	return nil
}

// process fetches one URL and, for HTML pages within the depth bound,
// extracts the links on origin worth discovering. It runs on a worker.
func (c *Crawler) process(ctx context.Context, origin *url.URL, job fetchJob, opts CrawlOptions) fetchResult {
	result := fetchResult{fetchJob: job}

	u, err := url.Parse(job.url)
	if err != nil {
		result.err = err
		return result
	}

	parent := ctx
	if opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.RequestTimeout)
		defer cancel()
	}

	if c.cfg.RateLimiter != nil {
		if err := c.cfg.RateLimiter.Wait(ctx, u.Host); err != nil {
			result.err = err
			return result
		}
	}

	resp, err := FetchWithRetry(ctx, job.url, c.cfg.Fetcher.Fetch, c.cfg.Log, c.cfg.RetryDelays)
	if err != nil {
		// Only the request's own deadline is a fetch failure; a canceled
		// crawl leaves the URL pending.
		if parent.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", freeze.Errorf(freeze.EFETCH, "fetch %s: timed out after %s", job.url, opts.RequestTimeout), err)
		}
		result.err = err
		return result
	}

	result.resource = freeze.NewResource(u, resp.Body, resp.ContentType)
	if c.policy == nil || !result.resource.IsHTML() || !c.policy.Allows(job.depth) {
		return result
	}

	extractOpts := freeze.DefaultExtractOptions()
	extractOpts.Scope = freeze.ScopeInternal
	links, err := result.resource.ExtractLinks(c.cfg.Extractor, extractOpts)
	if err != nil {
		// The page itself was fetched; only its outlinks are lost.
		if c.cfg.Log != nil {
			c.cfg.Log("extract links from %s: %v", job.url, err)
		}
		return result
	}
	for _, link := range links {
		if c.follow(ctx, origin, link) {
			result.links = append(result.links, link)
		}
	}
	return result
}

// follow applies the origin scope, ignore patterns and robots policy to a
// discovered link. Seeds may live elsewhere, but their links never leave
// the crawl origin.
func (c *Crawler) follow(ctx context.Context, origin *url.URL, link string) bool {
	u, err := url.Parse(link)
	if err != nil || !freeze.SameOrigin(u, origin) {
		return false
	}
	if c.policy.ShouldIgnore(u.Path) {
		return false
	}
	if c.cfg.Robots != nil && !c.cfg.Robots.Allowed(ctx, u) {
		return false
	}
	return true
}

// handle applies a fetch outcome to the frontier, statistics and results.
// It runs on the coordinator only.
func (c *Crawler) handle(ctx context.Context, frontier *Frontier, res fetchResult) {
	if res.err != nil {
		// Fetches cut short by cancellation stay pending for a later Crawl.
		if ctx.Err() != nil {
			return
		}
		if err := frontier.MarkFailed(res.url); err != nil {
			return
		}
		c.mu.Lock()
		c.stats.ErrorsCount++
		c.failures[res.url] = res.err
		c.mu.Unlock()

		stats := frontier.Stats()
		c.notify(ProgressEvent{Type: ProgressFailed, Completed: stats.Crawled + stats.Failed, Total: stats.Total, URL: res.url, Error: res.err})
		return
	}

	if err := frontier.MarkCrawled(res.url); err != nil {
		return
	}
	c.mu.Lock()
	c.resources = append(c.resources, res.resource)
	c.stats.ResourcesCount++
	c.fetched++
	delete(c.failures, res.url)
	c.mu.Unlock()

	for _, link := range res.links {
		ok, err := frontier.Discover(link)
		if err != nil || !ok {
			continue
		}
		key, _ := frontier.Canonical(link)
		c.depth[key] = res.depth + 1
	}

	stats := frontier.Stats()
	c.notify(ProgressEvent{Type: ProgressCompleted, Completed: stats.Crawled + stats.Failed, Total: stats.Total, URL: res.url})
}

func (c *Crawler) notify(event ProgressEvent) {
	if c.cfg.Progress != nil {
		c.cfg.Progress(event)
	}
}
