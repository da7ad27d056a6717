package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/fwojciec/freeze"
	"github.com/fwojciec/freeze/crawl"
	"github.com/fwojciec/freeze/fs"
	"github.com/fwojciec/freeze/goquery"
	"github.com/fwojciec/freeze/htmltomarkdown"
	freezehttp "github.com/fwojciec/freeze/http"
	"github.com/fwojciec/freeze/robotstxt"
	freezeslog "github.com/fwojciec/freeze/slog"
	"github.com/fwojciec/freeze/trafilatura"
)

// ErrIncomplete is returned when the snapshot was written but some URLs
// could not be fetched or some links point outside it.
var ErrIncomplete = errors.New("snapshot incomplete")

// Run executes the build command.
func (c *BuildCmd) Run(deps *Dependencies) error {
	cfg, err := c.Resolve()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
		return err
	}
	ctx := deps.Ctx
	logger := deps.Logger

	fetcher := freezeslog.NewLoggingFetcher(freezehttp.NewFetcher(
		freezehttp.WithTimeout(cfg.Timeout),
		freezehttp.WithUserAgent(cfg.UserAgent),
	), logger)
	defer fetcher.Close()

	extractor := goquery.NewExtractor()
	origin, _ := url.Parse(cfg.Server)

	crawlCfg := crawl.Config{
		Server:      freeze.Server{Origin: cfg.Server},
		Routes:      freeze.Routes{Static: cfg.Routes},
		Discover:    cfg.Discover.PolicyOrNil(),
		BasePath:    cfg.Base,
		Fetcher:     fetcher,
		Extractor:   extractor,
		Concurrency: cfg.Concurrency,
		RetryDelays: crawl.RetryDelays(cfg.Retries),
		Log: func(format string, args ...any) {
			logger.Info(fmt.Sprintf(format, args...))
		},
		Progress: func(event crawl.ProgressEvent) {
			switch event.Type {
			case crawl.ProgressFailed:
				fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", crawl.DisplayURL(event.URL, origin, 80), event.Error)
			case crawl.ProgressCompleted:
				logger.Debug("crawled", "url", event.URL, "completed", event.Completed, "total", event.Total)
			}
		},
	}
	if cfg.RPS > 0 {
		crawlCfg.RateLimiter = crawl.NewDomainLimiter(cfg.RPS, 1)
	}
	if cfg.Robots {
		crawlCfg.Robots = freezeslog.NewLoggingRobots(robotstxt.NewAgent(fetcher, cfg.UserAgent), logger)
	}

	var seeds []freeze.RoutesFunc
	if cfg.Sitemap {
		sitemaps := freezeslog.NewLoggingSitemapService(freezehttp.NewSitemapService(fetcher), logger)
		policy, err := crawl.NewPolicy(cfg.Discover.Policy)
		if err != nil {
			return err
		}
		// Sitemap entries honor the same ignore patterns as discovered links.
		keep := func(u *url.URL) bool { return !policy.ShouldIgnore(u.Path) }
		seeds = append(seeds, crawl.SitemapRoutes(sitemaps, keep))
	}
	if c.RetryFailed {
		seeds = append(seeds, retryRoutes(deps.Runs))
	}
	if len(seeds) > 0 {
		crawlCfg.Routes.Func = crawl.JoinRoutes(seeds...)
	}

	crawler, err := crawl.NewCrawler(crawlCfg)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
		return err
	}
	if err := crawler.Start(ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
		return err
	}
	defer crawler.Stop(ctx)

	run := &freeze.Run{Origin: freeze.Canonicalize(crawler.Origin()).String(), OutputDir: cfg.Out}
	if err := deps.Runs.CreateRun(ctx, run); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	fmt.Fprintf(deps.Stdout, "Crawling %s\n", run.Origin)
	resources, err := crawler.Crawl(ctx, crawl.CrawlOptions{
		MaxResources:   cfg.MaxResources,
		RequestTimeout: cfg.Timeout,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
		return err
	}
	if err := ctx.Err(); err != nil {
		fmt.Fprintln(deps.Stderr, "interrupted, snapshot not written")
		return err
	}
	if err := crawler.Stop(ctx); err != nil {
		logger.Warn("stop server", "err", err)
	}

	bytes, err := c.write(deps, cfg, resources)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	stats := crawler.Stats()
	if err := recordRun(deps, run.ID, crawler, stats); err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "  Wrote %s to %s\n",
		crawl.FormatSummary(stats, crawler.Frontier().Stats(), bytes), cfg.Out)

	incomplete := stats.ErrorsCount > 0
	if c.Validate {
		broken, err := crawl.CheckLinks(resources, crawler.Frontier(), extractor)
		if err != nil {
			return err
		}
		for _, b := range broken {
			fmt.Fprintf(deps.Stderr, "  broken link %s -> %s\n", b.Page, b.Target)
		}
		incomplete = incomplete || len(broken) > 0
	}
	if incomplete {
		return ErrIncomplete
	}
	return nil
}

// write saves every resource, and its Markdown copy when enabled, then
// commits the snapshot. Any write error aborts the whole snapshot.
func (c *BuildCmd) write(deps *Dependencies, cfg *Config, resources []*freeze.Resource) (int, error) {
	store := freezeslog.NewLoggingStore(fs.NewSnapshotStoreAt(cfg.Out, cfg.Base), deps.Logger)

	var mirror *crawl.MarkdownMirror
	if cfg.Markdown {
		mirror = crawl.NewMarkdownMirror(trafilatura.NewExtractor(), htmltomarkdown.NewConverter(), store, cfg.Base)
	}

	var total int
	for _, res := range resources {
		if _, err := store.Save(deps.Ctx, res); err != nil {
			_ = store.Abort()
			return 0, fmt.Errorf("save %s: %w", res.URL(), err)
		}
		total += len(res.Body())

		if mirror == nil {
			continue
		}
		if _, err := mirror.Write(deps.Ctx, res); err != nil {
			// A page without extractable content still belongs in the snapshot.
			deps.Logger.Warn("markdown", "url", res.URL().String(), "err", err)
		}
	}

	if err := store.Commit(); err != nil {
		return 0, fmt.Errorf("commit snapshot: %w", err)
	}
	return total, nil
}

// retryRoutes seeds the paths that failed in the most recent run against
// the same origin.
func retryRoutes(runs freeze.RunService) freeze.RoutesFunc {
	return func(ctx context.Context, origin *url.URL) ([]string, error) {
		key := freeze.Canonicalize(origin).String()
		previous, err := runs.FindRuns(ctx, freeze.RunFilter{Origin: &key, Limit: 5})
		if err != nil {
			return nil, err
		}
		// Interrupted builds never finished and recorded no entries.
		for _, run := range previous {
			if run.FinishedAt.IsZero() {
				continue
			}
			failed := freeze.StateFailed
			entries, err := runs.FindEntries(ctx, freeze.RunEntryFilter{RunID: run.ID, State: &failed})
			if err != nil {
				return nil, err
			}
			routes := make([]string, 0, len(entries))
			for _, e := range entries {
				u, err := url.Parse(e.URL)
				if err != nil {
					continue
				}
				routes = append(routes, u.RequestURI())
			}
			return routes, nil
		}
		return nil, nil
	}
}

// recordRun stores final statistics and one entry per frontier URL.
func recordRun(deps *Dependencies, runID string, crawler *crawl.Crawler, stats freeze.CrawlStats) error {
	byURL := make(map[string]*freeze.Resource)
	for _, res := range crawler.Resources() {
		byURL[res.URL().String()] = res
	}
	failures := crawler.Failures()
	frontier := crawler.Frontier()

	var entries []*freeze.RunEntry
	for _, u := range frontier.Crawled() {
		e := &freeze.RunEntry{URL: u, State: freeze.StateCrawled}
		if res, ok := byURL[u]; ok {
			e.Kind = res.Kind().String()
			e.Checksum = res.Checksum()
			e.Bytes = len(res.Body())
		}
		entries = append(entries, e)
	}
	for _, u := range frontier.Failed() {
		e := &freeze.RunEntry{URL: u, State: freeze.StateFailed}
		if err := failures[u]; err != nil {
			e.Error = message(err)
		}
		entries = append(entries, e)
	}
	for _, u := range frontier.Pending() {
		entries = append(entries, &freeze.RunEntry{URL: u, State: freeze.StatePending})
	}

	if err := deps.Runs.RecordEntries(deps.Ctx, runID, entries); err != nil {
		return fmt.Errorf("failed to record run entries: %w", err)
	}
	if err := deps.Runs.FinishRun(deps.Ctx, runID, stats); err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// message returns the user-facing text of err.
func message(err error) string {
	if freeze.ErrorCode(err) == freeze.EINTERNAL {
		return err.Error()
	}
	return freeze.ErrorMessage(err)
}
