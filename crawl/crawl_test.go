package crawl_test

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/freeze"
	"github.com/fwojciec/freeze/crawl"
	"github.com/fwojciec/freeze/goquery"
	"github.com/fwojciec/freeze/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOrigin = "http://localhost:3000"

// site is a fake server keyed by path. Paths without an entry fail.
type site map[string]string

func (s site) fetcher() *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, raw string) (*freeze.Response, error) {
			u, err := url.Parse(raw)
			if err != nil {
				return nil, err
			}
			body, ok := s[u.Path]
			if !ok {
				return nil, freeze.Errorf(freeze.EFETCH, "connection refused")
			}
			contentType := "text/html; charset=utf-8"
			if strings.Contains(u.Path, ".") {
				contentType = "application/octet-stream"
			}
			return &freeze.Response{URL: raw, StatusCode: 200, ContentType: contentType, Body: []byte(body)}, nil
		},
		CloseFn: func() error { return nil },
	}
}

func newCrawler(t *testing.T, cfg crawl.Config) *crawl.Crawler {
	t.Helper()
	if cfg.Server.Origin == "" && cfg.Server.Boot == nil {
		cfg.Server.Origin = testOrigin
	}
	if cfg.Extractor == nil {
		cfg.Extractor = goquery.NewExtractor()
	}
	c, err := crawl.NewCrawler(cfg)
	require.NoError(t, err)
	return c
}

func TestCrawler_Crawl(t *testing.T) {
	t.Parallel()

	t.Run("stops at max resources after discovering links", func(t *testing.T) {
		t.Parallel()

		c := newCrawler(t, crawl.Config{
			Routes:   freeze.Routes{Static: []string{"/"}},
			Discover: &freeze.DiscoverPolicy{},
			Fetcher:  site{"/": `<html><a href="/about">About</a></html>`}.fetcher(),
		})
		require.NoError(t, c.Start(context.Background()))

		resources, err := c.Crawl(context.Background(), crawl.CrawlOptions{MaxResources: 1})

		require.NoError(t, err)
		assert.Equal(t, freeze.FrontierStats{Discovered: 1, Crawled: 1, Failed: 0, Total: 2}, c.Frontier().Stats())
		require.Len(t, resources, 1)
		assert.True(t, resources[0].IsHTML())
		assert.Equal(t, "http://localhost:3000/", resources[0].URL().String())
	})

	t.Run("does not discover links when discovery is disabled", func(t *testing.T) {
		t.Parallel()

		c := newCrawler(t, crawl.Config{
			Routes:  freeze.Routes{Static: []string{"/"}},
			Fetcher: site{"/": `<html><a href="/about">About</a></html>`}.fetcher(),
		})
		require.NoError(t, c.Start(context.Background()))

		resources, err := c.Crawl(context.Background(), crawl.CrawlOptions{MaxResources: 1})

		require.NoError(t, err)
		assert.Equal(t, freeze.FrontierStats{Discovered: 0, Crawled: 1, Failed: 0, Total: 1}, c.Frontier().Stats())
		assert.Len(t, resources, 1)
	})

	t.Run("records failed fetches and allows rediscovery", func(t *testing.T) {
		t.Parallel()

		c := newCrawler(t, crawl.Config{
			Routes:   freeze.Routes{Static: []string{"/error"}},
			Discover: &freeze.DiscoverPolicy{},
			Fetcher:  site{}.fetcher(),
		})
		require.NoError(t, c.Start(context.Background()))

		resources, err := c.Crawl(context.Background(), crawl.CrawlOptions{})

		require.NoError(t, err)
		assert.Empty(t, resources)
		stats := c.Stats()
		assert.Equal(t, 1, stats.ErrorsCount)
		assert.Equal(t, 0, stats.ResourcesCount)
		assert.True(t, c.Frontier().IsFailed("/error"))
		assert.Equal(t, freeze.EFETCH, freeze.ErrorCode(c.Failures()["http://localhost:3000/error"]))

		require.NoError(t, c.Frontier().Rediscover("/error"))
		assert.True(t, c.Frontier().IsPending("/error"))
	})

	t.Run("crawls the whole site when unbounded", func(t *testing.T) {
		t.Parallel()

		c := newCrawler(t, crawl.Config{
			Routes:   freeze.Routes{Static: []string{"/"}},
			Discover: &freeze.DiscoverPolicy{},
			Fetcher: site{
				"/":         `<a href="/about">About</a><link rel="stylesheet" href="/app.css"><a href="https://other.com/">x</a>`,
				"/about":    `<a href="/">Home</a><a href="/team?b=2&amp;a=1#x">Team</a>`,
				"/team":     `<p>team</p>`,
				"/app.css":  `body{}`,
				"/unlinked": `<p>never</p>`,
			}.fetcher(),
		})
		require.NoError(t, c.Start(context.Background()))

		resources, err := c.Crawl(context.Background(), crawl.CrawlOptions{})

		require.NoError(t, err)
		assert.Len(t, resources, 4)
		assert.ElementsMatch(t, []string{
			"http://localhost:3000/",
			"http://localhost:3000/about",
			"http://localhost:3000/app.css",
			"http://localhost:3000/team?a=1&b=2",
		}, c.Frontier().Crawled())
		assert.False(t, c.Frontier().IsPending("https://other.com/"))
		assert.Equal(t, 4, c.Stats().ResourcesCount)
		assert.Zero(t, c.Stats().ErrorsCount)
	})

	t.Run("resumes after rediscovery", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		broken := true
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, raw string) (*freeze.Response, error) {
				mu.Lock()
				defer mu.Unlock()
				if broken {
					return nil, errors.New("connection reset")
				}
				return &freeze.Response{URL: raw, StatusCode: 200, ContentType: "text/html", Body: []byte("ok")}, nil
			},
		}
		c := newCrawler(t, crawl.Config{Routes: freeze.Routes{Static: []string{"/flaky"}}, Fetcher: fetcher})
		require.NoError(t, c.Start(context.Background()))

		_, err := c.Crawl(context.Background(), crawl.CrawlOptions{})
		require.NoError(t, err)
		require.True(t, c.Frontier().IsFailed("/flaky"))

		mu.Lock()
		broken = false
		mu.Unlock()
		require.NoError(t, c.Frontier().Rediscover("/flaky"))

		resources, err := c.Crawl(context.Background(), crawl.CrawlOptions{})
		require.NoError(t, err)
		assert.Len(t, resources, 1)
		assert.True(t, c.Frontier().IsCrawled("/flaky"))
		assert.Empty(t, c.Failures())
	})

	t.Run("honors max depth", func(t *testing.T) {
		t.Parallel()

		depth := 1
		c := newCrawler(t, crawl.Config{
			Routes:   freeze.Routes{Static: []string{"/"}},
			Discover: &freeze.DiscoverPolicy{MaxDepth: &depth},
			Fetcher: site{
				"/":  `<a href="/a">a</a>`,
				"/a": `<a href="/b">b</a>`,
				"/b": `<p>b</p>`,
			}.fetcher(),
		})
		require.NoError(t, c.Start(context.Background()))

		_, err := c.Crawl(context.Background(), crawl.CrawlOptions{})

		require.NoError(t, err)
		assert.Equal(t, []string{"http://localhost:3000/", "http://localhost:3000/a"}, c.Frontier().Crawled())
		assert.False(t, c.Frontier().IsPending("/b"))
	})

	t.Run("skips ignored paths", func(t *testing.T) {
		t.Parallel()

		c := newCrawler(t, crawl.Config{
			Routes:   freeze.Routes{Static: []string{"/"}},
			Discover: &freeze.DiscoverPolicy{Ignore: []string{"/admin/*"}},
			Fetcher: site{
				"/":      `<a href="/admin/settings">admin</a><a href="/page1">page</a>`,
				"/page1": `<p>page</p>`,
			}.fetcher(),
		})
		require.NoError(t, c.Start(context.Background()))

		_, err := c.Crawl(context.Background(), crawl.CrawlOptions{})

		require.NoError(t, err)
		assert.Equal(t, freeze.FrontierStats{Crawled: 2, Total: 2}, c.Frontier().Stats())
	})

	t.Run("drops links disallowed by robots policy", func(t *testing.T) {
		t.Parallel()

		robots := &mock.RobotsPolicy{
			AllowedFn: func(_ context.Context, target *url.URL) bool {
				return !strings.HasPrefix(target.Path, "/private")
			},
		}
		c := newCrawler(t, crawl.Config{
			Routes:   freeze.Routes{Static: []string{"/"}},
			Discover: &freeze.DiscoverPolicy{},
			Robots:   robots,
			Fetcher: site{
				"/":       `<a href="/private/x">p</a><a href="/public">p</a>`,
				"/public": `<p>ok</p>`,
			}.fetcher(),
		})
		require.NoError(t, c.Start(context.Background()))

		_, err := c.Crawl(context.Background(), crawl.CrawlOptions{})

		require.NoError(t, err)
		assert.False(t, c.Frontier().IsCrawled("/private/x"))
		assert.True(t, c.Frontier().IsCrawled("/public"))
	})

	t.Run("fails fetches exceeding the request timeout", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(ctx context.Context, _ string) (*freeze.Response, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			},
		}
		c := newCrawler(t, crawl.Config{Routes: freeze.Routes{Static: []string{"/slow"}}, Fetcher: fetcher})
		require.NoError(t, c.Start(context.Background()))

		_, err := c.Crawl(context.Background(), crawl.CrawlOptions{RequestTimeout: 10 * time.Millisecond})

		require.NoError(t, err)
		assert.True(t, c.Frontier().IsFailed("/slow"))
		failure := c.Failures()["http://localhost:3000/slow"]
		assert.Equal(t, freeze.EFETCH, freeze.ErrorCode(failure))
		assert.Contains(t, freeze.ErrorMessage(failure), "timed out after 10ms")
		assert.ErrorIs(t, failure, context.DeadlineExceeded)
	})

	t.Run("does not follow links away from the origin", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var fetched []string
		inner := site{
			"/":      `<a href="/local">local</a><a href="http://other.example/elsewhere">x</a>`,
			"/local": `<p>local</p>`,
			"/deep":  `<p>deep</p>`,
		}.fetcher()
		fetcher := &mock.Fetcher{
			FetchFn: func(ctx context.Context, raw string) (*freeze.Response, error) {
				mu.Lock()
				fetched = append(fetched, raw)
				mu.Unlock()
				if raw == "http://other.example/" {
					return &freeze.Response{URL: raw, StatusCode: 200, ContentType: "text/html", Body: []byte(`<a href="/deep">deep</a>`)}, nil
				}
				return inner.Fetch(ctx, raw)
			},
		}
		c := newCrawler(t, crawl.Config{
			Routes:   freeze.Routes{Static: []string{"/", "http://other.example/"}},
			Discover: &freeze.DiscoverPolicy{},
			Fetcher:  fetcher,
		})
		require.NoError(t, c.Start(context.Background()))

		_, err := c.Crawl(context.Background(), crawl.CrawlOptions{})

		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			"http://localhost:3000/",
			"http://other.example/",
			"http://localhost:3000/local",
		}, fetched)
		assert.False(t, c.Frontier().IsCrawled("http://other.example/deep"))
		assert.False(t, c.Frontier().IsPending("http://other.example/elsewhere"))
	})

	t.Run("waits on the rate limiter per host", func(t *testing.T) {
		t.Parallel()

		var hosts []string
		limiter := &mock.DomainLimiter{
			WaitFn: func(_ context.Context, domain string) error {
				hosts = append(hosts, domain)
				return nil
			},
		}
		c := newCrawler(t, crawl.Config{
			Routes:      freeze.Routes{Static: []string{"/", "/other"}},
			Fetcher:     site{"/": "a", "/other": "b"}.fetcher(),
			RateLimiter: limiter,
		})
		require.NoError(t, c.Start(context.Background()))

		_, err := c.Crawl(context.Background(), crawl.CrawlOptions{})

		require.NoError(t, err)
		assert.Equal(t, []string{"localhost:3000", "localhost:3000"}, hosts)
	})

	t.Run("leaves URLs pending when the context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		fetcher := &mock.Fetcher{
			FetchFn: func(ctx context.Context, _ string) (*freeze.Response, error) {
				cancel()
				<-ctx.Done()
				return nil, ctx.Err()
			},
		}
		c := newCrawler(t, crawl.Config{Routes: freeze.Routes{Static: []string{"/", "/next"}}, Fetcher: fetcher})
		require.NoError(t, c.Start(context.Background()))

		_, err := c.Crawl(ctx, crawl.CrawlOptions{})

		require.NoError(t, err)
		assert.Equal(t, freeze.FrontierStats{Discovered: 2, Total: 2}, c.Frontier().Stats())
		assert.Equal(t, 0, c.Stats().ErrorsCount)
	})

	t.Run("reports progress", func(t *testing.T) {
		t.Parallel()

		var events []crawl.ProgressEvent
		c := newCrawler(t, crawl.Config{
			Routes:   freeze.Routes{Static: []string{"/", "/missing"}},
			Fetcher:  site{"/": "home"}.fetcher(),
			Progress: func(e crawl.ProgressEvent) { events = append(events, e) },
		})
		require.NoError(t, c.Start(context.Background()))

		_, err := c.Crawl(context.Background(), crawl.CrawlOptions{})

		require.NoError(t, err)
		require.Len(t, events, 4)
		assert.Equal(t, crawl.ProgressStarted, events[0].Type)
		assert.Equal(t, 2, events[0].Total)
		assert.Equal(t, crawl.ProgressCompleted, events[1].Type)
		assert.Equal(t, "http://localhost:3000/", events[1].URL)
		assert.Equal(t, crawl.ProgressFailed, events[2].Type)
		assert.Error(t, events[2].Error)
		assert.Equal(t, crawl.ProgressFinished, events[3].Type)
		assert.Equal(t, 2, events[3].Completed)
	})
}

func TestCrawler_Concurrency(t *testing.T) {
	t.Parallel()

	const numPages = 10
	const concurrency = 3

	var mu sync.Mutex
	var current, maxConcurrent int
	fetches := make(map[string]int)

	home := `<html>`
	for i := 0; i < numPages; i++ {
		home += `<a href="/page` + string(rune('a'+i)) + `">p</a>`
	}
	fetcher := &mock.Fetcher{
		FetchFn: func(_ context.Context, raw string) (*freeze.Response, error) {
			mu.Lock()
			fetches[raw]++
			current++
			maxConcurrent = max(maxConcurrent, current)
			mu.Unlock()

			// Simulate work to allow concurrency to build up
			time.Sleep(30 * time.Millisecond)

			mu.Lock()
			current--
			mu.Unlock()

			body := "<p>page</p>"
			if strings.HasSuffix(raw, ":3000/") {
				body = home
			}
			return &freeze.Response{URL: raw, StatusCode: 200, ContentType: "text/html", Body: []byte(body)}, nil
		},
	}

	c := newCrawler(t, crawl.Config{
		Routes:      freeze.Routes{Static: []string{"/"}},
		Discover:    &freeze.DiscoverPolicy{},
		Fetcher:     fetcher,
		Concurrency: concurrency,
	})
	require.NoError(t, c.Start(context.Background()))

	resources, err := c.Crawl(context.Background(), crawl.CrawlOptions{})

	require.NoError(t, err)
	assert.Len(t, resources, numPages+1)
	assert.Greater(t, maxConcurrent, 1, "should process URLs in parallel")
	assert.LessOrEqual(t, maxConcurrent, concurrency, "should respect the concurrency limit")
	for u, n := range fetches {
		assert.Equal(t, 1, n, "%s fetched more than once", u)
	}
}

func TestCrawler_Concurrency_respects_max_resources(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	fetched := 0
	fetcher := &mock.Fetcher{
		FetchFn: func(_ context.Context, raw string) (*freeze.Response, error) {
			mu.Lock()
			fetched++
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			return &freeze.Response{URL: raw, StatusCode: 200, ContentType: "text/plain", Body: []byte("x")}, nil
		},
	}
	c := newCrawler(t, crawl.Config{
		Routes:      freeze.Routes{Static: []string{"/1", "/2", "/3", "/4", "/5", "/6"}},
		Fetcher:     fetcher,
		Concurrency: 4,
	})
	require.NoError(t, c.Start(context.Background()))

	resources, err := c.Crawl(context.Background(), crawl.CrawlOptions{MaxResources: 2})

	require.NoError(t, err)
	assert.Len(t, resources, 2)
	assert.Equal(t, 2, fetched)
	assert.Equal(t, 4, c.Frontier().PendingCount())
}

func TestCrawler_lifecycle(t *testing.T) {
	t.Parallel()

	t.Run("crawl before start fails", func(t *testing.T) {
		t.Parallel()

		c := newCrawler(t, crawl.Config{Fetcher: site{}.fetcher()})

		_, err := c.Crawl(context.Background(), crawl.CrawlOptions{})

		assert.Equal(t, freeze.ENOTSTARTED, freeze.ErrorCode(err))
	})

	t.Run("start twice fails", func(t *testing.T) {
		t.Parallel()

		c := newCrawler(t, crawl.Config{Fetcher: site{}.fetcher()})
		require.NoError(t, c.Start(context.Background()))

		err := c.Start(context.Background())

		assert.Equal(t, freeze.EALREADYSTARTED, freeze.ErrorCode(err))
	})

	t.Run("crawl after stop fails", func(t *testing.T) {
		t.Parallel()

		c := newCrawler(t, crawl.Config{Fetcher: site{}.fetcher()})
		require.NoError(t, c.Start(context.Background()))
		require.NoError(t, c.Stop(context.Background()))

		_, err := c.Crawl(context.Background(), crawl.CrawlOptions{})

		assert.Equal(t, freeze.ENOTSTARTED, freeze.ErrorCode(err))
		assert.Equal(t, freeze.EALREADYSTARTED, freeze.ErrorCode(c.Start(context.Background())))
	})

	t.Run("stop is safe when never started and idempotent", func(t *testing.T) {
		t.Parallel()

		c := newCrawler(t, crawl.Config{Fetcher: site{}.fetcher()})

		assert.NoError(t, c.Stop(context.Background()))
		assert.True(t, c.Stats().EndTime.IsZero())

		require.NoError(t, c.Start(context.Background()))
		require.NoError(t, c.Stop(context.Background()))
		end := c.Stats().EndTime
		require.NoError(t, c.Stop(context.Background()))
		assert.Equal(t, end, c.Stats().EndTime)
	})

	t.Run("stop finalizes statistics", func(t *testing.T) {
		t.Parallel()

		c := newCrawler(t, crawl.Config{Fetcher: site{}.fetcher()})
		require.NoError(t, c.Start(context.Background()))
		time.Sleep(5 * time.Millisecond)
		require.NoError(t, c.Stop(context.Background()))

		stats := c.Stats()
		assert.False(t, stats.StartTime.IsZero())
		assert.False(t, stats.EndTime.IsZero())
		assert.Equal(t, stats.EndTime.Sub(stats.StartTime), stats.TotalTime)
		assert.Positive(t, stats.TotalTime)
	})

	t.Run("rejects concurrent crawls", func(t *testing.T) {
		t.Parallel()

		entered := make(chan struct{})
		release := make(chan struct{})
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, raw string) (*freeze.Response, error) {
				close(entered)
				<-release
				return &freeze.Response{URL: raw, StatusCode: 200, ContentType: "text/html", Body: []byte("ok")}, nil
			},
		}
		c := newCrawler(t, crawl.Config{Routes: freeze.Routes{Static: []string{"/"}}, Fetcher: fetcher})
		require.NoError(t, c.Start(context.Background()))

		done := make(chan error, 1)
		go func() {
			_, err := c.Crawl(context.Background(), crawl.CrawlOptions{})
			done <- err
		}()
		<-entered

		_, err := c.Crawl(context.Background(), crawl.CrawlOptions{})
		assert.Equal(t, freeze.ECRAWLINPROGRESS, freeze.ErrorCode(err))

		close(release)
		require.NoError(t, <-done)

		// The guard is released once the first crawl settles.
		_, err = c.Crawl(context.Background(), crawl.CrawlOptions{})
		assert.NoError(t, err)
	})

	t.Run("rejects visited resources after start", func(t *testing.T) {
		t.Parallel()

		c := newCrawler(t, crawl.Config{Fetcher: site{}.fetcher()})
		require.NoError(t, c.Start(context.Background()))

		err := c.AddVisitedResource("/app.js", []byte("x"), "")

		assert.Equal(t, freeze.EALREADYSTARTED, freeze.ErrorCode(err))
	})

	t.Run("rejects invalid configuration", func(t *testing.T) {
		t.Parallel()

		_, err := crawl.NewCrawler(crawl.Config{Fetcher: site{}.fetcher()})
		assert.Equal(t, freeze.EINVALID, freeze.ErrorCode(err))

		_, err = crawl.NewCrawler(crawl.Config{Server: freeze.Server{Origin: testOrigin}})
		assert.Equal(t, freeze.EINVALID, freeze.ErrorCode(err))

		depth := -1
		_, err = crawl.NewCrawler(crawl.Config{
			Server:    freeze.Server{Origin: testOrigin},
			Fetcher:   site{}.fetcher(),
			Extractor: goquery.NewExtractor(),
			Discover:  &freeze.DiscoverPolicy{MaxDepth: &depth},
		})
		assert.Equal(t, freeze.EINVALID, freeze.ErrorCode(err))
	})
}

func TestCrawler_AddVisitedResource(t *testing.T) {
	t.Parallel()

	var fetched []string
	fetcher := &mock.Fetcher{
		FetchFn: func(_ context.Context, raw string) (*freeze.Response, error) {
			fetched = append(fetched, raw)
			return &freeze.Response{URL: raw, StatusCode: 200, ContentType: "text/html",
				Body: []byte(`<script src="/bundle.js"></script>`)}, nil
		},
	}
	c := newCrawler(t, crawl.Config{
		Routes:   freeze.Routes{Static: []string{"/", "/bundle.js"}},
		Discover: &freeze.DiscoverPolicy{},
		Fetcher:  fetcher,
	})
	require.NoError(t, c.AddVisitedResource("/bundle.js", []byte("console.log(1)"), ""))
	require.NoError(t, c.Start(context.Background()))

	assert.True(t, c.Frontier().IsCrawled("/bundle.js"))

	resources, err := c.Crawl(context.Background(), crawl.CrawlOptions{})

	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:3000/"}, fetched, "bundles are never fetched")
	require.Len(t, resources, 2)
	assert.True(t, resources[0].IsBundle())
	assert.Equal(t, "http://localhost:3000/bundle.js", resources[0].URL().String())
	assert.Equal(t, "bundle.js", resources[0].OutputPath(""))
	assert.Equal(t, 1, c.Stats().ResourcesCount)
}

func TestCrawler_Start(t *testing.T) {
	t.Parallel()

	t.Run("invokes the routes function once with the origin", func(t *testing.T) {
		t.Parallel()

		calls := 0
		c := newCrawler(t, crawl.Config{
			Routes: freeze.Routes{
				Static: []string{"/"},
				Func: func(_ context.Context, origin *url.URL) ([]string, error) {
					calls++
					assert.Equal(t, "http://localhost:3000/", origin.String())
					return []string{"/generated", "/"}, nil
				},
			},
			Fetcher: site{}.fetcher(),
		})

		require.NoError(t, c.Start(context.Background()))

		assert.Equal(t, 1, calls)
		assert.Equal(t, []string{"http://localhost:3000/", "http://localhost:3000/generated"}, c.Frontier().Pending())
	})

	t.Run("returns route function errors", func(t *testing.T) {
		t.Parallel()

		c := newCrawler(t, crawl.Config{
			Routes: freeze.Routes{Func: func(context.Context, *url.URL) ([]string, error) {
				return nil, errors.New("boom")
			}},
			Fetcher: site{}.fetcher(),
		})

		err := c.Start(context.Background())

		assert.ErrorContains(t, err, "boom")
	})

	t.Run("rejects invalid seed routes", func(t *testing.T) {
		t.Parallel()

		c := newCrawler(t, crawl.Config{
			Routes:  freeze.Routes{Static: []string{"mailto:me@example.com"}},
			Fetcher: site{}.fetcher(),
		})

		err := c.Start(context.Background())

		assert.Equal(t, freeze.EINVALIDURL, freeze.ErrorCode(err))
	})

	t.Run("boots the server on an allocated port and shuts it down on stop", func(t *testing.T) {
		t.Parallel()

		var bootPort int
		shutdowns := 0
		boot := func(_ context.Context, port int) (freeze.ShutdownFunc, error) {
			bootPort = port
			return func(context.Context) error {
				shutdowns++
				return nil
			}, nil
		}
		c := newCrawler(t, crawl.Config{Server: freeze.Server{Boot: boot}, Fetcher: site{}.fetcher()})

		require.NoError(t, c.Start(context.Background()))

		assert.Positive(t, bootPort)
		assert.Equal(t, "127.0.0.1", c.Origin().Hostname())
		assert.Equal(t, bootPort, mustPort(t, c.Origin()))

		require.NoError(t, c.Stop(context.Background()))
		require.NoError(t, c.Stop(context.Background()))
		assert.Equal(t, 1, shutdowns)
	})

	t.Run("returns boot errors", func(t *testing.T) {
		t.Parallel()

		boot := func(context.Context, int) (freeze.ShutdownFunc, error) {
			return nil, errors.New("address in use")
		}
		c := newCrawler(t, crawl.Config{Server: freeze.Server{Boot: boot}, Fetcher: site{}.fetcher()})

		err := c.Start(context.Background())

		assert.ErrorContains(t, err, "address in use")
	})
}

func mustPort(t *testing.T, u *url.URL) int {
	t.Helper()
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return port
}
