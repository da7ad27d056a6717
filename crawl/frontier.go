package crawl

import (
	"container/list"
	"net/url"
	"sync"

	"github.com/fwojciec/freeze"
	"github.com/fwojciec/freeze/bloom"
)

// Compile-time interface verification.
var _ freeze.URLFrontier = (*Frontier)(nil)

// Default Bloom filter sizing for NewFrontier.
const (
	DefaultFrontierSize   = 10000
	DefaultFrontierFPRate = 0.01
)

// Frontier is an in-memory URL frontier. Every URL it has seen lives in
// exactly one of the pending, crawled and failed sets, keyed by its
// canonical form. Pending URLs are served in discovery order.
// It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	base *url.URL

	mu      sync.RWMutex
	seen    *bloom.URLSet
	pending *orderedSet
	crawled *orderedSet
	failed  *orderedSet
}

// FrontierOption configures a Frontier.
type FrontierOption func(*frontierConfig)

type frontierConfig struct {
	size   uint
	fpRate float64
}

// WithBloomSize sizes the deduplication filter for n expected URLs with the
// given false positive rate.
func WithBloomSize(n uint, fpRate float64) FrontierOption {
	return func(c *frontierConfig) {
		c.size = n
		c.fpRate = fpRate
	}
}

// NewFrontier creates a frontier that resolves relative URLs against base,
// which may be nil.
func NewFrontier(base *url.URL, opts ...FrontierOption) *Frontier {
	cfg := frontierConfig{size: DefaultFrontierSize, fpRate: DefaultFrontierFPRate}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Frontier{
		base:    base,
		seen:    bloom.NewURLSet(cfg.size, cfg.fpRate),
		pending: newOrderedSet(),
		crawled: newOrderedSet(),
		failed:  newOrderedSet(),
	}
}

// Canonical returns the key the frontier uses for rawURL.
func (f *Frontier) Canonical(rawURL string) (string, error) {
	return freeze.CanonicalURL(rawURL, f.base)
}

// Discover adds a URL to the pending set.
// Returns false if the URL is already pending, crawled or failed.
func (f *Frontier) Discover(rawURL string) (bool, error) {
	key, err := f.Canonical(rawURL)
	if err != nil {
		return false, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// A Bloom miss means the key was never added, so the set lookups
	// only run on probable hits.
	if f.seen.MayContain(key) && f.known(key) {
		return false, nil
	}
	f.seen.Add(key)
	f.pending.add(key)
	return true, nil
}

// MarkCrawled moves a pending URL to the crawled set.
func (f *Frontier) MarkCrawled(rawURL string) error {
	return f.move(rawURL, f.crawled)
}

// MarkFailed moves a pending URL to the failed set.
func (f *Frontier) MarkFailed(rawURL string) error {
	return f.move(rawURL, f.failed)
}

func (f *Frontier) move(rawURL string, to *orderedSet) error {
	key, err := f.Canonical(rawURL)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.pending.remove(key) {
		return freeze.Errorf(freeze.ENOTDISCOVERED, "URL %s is not pending", key)
	}
	to.add(key)
	return nil
}

// Rediscover moves a failed URL back to the end of the pending queue.
func (f *Frontier) Rediscover(rawURL string) error {
	key, err := f.Canonical(rawURL)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.failed.remove(key) {
		return freeze.Errorf(freeze.ENOTFAILED, "URL %s has not failed", key)
	}
	f.pending.add(key)
	return nil
}

// NextPending returns the oldest pending URL without removing it.
// The bool result is false if nothing is pending.
func (f *Frontier) NextPending() (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.pending.front()
}

// NextPendingN returns up to n pending URLs in discovery order.
func (f *Frontier) NextPendingN(n int) []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.pending.keys(n)
}

func (f *Frontier) IsPending(rawURL string) bool {
	return f.is(rawURL, f.pending)
}

func (f *Frontier) IsCrawled(rawURL string) bool {
	return f.is(rawURL, f.crawled)
}

func (f *Frontier) IsFailed(rawURL string) bool {
	return f.is(rawURL, f.failed)
}

func (f *Frontier) is(rawURL string, set *orderedSet) bool {
	key, err := f.Canonical(rawURL)
	if err != nil {
		return false
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	return set.has(key)
}

// Pending returns a snapshot of pending URLs in discovery order.
func (f *Frontier) Pending() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.pending.keys(-1)
}

// Crawled returns a snapshot of crawled URLs in completion order.
func (f *Frontier) Crawled() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.crawled.keys(-1)
}

// Failed returns a snapshot of failed URLs in failure order.
func (f *Frontier) Failed() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.failed.keys(-1)
}

// PendingCount returns the number of pending URLs.
func (f *Frontier) PendingCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.pending.len()
}

// CrawledCount returns the number of crawled URLs.
func (f *Frontier) CrawledCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.crawled.len()
}

// FailedCount returns the number of failed URLs.
func (f *Frontier) FailedCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.failed.len()
}

// Stats returns the size of each set.
func (f *Frontier) Stats() freeze.FrontierStats {
	f.mu.RLock()
	defer f.mu.RUnlock()

	s := freeze.FrontierStats{
		Discovered: f.pending.len(),
		Crawled:    f.crawled.len(),
		Failed:     f.failed.len(),
	}
	s.Total = s.Discovered + s.Crawled + s.Failed
	return s
}

// known must be called with mu held.
func (f *Frontier) known(key string) bool {
	return f.pending.has(key) || f.crawled.has(key) || f.failed.has(key)
}

// orderedSet is an insertion-ordered set of strings with O(1) removal.
type orderedSet struct {
	order *list.List
	index map[string]*list.Element
}

func newOrderedSet() *orderedSet {
	return &orderedSet{
		order: list.New(),
		index: make(map[string]*list.Element),
	}
}

func (s *orderedSet) add(key string) {
	if _, ok := s.index[key]; ok {
		return
	}
	s.index[key] = s.order.PushBack(key)
}

func (s *orderedSet) remove(key string) bool {
	e, ok := s.index[key]
	if !ok {
		return false
	}
	s.order.Remove(e)
	delete(s.index, key)
	return true
}

func (s *orderedSet) has(key string) bool {
	_, ok := s.index[key]
	return ok
}

func (s *orderedSet) len() int {
	return len(s.index)
}

func (s *orderedSet) front() (string, bool) {
	e := s.order.Front()
	if e == nil {
		return "", false
	}
	key, _ := e.Value.(string)
	return key, true
}

// keys returns up to n keys in order; n < 0 returns all of them.
func (s *orderedSet) keys(n int) []string {
	if n < 0 || n > s.order.Len() {
		n = s.order.Len()
	}
	keys := make([]string, 0, n)
	for e := s.order.Front(); e != nil && len(keys) < n; e = e.Next() {
		key, _ := e.Value.(string)
		keys = append(keys, key)
	}
	return keys
}
