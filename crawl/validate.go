package crawl

import (
	"github.com/fwojciec/freeze"
)

// BrokenLink is an internal link from a snapshot page to a URL the snapshot
// does not contain.
type BrokenLink struct {
	Page   string
	Target string
	// State is the target's frontier state, or "" when it was never discovered.
	State string
}

// CheckLinks reports internal links of the HTML resources whose target was
// not crawled. Each (page, target) pair is reported once, in page order.
func CheckLinks(resources []*freeze.Resource, frontier freeze.URLFrontier, x freeze.LinkExtractor) ([]BrokenLink, error) {
	opts := freeze.DefaultExtractOptions()
	opts.Scope = freeze.ScopeInternal

	var broken []BrokenLink
	for _, res := range resources {
		if !res.IsHTML() {
			continue
		}
		links, err := res.ExtractLinks(x, opts)
		if err != nil {
			return nil, err
		}
		for _, link := range links {
			if frontier.IsCrawled(link) {
				continue
			}
			state := ""
			switch {
			case frontier.IsFailed(link):
				state = freeze.StateFailed
			case frontier.IsPending(link):
				state = freeze.StatePending
			}
			broken = append(broken, BrokenLink{Page: res.URL().String(), Target: link, State: state})
		}
	}
	return broken, nil
}
