package crawl

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/freeze"
)

// DisplayURL renders rawURL for progress output. URLs on origin lose their
// scheme and host; anything longer than width keeps its tail behind "...".
func DisplayURL(rawURL string, origin *url.URL, width int) string {
	s := rawURL
	if origin != nil {
		prefix := strings.TrimSuffix(origin.Scheme+"://"+origin.Host, "/")
		if rest, ok := strings.CutPrefix(rawURL, prefix); ok && strings.HasPrefix(rest, "/") {
			s = rest
		}
	}

	switch {
	case width <= 0:
		return ""
	case len(s) <= width:
		return s
	case width <= 3:
		return s[:width]
	default:
		return "..." + s[len(s)-(width-3):]
	}
}

// FormatBytes renders n with a binary unit.
func FormatBytes(n int) string {
	units := []string{"KB", "MB", "GB"}
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	v := float64(n) / 1024
	unit := 0
	for v >= 1024 && unit < len(units)-1 {
		v /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", v, units[unit])
}

// FormatSummary renders the one-line result of a crawl.
func FormatSummary(stats freeze.CrawlStats, frontier freeze.FrontierStats, bytes int) string {
	return fmt.Sprintf("%d resources (%s), %d errors, %d pending in %s",
		stats.ResourcesCount,
		FormatBytes(bytes),
		stats.ErrorsCount,
		frontier.Discovered,
		stats.TotalTime.Round(time.Millisecond),
	)
}
