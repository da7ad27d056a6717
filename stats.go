package freeze

import "time"

// CrawlStats holds crawl counters. EndTime and TotalTime are set when the
// crawler stops.
type CrawlStats struct {
	StartTime      time.Time     `json:"startTime"`
	EndTime        time.Time     `json:"endTime"`
	TotalTime      time.Duration `json:"totalTime"`
	ResourcesCount int           `json:"resourcesCount"`
	ErrorsCount    int           `json:"errorsCount"`
}
