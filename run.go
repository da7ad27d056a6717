package freeze

import (
	"context"
	"time"
)

// Frontier entry states recorded for a run.
const (
	StatePending = "pending"
	StateCrawled = "crawled"
	StateFailed  = "failed"
)

// Run records one crawl session.
type Run struct {
	ID         string     `json:"id"`
	Origin     string     `json:"origin"`
	OutputDir  string     `json:"outputDir"`
	Stats      CrawlStats `json:"stats"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt time.Time  `json:"finishedAt"`
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	if r.Origin == "" {
		return Errorf(EINVALID, "run origin required")
	}
	return nil
}

// RunEntry records the final state of one frontier URL within a run.
type RunEntry struct {
	RunID    string `json:"runId"`
	URL      string `json:"url"`
	State    string `json:"state"`
	Kind     string `json:"kind"`
	Checksum string `json:"checksum"`
	Bytes    int    `json:"bytes"`
	Error    string `json:"error"`
}

// Validate returns an error if the entry contains invalid fields.
func (e *RunEntry) Validate() error {
	if e.URL == "" {
		return Errorf(EINVALID, "run entry URL required")
	}
	switch e.State {
	case StatePending, StateCrawled, StateFailed:
	default:
		return Errorf(EINVALID, "invalid run entry state %q", e.State)
	}
	return nil
}

// RunService represents a service for recording crawl runs.
type RunService interface {
	// CreateRun stores a new run and assigns its ID and StartedAt.
	CreateRun(ctx context.Context, run *Run) error

	// FinishRun stores final statistics for a run.
	// Returns ENOTFOUND if the run does not exist.
	FinishRun(ctx context.Context, id string, stats CrawlStats) error

	// RecordEntries stores frontier entries for a run.
	RecordEntries(ctx context.Context, runID string, entries []*RunEntry) error

	// FindRunByID retrieves a run by ID.
	// Returns ENOTFOUND if the run does not exist.
	FindRunByID(ctx context.Context, id string) (*Run, error)

	// FindRuns retrieves runs, most recent first.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)

	// FindEntries retrieves entries matching the filter.
	FindEntries(ctx context.Context, filter RunEntryFilter) ([]*RunEntry, error)
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	Origin *string `json:"origin"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RunEntryFilter represents a filter for FindEntries.
type RunEntryFilter struct {
	RunID string  `json:"runId"`
	State *string `json:"state"`
}
