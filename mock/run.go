package mock

import (
	"context"

	"github.com/fwojciec/freeze"
)

var _ freeze.RunService = (*RunService)(nil)

// RunService is a mock implementation of freeze.RunService.
type RunService struct {
	CreateRunFn     func(ctx context.Context, run *freeze.Run) error
	FinishRunFn     func(ctx context.Context, id string, stats freeze.CrawlStats) error
	RecordEntriesFn func(ctx context.Context, runID string, entries []*freeze.RunEntry) error
	FindRunByIDFn   func(ctx context.Context, id string) (*freeze.Run, error)
	FindRunsFn      func(ctx context.Context, filter freeze.RunFilter) ([]*freeze.Run, error)
	FindEntriesFn   func(ctx context.Context, filter freeze.RunEntryFilter) ([]*freeze.RunEntry, error)
}

func (s *RunService) CreateRun(ctx context.Context, run *freeze.Run) error {
	return s.CreateRunFn(ctx, run)
}

func (s *RunService) FinishRun(ctx context.Context, id string, stats freeze.CrawlStats) error {
	return s.FinishRunFn(ctx, id, stats)
}

func (s *RunService) RecordEntries(ctx context.Context, runID string, entries []*freeze.RunEntry) error {
	return s.RecordEntriesFn(ctx, runID, entries)
}

func (s *RunService) FindRunByID(ctx context.Context, id string) (*freeze.Run, error) {
	return s.FindRunByIDFn(ctx, id)
}

func (s *RunService) FindRuns(ctx context.Context, filter freeze.RunFilter) ([]*freeze.Run, error) {
	return s.FindRunsFn(ctx, filter)
}

func (s *RunService) FindEntries(ctx context.Context, filter freeze.RunEntryFilter) ([]*freeze.RunEntry, error) {
	return s.FindEntriesFn(ctx, filter)
}
