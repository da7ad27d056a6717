package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/fwojciec/freeze"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	if c.RunID != "" {
		return c.entries(deps)
	}

	filter := freeze.RunFilter{Limit: c.Limit}
	if c.Origin != "" {
		origin, err := freeze.CanonicalURL(c.Origin, nil)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
			return err
		}
		filter.Origin = &origin
	}

	runs, err := deps.Runs.FindRuns(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs found. Use 'freeze build' to create one.")
		return nil
	}

	w := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	for _, r := range runs {
		status := "unfinished"
		if !r.FinishedAt.IsZero() {
			status = fmt.Sprintf("%d resources, %d errors, %s",
				r.Stats.ResourcesCount, r.Stats.ErrorsCount, r.Stats.TotalTime.Round(time.Millisecond))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.StartedAt.Local().Format(time.DateTime), r.Origin, status)
	}
	return w.Flush()
}

func (c *HistoryCmd) entries(deps *Dependencies) error {
	if _, err := deps.Runs.FindRunByID(deps.Ctx, c.RunID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
		return err
	}

	filter := freeze.RunEntryFilter{RunID: c.RunID}
	switch c.State {
	case "":
	case freeze.StatePending, freeze.StateCrawled, freeze.StateFailed:
		filter.State = &c.State
	default:
		err := freeze.Errorf(freeze.EINVALID, "unknown state %q", c.State)
		fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
		return err
	}

	entries, err := deps.Runs.FindEntries(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
		return err
	}

	w := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	for _, e := range entries {
		detail := e.Error
		if e.State == freeze.StateCrawled {
			detail = fmt.Sprintf("%s %d B %s", e.Kind, e.Bytes, e.Checksum)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.State, e.URL, detail)
	}
	return w.Flush()
}
