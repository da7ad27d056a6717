package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/freeze"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ freeze.RunService = (*RunService)(nil)

// RunService implements freeze.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// timeFormat is fixed width so stored timestamps sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = `id, origin, output_dir, resources_count, errors_count, total_ms, started_at, finished_at`

// CreateRun creates a new run.
func (s *RunService) CreateRun(ctx context.Context, run *freeze.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	run.ID = uuid.New().String()
	run.StartedAt = time.Now().UTC()
	run.Stats.StartTime = run.StartedAt

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, origin, output_dir, started_at)
		VALUES (?, ?, ?, ?)
	`, run.ID, run.Origin, run.OutputDir, run.StartedAt.Format(timeFormat))

	return err
}

// FinishRun stores final statistics for a run.
func (s *RunService) FinishRun(ctx context.Context, id string, stats freeze.CrawlStats) error {
	finishedAt := stats.EndTime.UTC()
	if stats.EndTime.IsZero() {
		finishedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET resources_count = ?, errors_count = ?, total_ms = ?, finished_at = ?
		WHERE id = ?
	`, stats.ResourcesCount, stats.ErrorsCount, stats.TotalTime.Milliseconds(),
		finishedAt.Format(timeFormat), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return freeze.Errorf(freeze.ENOTFOUND, "run not found")
	}
	return nil
}

// RecordEntries stores frontier entries for a run in one transaction. An
// entry for a URL already recorded in the run replaces the earlier one.
func (s *RunService) RecordEntries(ctx context.Context, runID string, entries []*freeze.RunEntry) error {
	if _, err := s.FindRunByID(ctx, runID); err != nil {
		return err
	}
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO run_entries (run_id, url, state, kind, checksum, bytes, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		e.RunID = runID
		if _, err := stmt.ExecContext(ctx, runID, e.URL, e.State, e.Kind, e.Checksum, e.Bytes, e.Error); err != nil {
			return fmt.Errorf("failed to record %s: %w", e.URL, err)
		}
	}

	return tx.Commit()
}

// FindRunByID retrieves a run by ID.
func (s *RunService) FindRunByID(ctx context.Context, id string) (*freeze.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, freeze.Errorf(freeze.ENOTFOUND, "run not found")
	}
	return run, err
}

// FindRuns retrieves runs, most recent first.
func (s *RunService) FindRuns(ctx context.Context, filter freeze.RunFilter) ([]*freeze.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT ` + runColumns + ` FROM runs WHERE 1=1`)

	if filter.Origin != nil {
		query.WriteString(" AND origin = ?")
		args = append(args, *filter.Origin)
	}

	query.WriteString(" ORDER BY started_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*freeze.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FindEntries retrieves entries of a run in recording order.
func (s *RunService) FindEntries(ctx context.Context, filter freeze.RunEntryFilter) ([]*freeze.RunEntry, error) {
	if filter.RunID == "" {
		return nil, freeze.Errorf(freeze.EINVALID, "run ID required")
	}

	var query strings.Builder
	args := []any{filter.RunID}

	query.WriteString(`
		SELECT run_id, url, state, kind, checksum, bytes, error
		FROM run_entries
		WHERE run_id = ?`)

	if filter.State != nil {
		query.WriteString(" AND state = ?")
		args = append(args, *filter.State)
	}

	query.WriteString(" ORDER BY rowid")

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*freeze.RunEntry
	for rows.Next() {
		var e freeze.RunEntry
		if err := rows.Scan(&e.RunID, &e.URL, &e.State, &e.Kind, &e.Checksum, &e.Bytes, &e.Error); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*freeze.Run, error) {
	var run freeze.Run
	var totalMS int64
	var startedAt, finishedAt string

	if err := row.Scan(&run.ID, &run.Origin, &run.OutputDir,
		&run.Stats.ResourcesCount, &run.Stats.ErrorsCount, &totalMS,
		&startedAt, &finishedAt); err != nil {
		return nil, err
	}

	var err error
	run.StartedAt, err = parseRFC3339(startedAt, "started_at")
	if err != nil {
		return nil, err
	}
	if finishedAt != "" {
		run.FinishedAt, err = parseRFC3339(finishedAt, "finished_at")
		if err != nil {
			return nil, err
		}
	}

	run.Stats.StartTime = run.StartedAt
	run.Stats.EndTime = run.FinishedAt
	run.Stats.TotalTime = time.Duration(totalMS) * time.Millisecond
	return &run, nil
}
