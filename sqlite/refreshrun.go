package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/schedbot"
	"github.com/google/uuid"
	"github.com/ncruces/go-sqlite3"
)

// Compile-time interface verification.
var _ schedbot.RefreshRunService = (*RefreshRunService)(nil)

// RefreshRunService implements schedbot.RefreshRunService using SQLite.
// It stores run metadata only; index content is never persisted.
type RefreshRunService struct {
	db *DB
}

// NewRefreshRunService creates a new RefreshRunService.
func NewRefreshRunService(db *DB) *RefreshRunService {
	return &RefreshRunService{db: db}
}

// CreateRefreshRun records the start of a run. An ID is generated if the run
// has none.
func (s *RefreshRunService) CreateRefreshRun(ctx context.Context, run *schedbot.RefreshRun) error {
	if err := run.Validate(); err != nil {
		return err
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_runs (id, started_at, finished_at, folders, downloaded, skipped, sync_failed, documents, extract_failed, changed, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, append([]any{run.ID}, runValues(run)...)...)
	if isConstraintErr(err) {
		return schedbot.Errorf(schedbot.ECONFLICT, "refresh run %s already exists", run.ID)
	}
	return err
}

// FinishRefreshRun stores the final counters of a run.
func (s *RefreshRunService) FinishRefreshRun(ctx context.Context, run *schedbot.RefreshRun) error {
	if err := run.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE refresh_runs
		SET started_at = ?, finished_at = ?, folders = ?, downloaded = ?, skipped = ?, sync_failed = ?,
			documents = ?, extract_failed = ?, changed = ?, error = ?
		WHERE id = ?
	`, append(runValues(run), run.ID)...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return schedbot.Errorf(schedbot.ENOTFOUND, "refresh run not found")
	}
	return nil
}

// FindRefreshRuns retrieves runs, newest first.
func (s *RefreshRunService) FindRefreshRuns(ctx context.Context, filter schedbot.RefreshRunFilter) ([]*schedbot.RefreshRun, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT id, started_at, finished_at, folders, downloaded, skipped, sync_failed,
		documents, extract_failed, changed, error FROM refresh_runs ORDER BY started_at DESC, rowid DESC`)
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*schedbot.RefreshRun
	for rows.Next() {
		run, err := scanRefreshRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// runValues returns the columns after id in insert order.
func runValues(run *schedbot.RefreshRun) []any {
	var finishedAt string
	if !run.FinishedAt.IsZero() {
		finishedAt = run.FinishedAt.UTC().Format(time.RFC3339)
	}
	return []any{
		run.StartedAt.UTC().Format(time.RFC3339),
		finishedAt,
		run.Folders,
		run.Downloaded,
		run.Skipped,
		run.SyncFailed,
		run.Documents,
		run.ExtractFailed,
		run.Changed,
		run.Error,
	}
}

func scanRefreshRun(rows *sql.Rows) (*schedbot.RefreshRun, error) {
	var run schedbot.RefreshRun
	var startedAt, finishedAt string

	if err := rows.Scan(&run.ID, &startedAt, &finishedAt, &run.Folders, &run.Downloaded, &run.Skipped,
		&run.SyncFailed, &run.Documents, &run.ExtractFailed, &run.Changed, &run.Error); err != nil {
		return nil, err
	}

	var err error
	if run.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
		return nil, err
	}
	if finishedAt != "" {
		if run.FinishedAt, err = parseRFC3339(finishedAt, "finished_at"); err != nil {
			return nil, err
		}
	}
	return &run, nil
}

// isConstraintErr reports whether err is a SQLite constraint violation.
func isConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, sqlite3.CONSTRAINT) || strings.Contains(err.Error(), "constraint failed")
}
