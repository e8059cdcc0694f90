package schedbot

import (
	"context"
	"time"
)

// RefreshRun records one full sync, extract and index cycle.
type RefreshRun struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`

	// Sync counters.
	Folders    int `json:"folders"`
	Downloaded int `json:"downloaded"`
	Skipped    int `json:"skipped"`
	SyncFailed int `json:"syncFailed"`

	// Index counters.
	Documents     int `json:"documents"`
	ExtractFailed int `json:"extractFailed"`
	Changed       int `json:"changed"`

	// Error is set when the cycle ended early.
	Error string `json:"error"`
}

// Validate returns an error if the run contains invalid fields.
func (r *RefreshRun) Validate() error {
	if r.StartedAt.IsZero() {
		return Errorf(EINVALID, "refresh run start time required")
	}
	return nil
}

// Duration returns how long the run took, or zero if it has not finished.
func (r *RefreshRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Refresher runs a refresh cycle.
type Refresher interface {
	// Refresh syncs the mirror, rebuilds the index from it and swaps the new
	// index in. Returns ECONFLICT if a refresh is already in progress.
	Refresh(ctx context.Context) (*RefreshRun, error)
}

// Schedule decides when the next refresh is due.
type Schedule interface {
	// Next returns the first activation time strictly after the given time.
	// A zero time means there is no further activation.
	Next(after time.Time) time.Time
}

// RefreshRunService represents a journal of refresh cycles.
type RefreshRunService interface {
	// CreateRefreshRun records the start of a run and assigns its ID.
	CreateRefreshRun(ctx context.Context, run *RefreshRun) error

	// FinishRefreshRun stores the final counters of a run.
	// Returns ENOTFOUND if the run does not exist.
	FinishRefreshRun(ctx context.Context, run *RefreshRun) error

	// FindRefreshRuns retrieves runs, newest first.
	FindRefreshRuns(ctx context.Context, filter RefreshRunFilter) ([]*RefreshRun, error)
}

// RefreshRunFilter represents a filter for FindRefreshRuns.
type RefreshRunFilter struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
