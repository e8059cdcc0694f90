package mock

import (
	"context"
	"time"

	"github.com/fwojciec/schedbot"
)

var _ schedbot.Syncer = (*Syncer)(nil)

// Syncer is a mock implementation of schedbot.Syncer.
type Syncer struct {
	SyncFn func(ctx context.Context, rootURL string) (*schedbot.SyncResult, error)
}

func (s *Syncer) Sync(ctx context.Context, rootURL string) (*schedbot.SyncResult, error) {
	return s.SyncFn(ctx, rootURL)
}

var _ schedbot.Refresher = (*Refresher)(nil)

// Refresher is a mock implementation of schedbot.Refresher.
type Refresher struct {
	RefreshFn func(ctx context.Context) (*schedbot.RefreshRun, error)
}

func (r *Refresher) Refresh(ctx context.Context) (*schedbot.RefreshRun, error) {
	return r.RefreshFn(ctx)
}

var _ schedbot.Schedule = (*Schedule)(nil)

// Schedule is a mock implementation of schedbot.Schedule.
type Schedule struct {
	NextFn func(after time.Time) time.Time
}

func (s *Schedule) Next(after time.Time) time.Time {
	return s.NextFn(after)
}

var _ schedbot.RefreshRunService = (*RefreshRunService)(nil)

// RefreshRunService is a mock implementation of schedbot.RefreshRunService.
type RefreshRunService struct {
	CreateRefreshRunFn func(ctx context.Context, run *schedbot.RefreshRun) error
	FinishRefreshRunFn func(ctx context.Context, run *schedbot.RefreshRun) error
	FindRefreshRunsFn  func(ctx context.Context, filter schedbot.RefreshRunFilter) ([]*schedbot.RefreshRun, error)
}

func (s *RefreshRunService) CreateRefreshRun(ctx context.Context, run *schedbot.RefreshRun) error {
	return s.CreateRefreshRunFn(ctx, run)
}

func (s *RefreshRunService) FinishRefreshRun(ctx context.Context, run *schedbot.RefreshRun) error {
	return s.FinishRefreshRunFn(ctx, run)
}

func (s *RefreshRunService) FindRefreshRuns(ctx context.Context, filter schedbot.RefreshRunFilter) ([]*schedbot.RefreshRun, error) {
	return s.FindRefreshRunsFn(ctx, filter)
}

var _ schedbot.IndexReader = (*IndexReader)(nil)

// IndexReader is a mock implementation of schedbot.IndexReader.
type IndexReader struct {
	IndexFn func() *schedbot.Index
}

func (r *IndexReader) Index() *schedbot.Index {
	return r.IndexFn()
}
