package refresh

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/schedbot"
	"github.com/google/uuid"
)

// DefaultTimeout bounds a whole refresh cycle.
const DefaultTimeout = 30 * time.Minute

var (
	_ schedbot.Refresher   = (*Service)(nil)
	_ schedbot.IndexReader = (*Service)(nil)
)

// Service owns the current index. Refresh runs one cycle at a time; readers
// always see either the previous index or the new one, never a partial one.
type Service struct {
	Syncer    schedbot.Syncer
	Mirror    schedbot.Mirror
	Extractor schedbot.TextExtractor

	// Runs, if set, journals every cycle.
	Runs   schedbot.RefreshRunService
	Logger *slog.Logger

	RootURL string
	Timeout time.Duration

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	mu    sync.Mutex
	index atomic.Pointer[schedbot.Index]
}

// Index returns the most recently published index. Before the first
// successful refresh it is empty.
func (s *Service) Index() *schedbot.Index {
	if idx := s.index.Load(); idx != nil {
		return idx
	}
	return schedbot.NewIndex(nil)
}

// Refresh syncs the mirror from RootURL, rebuilds the index and publishes it.
// Returns ECONFLICT without waiting if another refresh is in progress.
// A sync that fails for any reason other than cancellation still rebuilds
// from what is already mirrored; the failure is recorded on the run.
func (s *Service) Refresh(ctx context.Context) (*schedbot.RefreshRun, error) {
	if !s.mu.TryLock() {
		return nil, schedbot.Errorf(schedbot.ECONFLICT, "refresh already running")
	}
	defer s.mu.Unlock()

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger := s.logger()
	run := &schedbot.RefreshRun{
		ID:        uuid.NewString(),
		StartedAt: s.now(),
	}
	if s.Runs != nil {
		if err := s.Runs.CreateRefreshRun(ctx, run); err != nil {
			logger.Warn("journal refresh start", "error", err)
		}
	}

	err := s.cycle(ctx, run, logger)
	if err != nil {
		run.Error = err.Error()
	}
	run.FinishedAt = s.now()

	if s.Runs != nil {
		// The cycle context may have expired; the outcome is still recorded.
		if jerr := s.Runs.FinishRefreshRun(context.WithoutCancel(ctx), run); jerr != nil {
			logger.Warn("journal refresh finish", "id", run.ID, "error", jerr)
		}
	}

	if err != nil {
		logger.Error("refresh failed", "id", run.ID, "duration", run.Duration(), "error", err)
		return run, err
	}
	logger.Info("refresh finished",
		"id", run.ID,
		"duration", run.Duration(),
		"downloaded", run.Downloaded,
		"documents", run.Documents,
		"changed", run.Changed,
		"failed", run.SyncFailed+run.ExtractFailed,
	)
	return run, nil
}

// cycle performs sync, rebuild and swap, filling in run's counters.
func (s *Service) cycle(ctx context.Context, run *schedbot.RefreshRun, logger *slog.Logger) error {
	res, err := s.Syncer.Sync(ctx, s.RootURL)
	if res != nil {
		run.Folders = res.Folders
		run.Downloaded = res.Downloaded
		run.Skipped = res.Skipped
		run.SyncFailed = res.Failed
	}
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		logger.Warn("sync failed, rebuilding from mirror", "error", err)
		run.Error = err.Error()
	}

	rebuilt, err := Rebuild(ctx, s.Mirror, s.Extractor, logger)
	if err != nil {
		return err
	}

	prev := s.index.Swap(rebuilt.Index)
	run.Documents = rebuilt.Index.Len()
	run.ExtractFailed = rebuilt.Failed
	run.Changed = countChanged(prev, rebuilt.Index)
	return nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}
