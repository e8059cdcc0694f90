package refresh

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/schedbot"
)

// Scheduler runs refresh cycles when a Schedule says they are due.
type Scheduler struct {
	Refresher schedbot.Refresher
	Schedule  schedbot.Schedule
	Logger    *slog.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Run blocks until ctx is cancelled or the schedule has no further
// activation. A failed cycle is logged and the next one still runs.
func (s *Scheduler) Run(ctx context.Context) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := s.Now
	if now == nil {
		now = time.Now
	}

	for {
		current := now()
		next := s.Schedule.Next(current)
		if next.IsZero() {
			logger.Info("refresh schedule exhausted")
			return nil
		}
		logger.Debug("next refresh scheduled", "at", next)

		timer := time.NewTimer(next.Sub(current))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		if _, err := s.Refresher.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if schedbot.ErrorCode(err) == schedbot.ECONFLICT {
				logger.Warn("refresh skipped, previous cycle still running")
				continue
			}
			logger.Error("scheduled refresh failed", "error", err)
		}
	}
}
