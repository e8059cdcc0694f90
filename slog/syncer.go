package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/schedbot"
)

// Ensure LoggingSyncer implements schedbot.Syncer.
var _ schedbot.Syncer = (*LoggingSyncer)(nil)

// LoggingSyncer wraps a Syncer with logging.
type LoggingSyncer struct {
	next   schedbot.Syncer
	logger *slog.Logger
}

// NewLoggingSyncer creates a new LoggingSyncer.
func NewLoggingSyncer(next schedbot.Syncer, logger *slog.Logger) *LoggingSyncer {
	return &LoggingSyncer{next: next, logger: logger}
}

// Sync delegates to the wrapped syncer and logs the outcome.
func (s *LoggingSyncer) Sync(ctx context.Context, rootURL string) (result *schedbot.SyncResult, err error) {
	defer func(begin time.Time) {
		var r schedbot.SyncResult
		if result != nil {
			r = *result
		}
		s.logger.Info("sync",
			"url", rootURL,
			"folders", r.Folders,
			"downloaded", r.Downloaded,
			"skipped", r.Skipped,
			"failed", r.Failed,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Sync(ctx, rootURL)
}
