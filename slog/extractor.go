package slog

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fwojciec/schedbot"
)

// Ensure LoggingExtractor implements schedbot.TextExtractor.
var _ schedbot.TextExtractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps a TextExtractor with debug logging.
type LoggingExtractor struct {
	next   schedbot.TextExtractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next schedbot.TextExtractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// ExtractText delegates to the wrapped extractor and logs the result size.
func (e *LoggingExtractor) ExtractText(ctx context.Context, path string) (text string, err error) {
	defer func(begin time.Time) {
		e.logger.Debug("extract text",
			"file", filepath.Base(path),
			"chars", len([]rune(text)),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.ExtractText(ctx, path)
}
