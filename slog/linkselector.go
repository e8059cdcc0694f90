package slog

import (
	"log/slog"

	"github.com/fwojciec/schedbot"
)

// Ensure LoggingLinkSelector implements schedbot.LinkSelector.
var _ schedbot.LinkSelector = (*LoggingLinkSelector)(nil)

// LoggingLinkSelector wraps a LinkSelector with debug logging of the links
// found on each folder page.
type LoggingLinkSelector struct {
	next   schedbot.LinkSelector
	logger *slog.Logger
}

// NewLoggingLinkSelector creates a new LoggingLinkSelector.
func NewLoggingLinkSelector(next schedbot.LinkSelector, logger *slog.Logger) *LoggingLinkSelector {
	return &LoggingLinkSelector{next: next, logger: logger}
}

// ExtractLinks delegates to the wrapped selector and logs the link count.
func (s *LoggingLinkSelector) ExtractLinks(html string, baseURL string) (links []schedbot.Link, err error) {
	defer func() {
		s.logger.Debug("extract links",
			"selector", s.next.Name(),
			"url", baseURL,
			"count", len(links),
			"err", err,
		)
	}()
	return s.next.ExtractLinks(html, baseURL)
}

// Name delegates to the wrapped selector.
func (s *LoggingLinkSelector) Name() string {
	return s.next.Name()
}
