package slog

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/schedbot"
)

// Ensure LoggingMessenger implements schedbot.Messenger.
var _ schedbot.Messenger = (*LoggingMessenger)(nil)

// LoggingMessenger wraps a Messenger and logs inbound and outbound messages.
// Message text is not logged, only its length.
type LoggingMessenger struct {
	next   schedbot.Messenger
	logger *slog.Logger
}

// NewLoggingMessenger creates a new LoggingMessenger.
func NewLoggingMessenger(next schedbot.Messenger, logger *slog.Logger) *LoggingMessenger {
	return &LoggingMessenger{next: next, logger: logger}
}

// Updates delegates to the wrapped messenger and logs each update as it is
// received.
func (m *LoggingMessenger) Updates(ctx context.Context) (<-chan schedbot.Update, error) {
	in, err := m.next.Updates(ctx)
	if err != nil {
		m.logger.Error("updates", "err", err)
		return nil, err
	}

	out := make(chan schedbot.Update)
	go func() {
		defer close(out)
		for {
			var u schedbot.Update
			select {
			case <-ctx.Done():
				return
			case next, ok := <-in:
				if !ok {
					return
				}
				u = next
			}
			if name, _, ok := u.Command(); ok {
				m.logger.Info("update", "chat", u.ChatID, "user", u.UserID, "command", name)
			} else {
				m.logger.Info("update", "chat", u.ChatID, "user", u.UserID, "chars", utf8.RuneCountInString(u.Text))
			}
			select {
			case out <- u:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Send delegates to the wrapped messenger and logs the reply.
func (m *LoggingMessenger) Send(ctx context.Context, reply schedbot.Reply) (err error) {
	defer func(begin time.Time) {
		m.logger.Info("send",
			"chat", reply.ChatID,
			"chars", utf8.RuneCountInString(reply.Text),
			"keyboard", len(reply.Keyboard) > 0,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return m.next.Send(ctx, reply)
}

// Close delegates to the wrapped messenger.
func (m *LoggingMessenger) Close() error {
	return m.next.Close()
}
