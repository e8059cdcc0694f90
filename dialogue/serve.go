package dialogue

import (
	"context"
	"fmt"

	"github.com/fwojciec/schedbot"
)

// Serve feeds every update from messenger through Handle and sends the
// replies. It returns nil when ctx is cancelled or the update stream ends.
// A failed send is logged and does not stop the loop.
func (m *Machine) Serve(ctx context.Context, messenger schedbot.Messenger) error {
	updates, err := messenger.Updates(ctx)
	if err != nil {
		return fmt.Errorf("receive updates: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			r, ok := m.Handle(ctx, u)
			if !ok {
				continue
			}
			if err := messenger.Send(ctx, r); err != nil {
				m.logger().Error("send reply", "chat", r.ChatID, "error", err)
			}
		}
	}
}
