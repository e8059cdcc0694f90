package schedbot

import (
	"context"
	"strings"
)

// Update is an inbound text message from a chat user.
type Update struct {
	ChatID int64
	UserID int64
	Text   string
}

// Command returns the bot command carried by the update and its arguments.
// "/start@schedule_bot" yields ("start", ""). Plain text yields ok=false.
func (u Update) Command() (name, args string, ok bool) {
	text := strings.TrimSpace(u.Text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	name, args, _ = strings.Cut(text[1:], " ")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	if name == "" {
		return "", "", false
	}
	return strings.ToLower(name), strings.TrimSpace(args), true
}

// Reply is an outbound message to a chat.
type Reply struct {
	ChatID int64
	Text   string

	// Keyboard, if set, offers reply buttons laid out in rows.
	Keyboard [][]string

	// RemoveKeyboard hides a previously offered keyboard.
	RemoveKeyboard bool
}

// Messenger is the chat transport.
type Messenger interface {
	// Updates returns inbound messages until ctx is cancelled.
	Updates(ctx context.Context) (<-chan Update, error)

	// Send delivers a reply.
	Send(ctx context.Context, reply Reply) error

	// Close releases transport resources.
	Close() error
}
