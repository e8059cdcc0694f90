// Package telegram implements the chat transport over the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/schedbot"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MaxMessageLength is the longest text Telegram accepts in one message.
const MaxMessageLength = 4096

// DefaultPollTimeout is the long-polling timeout for getUpdates.
const DefaultPollTimeout = 60 * time.Second

var _ schedbot.Messenger = (*Messenger)(nil)

// Messenger receives text messages by long polling and sends replies.
type Messenger struct {
	bot         *tgbotapi.BotAPI
	pollTimeout time.Duration
	stopOnce    sync.Once
}

type config struct {
	endpoint    string
	client      *http.Client
	pollTimeout time.Duration
	logger      *slog.Logger
}

// Option configures a Messenger.
type Option func(*config)

// WithAPIEndpoint sets the Bot API endpoint format string, which takes the
// token and the method name, e.g. "https://api.telegram.org/bot%s/%s".
func WithAPIEndpoint(endpoint string) Option {
	return func(c *config) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient sets the HTTP client used for Bot API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) {
		c.client = client
	}
}

// WithLogger routes the Bot API library's log output, such as polling
// retries, to logger. The library logger is process-wide.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithPollTimeout sets the long-polling timeout.
func WithPollTimeout(d time.Duration) Option {
	return func(c *config) {
		c.pollTimeout = d
	}
}

// NewMessenger authenticates token against the Bot API.
func NewMessenger(token string, opts ...Option) (*Messenger, error) {
	if token == "" {
		return nil, schedbot.Errorf(schedbot.EINVALID, "telegram token required")
	}

	cfg := config{
		endpoint:    tgbotapi.APIEndpoint,
		pollTimeout: DefaultPollTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger != nil {
		_ = tgbotapi.SetLogger(botLogger{logger: cfg.logger.With("component", "telegram")})
	}
	if cfg.client == nil {
		// Long polls must outlive the server-side timeout.
		cfg.client = &http.Client{Timeout: cfg.pollTimeout + 30*time.Second}
	}

	bot, err := tgbotapi.NewBotAPIWithClient(token, cfg.endpoint, cfg.client)
	if err != nil {
		return nil, schedbot.Errorf(schedbot.EUNAVAILABLE, "telegram: %v", err)
	}

	return &Messenger{
		bot:         bot,
		pollTimeout: cfg.pollTimeout,
	}, nil
}

// Username returns the bot's username as reported by getMe.
func (m *Messenger) Username() string {
	return m.bot.Self.UserName
}

// Updates starts long polling. The returned channel carries text messages
// and is closed after ctx is cancelled or Close is called.
func (m *Messenger) Updates(ctx context.Context) (<-chan schedbot.Update, error) {
	uc := tgbotapi.NewUpdate(0)
	uc.Timeout = int(m.pollTimeout / time.Second)
	in := m.bot.GetUpdatesChan(uc)

	out := make(chan schedbot.Update)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				m.stop()
				return
			case tu, ok := <-in:
				if !ok {
					return
				}
				u, ok := toUpdate(tu)
				if !ok {
					continue
				}
				select {
				case out <- u:
				case <-ctx.Done():
					m.stop()
					return
				}
			}
		}
	}()
	return out, nil
}

// toUpdate converts a Bot API update. Only text messages are kept.
func toUpdate(tu tgbotapi.Update) (schedbot.Update, bool) {
	msg := tu.Message
	if msg == nil || msg.Chat == nil || msg.Text == "" {
		return schedbot.Update{}, false
	}
	u := schedbot.Update{
		ChatID: msg.Chat.ID,
		UserID: msg.Chat.ID,
		Text:   msg.Text,
	}
	if msg.From != nil {
		u.UserID = msg.From.ID
	}
	return u, true
}

// Send delivers a reply, splitting text longer than MaxMessageLength into
// consecutive messages. The keyboard markup is attached to the last one.
func (m *Messenger) Send(ctx context.Context, reply schedbot.Reply) error {
	parts := SplitText(reply.Text, MaxMessageLength)
	for i, part := range parts {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(reply.ChatID, part)
		if i == len(parts)-1 {
			msg.ReplyMarkup = markup(reply)
		}
		if _, err := m.bot.Send(msg); err != nil {
			return schedbot.Errorf(schedbot.EUNAVAILABLE, "telegram send to chat %d: %v", reply.ChatID, err)
		}
	}
	return nil
}

func markup(reply schedbot.Reply) any {
	if len(reply.Keyboard) > 0 {
		rows := make([][]tgbotapi.KeyboardButton, 0, len(reply.Keyboard))
		for _, row := range reply.Keyboard {
			buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
			for _, label := range row {
				buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
			}
			rows = append(rows, tgbotapi.NewKeyboardButtonRow(buttons...))
		}
		kb := tgbotapi.NewReplyKeyboard(rows...)
		kb.OneTimeKeyboard = true
		kb.ResizeKeyboard = true
		return kb
	}
	if reply.RemoveKeyboard {
		return tgbotapi.NewRemoveKeyboard(false)
	}
	return nil
}

// Close stops long polling.
func (m *Messenger) Close() error {
	m.stop()
	return nil
}

func (m *Messenger) stop() {
	m.stopOnce.Do(m.bot.StopReceivingUpdates)
}

// SplitText splits text into chunks of at most limit runes, breaking after
// a newline where possible. An empty text yields no chunks.
func SplitText(text string, limit int) []string {
	if text == "" {
		return nil
	}
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		n := utf8.RuneCountInString(line)
		if curLen+n <= limit {
			cur.WriteString(line)
			curLen += n
			continue
		}
		flush()
		for n > limit {
			head, rest := splitRunes(line, limit)
			chunks = append(chunks, head)
			line = rest
			n -= limit
		}
		cur.WriteString(line)
		curLen = n
	}
	flush()

	for i, c := range chunks {
		if trimmed := strings.TrimRight(c, "\n"); trimmed != "" {
			chunks[i] = trimmed
		}
	}
	return chunks
}

// splitRunes splits s after its first n runes.
func splitRunes(s string, n int) (string, string) {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], s[pos:]
		}
		i++
	}
	return s, ""
}

// botLogger routes the Bot API library's own log lines to slog.
type botLogger struct {
	logger *slog.Logger
}

func (l botLogger) Println(v ...any) {
	l.logger.Warn(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (l botLogger) Printf(format string, v ...any) {
	l.logger.Warn(fmt.Sprintf(format, v...))
}
