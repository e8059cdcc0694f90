package telegram_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/schedbot"
	"github.com/fwojciec/schedbot/telegram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okUser = `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Schedule","username":"schedule_bot"}}`

// botAPI is a minimal fake of the Telegram Bot API.
type botAPI struct {
	*httptest.Server

	mu       sync.Mutex
	sent     []url.Values
	sendFail bool
	getMe    string
}

func newBotAPI(t *testing.T) *botAPI {
	t.Helper()

	api := &botAPI{getMe: okUser}
	api.Server = httptest.NewServer(http.HandlerFunc(api.handle))
	t.Cleanup(api.Close)
	return api
}

func (a *botAPI) handle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")

	a.mu.Lock()
	defer a.mu.Unlock()

	switch path.Base(r.URL.Path) {
	case "getMe":
		fmt.Fprint(w, a.getMe)
	case "getUpdates":
		offset, _ := strconv.Atoi(r.PostForm.Get("offset"))
		if offset <= 5 {
			fmt.Fprint(w, `{"ok":true,"result":[
				{"update_id":4,"edited_message":{"message_id":1,"date":0,"chat":{"id":100,"type":"private"},"text":"edited"}},
				{"update_id":5,"message":{"message_id":2,"date":0,"chat":{"id":100,"type":"private"},"from":{"id":7,"is_bot":false,"first_name":"Anna"},"text":"/start"}}
			]}`)
			return
		}
		time.Sleep(10 * time.Millisecond)
		fmt.Fprint(w, `{"ok":true,"result":[]}`)
	case "sendMessage":
		if a.sendFail {
			fmt.Fprint(w, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
			return
		}
		a.sent = append(a.sent, r.PostForm)
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":3,"date":0,"chat":{"id":100,"type":"private"}}}`)
	default:
		http.NotFound(w, r)
	}
}

func (a *botAPI) failSends() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sendFail = true
}

func (a *botAPI) rejectToken() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.getMe = `{"ok":false,"error_code":401,"description":"Unauthorized"}`
}

func (a *botAPI) sentMessages() []url.Values {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]url.Values(nil), a.sent...)
}

func newMessenger(t *testing.T, api *botAPI) *telegram.Messenger {
	t.Helper()

	m, err := telegram.NewMessenger("TOKEN",
		telegram.WithAPIEndpoint(api.URL+"/bot%s/%s"),
		telegram.WithHTTPClient(api.Client()),
		telegram.WithPollTimeout(time.Second),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestNewMessenger(t *testing.T) {
	t.Parallel()

	t.Run("authenticates bot", func(t *testing.T) {
		t.Parallel()

		m := newMessenger(t, newBotAPI(t))

		assert.Equal(t, "schedule_bot", m.Username())
	})

	t.Run("requires token", func(t *testing.T) {
		t.Parallel()

		_, err := telegram.NewMessenger("")

		assert.Equal(t, schedbot.EINVALID, schedbot.ErrorCode(err))
	})

	t.Run("rejected token is unavailable", func(t *testing.T) {
		t.Parallel()

		api := newBotAPI(t)
		api.rejectToken()

		_, err := telegram.NewMessenger("BAD",
			telegram.WithAPIEndpoint(api.URL+"/bot%s/%s"),
			telegram.WithHTTPClient(api.Client()),
		)

		assert.Equal(t, schedbot.EUNAVAILABLE, schedbot.ErrorCode(err))
	})
}

func TestMessenger_Updates(t *testing.T) {
	t.Parallel()

	api := newBotAPI(t)
	m := newMessenger(t, api)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := m.Updates(ctx)
	require.NoError(t, err)

	select {
	case u := <-updates:
		assert.Equal(t, schedbot.Update{ChatID: 100, UserID: 7, Text: "/start"}, u)
	case <-time.After(5 * time.Second):
		t.Fatal("no update received")
	}

	cancel()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-updates:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("updates channel not closed after cancel")
		}
	}
}

func TestMessenger_Send(t *testing.T) {
	t.Parallel()

	t.Run("sends keyboard", func(t *testing.T) {
		t.Parallel()

		api := newBotAPI(t)
		m := newMessenger(t, api)

		err := m.Send(context.Background(), schedbot.Reply{
			ChatID:   100,
			Text:     "Выберите действие:",
			Keyboard: [][]string{{"Расписание группы", "Расписание преподавателя"}, {"Расписание на день"}},
		})

		require.NoError(t, err)
		sent := api.sentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "100", sent[0].Get("chat_id"))
		assert.Equal(t, "Выберите действие:", sent[0].Get("text"))
		markup := sent[0].Get("reply_markup")
		assert.Contains(t, markup, `"one_time_keyboard":true`)
		assert.Contains(t, markup, `"resize_keyboard":true`)
		assert.Contains(t, markup, "Расписание на день")
	})

	t.Run("removes keyboard", func(t *testing.T) {
		t.Parallel()

		api := newBotAPI(t)
		m := newMessenger(t, api)

		require.NoError(t, m.Send(context.Background(), schedbot.Reply{ChatID: 100, Text: "Действие отменено.", RemoveKeyboard: true}))

		sent := api.sentMessages()
		require.Len(t, sent, 1)
		assert.Contains(t, sent[0].Get("reply_markup"), `"remove_keyboard":true`)
	})

	t.Run("plain text has no markup", func(t *testing.T) {
		t.Parallel()

		api := newBotAPI(t)
		m := newMessenger(t, api)

		require.NoError(t, m.Send(context.Background(), schedbot.Reply{ChatID: 100, Text: "Введите номер группы:"}))

		sent := api.sentMessages()
		require.Len(t, sent, 1)
		assert.Empty(t, sent[0].Get("reply_markup"))
	})

	t.Run("splits long text", func(t *testing.T) {
		t.Parallel()

		api := newBotAPI(t)
		m := newMessenger(t, api)
		line := strings.Repeat("я", 99) + "\n"
		text := strings.Repeat(line, 50) // 5000 runes

		require.NoError(t, m.Send(context.Background(), schedbot.Reply{ChatID: 100, Text: text, RemoveKeyboard: true}))

		sent := api.sentMessages()
		require.Len(t, sent, 2)
		assert.Empty(t, sent[0].Get("reply_markup"))
		assert.NotEmpty(t, sent[1].Get("reply_markup"))
		assert.Equal(t, strings.TrimRight(text, "\n"), sent[0].Get("text")+"\n"+sent[1].Get("text"))
	})

	t.Run("api error is unavailable", func(t *testing.T) {
		t.Parallel()

		api := newBotAPI(t)
		api.failSends()
		m := newMessenger(t, api)

		err := m.Send(context.Background(), schedbot.Reply{ChatID: 100, Text: "x"})

		assert.Equal(t, schedbot.EUNAVAILABLE, schedbot.ErrorCode(err))
	})
}

func TestSplitText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{"empty", "", 10, nil},
		{"fits", "short", 10, []string{"short"}},
		{"breaks on lines", "aaaa\nbbbb\ncccc", 10, []string{"aaaa\nbbbb", "cccc"}},
		{"hard splits long line", "aaaa\nbbbb\ncccccccccccccc", 10, []string{"aaaa\nbbbb", "cccccccccc", "cccc"}},
		{"counts runes", "ааааа\nббббб", 6, []string{"ааааа", "ббббб"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, telegram.SplitText(tt.text, tt.limit))
		})
	}
}
