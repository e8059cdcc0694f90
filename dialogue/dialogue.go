// Package dialogue implements the lookup conversation: a user picks a query
// kind from a menu, enters a value and receives the matching schedules.
package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/schedbot"
)

// User-facing messages.
const (
	GreetingMessage      = "Привет! Я бот для расписания. Выберите действие:"
	InvalidChoiceMessage = "Неверный выбор. Попробуйте снова."
	RestartMessage       = "Произошла ошибка. Пожалуйста, начните сначала."
	CancelledMessage     = "Действие отменено."

	HelpMessage = "Команды:\n" +
		"/start - начать поиск расписания\n" +
		"/schedule_group - Расписание для группы\n" +
		"/schedule_teacher - Расписание для преподавателя\n" +
		"/schedule_day - Расписание на день\n" +
		"/status - состояние расписания\n" +
		"/cancel - отменить действие\n" +
		"/help - помощь по командам"
)

// Label returns the menu button text for kind.
func Label(kind schedbot.QueryKind) string {
	switch kind {
	case schedbot.QueryGroup:
		return "Расписание группы"
	case schedbot.QueryTeacher:
		return "Расписание преподавателя"
	case schedbot.QueryDay:
		return "Расписание на день"
	default:
		return ""
	}
}

// Prompt returns the request for a lookup value of kind.
func Prompt(kind schedbot.QueryKind) string {
	switch kind {
	case schedbot.QueryGroup:
		return "Введите номер группы:"
	case schedbot.QueryTeacher:
		return "Введите имя преподавателя:"
	case schedbot.QueryDay:
		return "Введите дату (в формате ДД.ММ.ГГГГ):"
	default:
		return ""
	}
}

// Menu is the reply keyboard offered by /start.
func Menu() [][]string {
	return [][]string{
		{Label(schedbot.QueryGroup), Label(schedbot.QueryTeacher)},
		{Label(schedbot.QueryDay)},
	}
}

// kindFromLabel maps a menu button text back to its kind.
func kindFromLabel(text string) (schedbot.QueryKind, bool) {
	for _, k := range schedbot.QueryKinds {
		if text == Label(k) {
			return k, true
		}
	}
	return 0, false
}

// shortcuts maps commands that jump straight to a value prompt.
var shortcuts = map[string]schedbot.QueryKind{
	"schedule_group":   schedbot.QueryGroup,
	"schedule_teacher": schedbot.QueryTeacher,
	"schedule_day":     schedbot.QueryDay,
}

// Machine drives one conversation per user. A user without a stored
// conversation is in the terminal state: free text is ignored until a
// command starts a new conversation.
type Machine struct {
	Sessions schedbot.SessionStore
	Index    schedbot.IndexReader

	// Runs, if set, supplies the last refresh for /status.
	Runs   schedbot.RefreshRunService
	Logger *slog.Logger
}

// Handle advances the sender's conversation with u and returns the reply to
// send. The bool result is false when u gets no reply.
func (m *Machine) Handle(ctx context.Context, u schedbot.Update) (schedbot.Reply, bool) {
	if name, args, ok := u.Command(); ok {
		return m.handleCommand(ctx, u, name, args)
	}

	conv, ok := m.Sessions.Get(u.UserID)
	if !ok {
		return schedbot.Reply{}, false
	}

	switch conv.Stage {
	case schedbot.StageSelectingAction:
		kind, ok := kindFromLabel(strings.TrimSpace(u.Text))
		if !ok {
			m.Sessions.Set(u.UserID, conv)
			return reply(u, InvalidChoiceMessage), true
		}
		m.Sessions.Set(u.UserID, schedbot.Conversation{Stage: schedbot.StageGettingInfo, Kind: kind})
		return reply(u, Prompt(kind)), true

	case schedbot.StageGettingInfo:
		m.Sessions.Delete(u.UserID)
		if !conv.Kind.Valid() {
			return reply(u, RestartMessage), true
		}
		// The value is searched exactly as typed.
		return reply(u, m.lookup(conv.Kind, u.Text)), true

	default:
		m.Sessions.Delete(u.UserID)
		return reply(u, RestartMessage), true
	}
}

func (m *Machine) handleCommand(ctx context.Context, u schedbot.Update, name, args string) (schedbot.Reply, bool) {
	switch name {
	case "start":
		m.Sessions.Set(u.UserID, schedbot.Conversation{Stage: schedbot.StageSelectingAction})
		r := reply(u, GreetingMessage)
		r.Keyboard = Menu()
		return r, true

	case "cancel":
		m.Sessions.Delete(u.UserID)
		r := reply(u, CancelledMessage)
		r.RemoveKeyboard = true
		return r, true

	case "help":
		return reply(u, HelpMessage), true

	case "status":
		return reply(u, m.status(ctx)), true
	}

	if kind, ok := shortcuts[name]; ok {
		if args != "" {
			m.Sessions.Delete(u.UserID)
			return reply(u, m.lookup(kind, args)), true
		}
		m.Sessions.Set(u.UserID, schedbot.Conversation{Stage: schedbot.StageGettingInfo, Kind: kind})
		return reply(u, Prompt(kind)), true
	}

	return schedbot.Reply{}, false
}

func (m *Machine) lookup(kind schedbot.QueryKind, value string) string {
	idx := m.Index.Index()
	matches := idx.Lookup(value)
	m.logger().Info("lookup", "kind", kind.String(), "value", value, "matches", len(matches), "documents", idx.Len())
	return schedbot.FormatLookup(kind, value, matches)
}

// status describes the current index and the most recent refresh.
func (m *Machine) status(ctx context.Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Документов в расписании: %d", m.Index.Index().Len())

	if m.Runs == nil {
		return b.String()
	}
	runs, err := m.Runs.FindRefreshRuns(ctx, schedbot.RefreshRunFilter{Limit: 1})
	if err != nil {
		m.logger().Warn("find refresh runs", "error", err)
		return b.String()
	}
	if len(runs) == 0 {
		b.WriteString("\nОбновлений ещё не было.")
		return b.String()
	}

	run := runs[0]
	fmt.Fprintf(&b, "\nПоследнее обновление: %s", run.StartedAt.Format("02.01.2006 15:04"))
	if run.FinishedAt.IsZero() {
		b.WriteString(" (выполняется)")
		return b.String()
	}
	fmt.Fprintf(&b, "\nЗагружено новых файлов: %d\nОшибок: %d\nДлительность: %s",
		run.Downloaded, run.SyncFailed+run.ExtractFailed, run.Duration().Round(time.Second))
	if run.Error != "" {
		fmt.Fprintf(&b, "\nОшибка: %s", run.Error)
	}
	return b.String()
}

func (m *Machine) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return m.Logger
}

func reply(u schedbot.Update, text string) schedbot.Reply {
	return schedbot.Reply{ChatID: u.ChatID, Text: text}
}
