package mock

import (
	"context"

	"github.com/fwojciec/schedbot"
)

var _ schedbot.Messenger = (*Messenger)(nil)

// Messenger is a mock implementation of schedbot.Messenger.
type Messenger struct {
	UpdatesFn func(ctx context.Context) (<-chan schedbot.Update, error)
	SendFn    func(ctx context.Context, reply schedbot.Reply) error
	CloseFn   func() error
}

func (m *Messenger) Updates(ctx context.Context) (<-chan schedbot.Update, error) {
	return m.UpdatesFn(ctx)
}

func (m *Messenger) Send(ctx context.Context, reply schedbot.Reply) error {
	return m.SendFn(ctx, reply)
}

func (m *Messenger) Close() error {
	return m.CloseFn()
}

var _ schedbot.SessionStore = (*SessionStore)(nil)

// SessionStore is a mock implementation of schedbot.SessionStore.
type SessionStore struct {
	GetFn    func(userID int64) (schedbot.Conversation, bool)
	SetFn    func(userID int64, conv schedbot.Conversation)
	DeleteFn func(userID int64)
}

func (s *SessionStore) Get(userID int64) (schedbot.Conversation, bool) {
	return s.GetFn(userID)
}

func (s *SessionStore) Set(userID int64, conv schedbot.Conversation) {
	s.SetFn(userID, conv)
}

func (s *SessionStore) Delete(userID int64) {
	s.DeleteFn(userID)
}
