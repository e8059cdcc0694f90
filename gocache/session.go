// Package gocache provides an in-memory conversation store with idle expiry.
package gocache

import (
	"strconv"
	"time"

	"github.com/fwojciec/schedbot"
	"github.com/patrickmn/go-cache"
)

// DefaultSessionTTL is how long an untouched conversation is kept.
const DefaultSessionTTL = time.Hour

var _ schedbot.SessionStore = (*SessionStore)(nil)

// SessionStore keeps one conversation per user. Every Set restarts the
// conversation's TTL; an expired conversation reads as absent.
type SessionStore struct {
	cache *cache.Cache
}

// NewSessionStore creates a SessionStore whose entries expire after ttl.
// A non-positive ttl uses DefaultSessionTTL.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	cleanup := ttl / 6
	if cleanup < time.Second {
		cleanup = time.Second
	}
	return &SessionStore{
		cache: cache.New(ttl, cleanup),
	}
}

func (s *SessionStore) Get(userID int64) (schedbot.Conversation, bool) {
	v, ok := s.cache.Get(key(userID))
	if !ok {
		return schedbot.Conversation{}, false
	}
	conv, ok := v.(schedbot.Conversation)
	return conv, ok
}

func (s *SessionStore) Set(userID int64, conv schedbot.Conversation) {
	s.cache.SetDefault(key(userID), conv)
}

func (s *SessionStore) Delete(userID int64) {
	s.cache.Delete(key(userID))
}

// Len returns the number of stored conversations, including expired ones
// not yet purged.
func (s *SessionStore) Len() int {
	return s.cache.ItemCount()
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
