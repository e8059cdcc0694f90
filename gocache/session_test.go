package gocache_test

import (
	"testing"
	"time"

	"github.com/fwojciec/schedbot"
	"github.com/fwojciec/schedbot/gocache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore(t *testing.T) {
	t.Parallel()

	t.Run("stores conversations per user", func(t *testing.T) {
		t.Parallel()

		s := gocache.NewSessionStore(time.Hour)
		s.Set(1, schedbot.Conversation{Stage: schedbot.StageGettingInfo, Kind: schedbot.QueryTeacher})
		s.Set(2, schedbot.Conversation{Stage: schedbot.StageSelectingAction})

		conv, ok := s.Get(1)
		require.True(t, ok)
		assert.Equal(t, schedbot.QueryTeacher, conv.Kind)

		conv, ok = s.Get(2)
		require.True(t, ok)
		assert.Equal(t, schedbot.StageSelectingAction, conv.Stage)
		assert.Equal(t, 2, s.Len())
	})

	t.Run("delete ends the conversation", func(t *testing.T) {
		t.Parallel()

		s := gocache.NewSessionStore(time.Hour)
		s.Set(1, schedbot.Conversation{})
		s.Delete(1)

		_, ok := s.Get(1)
		assert.False(t, ok)
	})

	t.Run("idle conversations expire", func(t *testing.T) {
		t.Parallel()

		s := gocache.NewSessionStore(50 * time.Millisecond)
		s.Set(1, schedbot.Conversation{Stage: schedbot.StageGettingInfo, Kind: schedbot.QueryDay})

		_, ok := s.Get(1)
		require.True(t, ok)

		time.Sleep(100 * time.Millisecond)

		_, ok = s.Get(1)
		assert.False(t, ok)
	})
}
