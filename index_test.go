package schedbot_test

import (
	"testing"

	"github.com/fwojciec/schedbot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIndex(t *testing.T) {
	t.Parallel()

	t.Run("orders entries by key", func(t *testing.T) {
		t.Parallel()

		idx := schedbot.NewIndex([]schedbot.IndexEntry{
			{Key: "b.pdf", Text: "B"},
			{Key: "a.pdf", Text: "A"},
			{Key: "c.pdf", Text: "C"},
		})

		assert.Equal(t, 3, idx.Len())
		assert.Equal(t, []string{"a.pdf", "b.pdf", "c.pdf"}, idx.Keys())
	})

	t.Run("keeps one entry per key", func(t *testing.T) {
		t.Parallel()

		idx := schedbot.NewIndex([]schedbot.IndexEntry{
			{Key: "a.pdf", Text: "old"},
			{Key: "a.pdf", Text: "new"},
		})

		require.Equal(t, 1, idx.Len())
		entry, ok := idx.Entry("a.pdf")
		require.True(t, ok)
		assert.Equal(t, "new", entry.Text)
	})

	t.Run("nil index behaves as empty", func(t *testing.T) {
		t.Parallel()

		var idx *schedbot.Index

		assert.Equal(t, 0, idx.Len())
		assert.Empty(t, idx.Keys())
		assert.Empty(t, idx.Lookup("101"))
		_, ok := idx.Entry("a.pdf")
		assert.False(t, ok)
	})
}

func TestIndex_Lookup(t *testing.T) {
	t.Parallel()

	idx := schedbot.NewIndex([]schedbot.IndexEntry{
		{Key: "week1.pdf", Text: "Группа 101 Иванов И.И. 01.09.2024"},
		{Key: "week2.pdf", Text: "Группа 102 Петров П.П. 08.09.2024"},
		{Key: "empty.pdf", Text: ""},
	})

	t.Run("finds any literal substring of indexed text", func(t *testing.T) {
		t.Parallel()

		for _, value := range []string{"101", "Иванов", "01.09.2024", "Группа 101 Иванов И.И. 01.09.2024", "а 101"} {
			matches := idx.Lookup(value)
			require.Len(t, matches, 1, value)
			assert.Equal(t, "week1.pdf", matches[0].Key)
		}
	})

	t.Run("returns every matching document in index order", func(t *testing.T) {
		t.Parallel()

		matches := idx.Lookup("Группа")

		require.Len(t, matches, 2)
		assert.Equal(t, "week1.pdf", matches[0].Key)
		assert.Equal(t, "week2.pdf", matches[1].Key)
	})

	t.Run("matching is case-sensitive", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, idx.Lookup("группа"))
		assert.Empty(t, idx.Lookup("иванов"))
	})

	t.Run("returns nothing on miss", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, idx.Lookup("999"))
	})
}
