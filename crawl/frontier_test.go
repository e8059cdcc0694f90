package crawl_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/fwojciec/schedbot/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontier_Push_rejects_duplicate_URLs(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(1000, 0.01)

	assert.True(t, f.Push("https://cloud.example.com/public/QikY/sem1"), "first push should succeed")
	assert.False(t, f.Push("https://cloud.example.com/public/QikY/sem1"), "duplicate URL should be rejected")
}

func TestFrontier_Push_treats_normalized_variants_as_duplicates(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(1000, 0.01)

	require.True(t, f.Push("https://cloud.example.com/public/QikY/sem1"))

	assert.False(t, f.Push("https://cloud.example.com/public/QikY/sem1/"), "trailing slash")
	assert.False(t, f.Push("https://cloud.example.com/public/QikY/sem1#files"), "fragment")
	assert.False(t, f.Push("https://CLOUD.example.com/public/QikY/sem1"), "host case")
	assert.True(t, f.Push("https://cloud.example.com/public/qiky/sem1"), "path case is significant")
}

func TestFrontier_Pop_returns_URLs_in_insertion_order(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(1000, 0.01)
	f.Push("https://example.com/public/a")
	f.Push("https://example.com/public/b")
	f.Push("https://example.com/public/c")

	for _, want := range []string{"a", "b", "c"} {
		got, ok := f.Pop()
		require.True(t, ok)
		assert.Equal(t, "https://example.com/public/"+want, got)
	}

	_, ok := f.Pop()
	assert.False(t, ok, "pop on empty frontier should return false")
}

func TestFrontier_Pop_returns_URLs_as_pushed(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(1000, 0.01)
	require.True(t, f.Push("https://cloud.example.com/public/root/"))
	require.False(t, f.Push("https://cloud.example.com/public/root"))

	got, ok := f.Pop()

	require.True(t, ok)
	assert.Equal(t, "https://cloud.example.com/public/root/", got, "trailing slash must survive for link resolution")
}

func TestFrontier_Len_tracks_queue_size(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(1000, 0.01)
	assert.Equal(t, 0, f.Len(), "new frontier should be empty")

	f.Push("https://example.com/public/a")
	f.Push("https://example.com/public/b")
	assert.Equal(t, 2, f.Len())

	f.Pop()
	assert.Equal(t, 1, f.Len())
}

func TestFrontier_Seen_survives_pop(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(1000, 0.01)
	assert.False(t, f.Seen("https://example.com/public/a"))

	f.Push("https://example.com/public/a")
	f.Pop()

	assert.True(t, f.Seen("https://example.com/public/a/"))
	assert.False(t, f.Push("https://example.com/public/a"), "visited URL must not be queued again")
}

func TestFrontier_never_drops_distinct_URLs(t *testing.T) {
	t.Parallel()

	// A tiny filter with a high false positive rate forces the exact set to
	// arbitrate most positive answers.
	f := crawl.NewFrontier(4, 0.5)

	const n = 500
	for i := range n {
		require.True(t, f.Push(fmt.Sprintf("https://example.com/public/%d", i)))
	}
	assert.Equal(t, n, f.Len())
}

func TestFrontier_concurrent_push(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(1000, 0.01)

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Push(fmt.Sprintf("https://example.com/public/%d", i%50))
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, f.Len())
}

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"strips fragment", "https://example.com/public/a#x", "https://example.com/public/a"},
		{"trims trailing slash", "https://example.com/public/a/", "https://example.com/public/a"},
		{"lowercases host", "https://Example.COM/public/A", "https://example.com/public/A"},
		{"keeps root slash", "https://example.com/", "https://example.com/"},
		{"keeps query", "https://example.com/public/a/?p=1", "https://example.com/public/a?p=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, crawl.NormalizeURL(tt.in))
		})
	}
}
