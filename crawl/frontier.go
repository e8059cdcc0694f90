package crawl

import (
	"net/url"
	"strings"
	"sync"

	"github.com/fwojciec/schedbot"
	"github.com/fwojciec/schedbot/bloom"
)

// Compile-time interface verification.
var _ schedbot.URLFrontier = (*Frontier)(nil)

// Frontier is an in-memory FIFO worklist of folder URLs with visited-set
// deduplication. The Bloom filter answers most "not seen" checks; a positive
// answer is confirmed against an exact set so a false positive never drops a
// folder. It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu    sync.Mutex
	bloom *bloom.Filter
	seen  map[string]struct{}
	queue []string
}

// NewFrontier creates a new Frontier sized for n expected URLs
// with the given false positive rate for the Bloom pre-check.
func NewFrontier(n uint, fpRate float64) *Frontier {
	return &Frontier{
		bloom: bloom.NewFilter(n, fpRate),
		seen:  make(map[string]struct{}),
	}
}

// Push adds a URL to the worklist.
// Returns false if the URL has already been seen. URLs are compared after
// NormalizeURL but queued as given, so Pop returns the URL that was pushed
// first and relative links on its page still resolve against it.
func (f *Frontier) Push(rawURL string) bool {
	key := NormalizeURL(rawURL)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bloom.TestAndAdd(key) {
		if _, ok := f.seen[key]; ok {
			return false
		}
	}
	f.seen[key] = struct{}{}
	f.queue = append(f.queue, rawURL)
	return true
}

// Pop returns the oldest queued URL.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return "", false
	}
	next := f.queue[0]
	f.queue[0] = ""
	f.queue = f.queue[1:]
	return next, true
}

// Len returns the number of URLs in the queue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Seen returns true if the URL has been visited or queued.
func (f *Frontier) Seen(rawURL string) bool {
	key := NormalizeURL(rawURL)

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.bloom.Test(key) {
		return false
	}
	_, ok := f.seen[key]
	return ok
}

// NormalizeURL returns the visited-set key for a folder URL: the fragment is
// stripped, the host is lower-cased and a trailing slash is trimmed from the
// path. Unparseable input is returned with only the fragment stripped.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		if idx := strings.Index(rawURL, "#"); idx != -1 {
			return rawURL[:idx]
		}
		return rawURL
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.Host = strings.ToLower(u.Host)
	u.Scheme = strings.ToLower(u.Scheme)
	if len(u.Path) > 1 {
		u.Path = strings.TrimRight(u.Path, "/")
		if u.RawPath != "" {
			u.RawPath = strings.TrimRight(u.RawPath, "/")
		}
	}
	return u.String()
}
