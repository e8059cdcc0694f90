package schedbot

import "context"

// URLFrontier is the folder worklist of a sync with visited-set deduplication.
type URLFrontier interface {
	// Push adds a URL to the worklist.
	// Returns false if the URL has already been seen.
	Push(url string) bool

	// Pop returns the next URL to visit.
	// Returns false if the worklist is empty.
	Pop() (string, bool)

	// Len returns the number of URLs waiting to be visited.
	Len() int

	// Seen returns true if the URL has been visited or queued.
	Seen(url string) bool
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
