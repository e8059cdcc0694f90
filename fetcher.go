package schedbot

import (
	"context"
	"io"
)

// Fetcher retrieves HTML pages of the remote folder tree.
// Implementations may use browser automation to handle JavaScript-rendered shares.
type Fetcher interface {
	// Fetch retrieves the page at url and returns its HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases underlying resources.
	Close() error
}

// Downloader streams a remote document into w.
type Downloader interface {
	// Download writes the body of url to w and returns the number of bytes written.
	// A non-success response is an error and nothing is written.
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}
