// Package rod renders share folder pages in a headless Chrome browser for
// shares whose listings are built client-side.
package rod

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fwojciec/schedbot"
)

// DefaultFetchTimeout bounds a single page render.
const DefaultFetchTimeout = 30 * time.Second

// DefaultSettleTime is how long the DOM must stay unchanged before the page
// is considered rendered.
const DefaultSettleTime = 500 * time.Millisecond

// Ensure Fetcher implements schedbot.Fetcher at compile time.
var _ schedbot.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager    *BrowserManager
	timeout    time.Duration
	settleTime time.Duration
	maxRenders int
	logger     *slog.Logger
	closed     atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the per-page render timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithSettleTime sets how long the DOM must be stable before reading it.
// Zero disables the stability wait.
func WithSettleTime(d time.Duration) Option {
	return func(f *Fetcher) {
		f.settleTime = d
	}
}

// WithRecycleAfter sets the number of folder renders after which the browser
// is restarted.
func WithRecycleAfter(n int) Option {
	return func(f *Fetcher) {
		f.maxRenders = n
	}
}

// WithLogger sets the logger that reports browser restarts.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:    DefaultFetchTimeout,
		settleTime: DefaultSettleTime,
		maxRenders: DefaultMaxRenders,
	}
	for _, opt := range opts {
		opt(f)
	}

	manager, err := NewBrowserManager(WithMaxRenders(f.maxRenders), WithManagerLogger(f.logger))
	if err != nil {
		return nil, schedbot.Errorf(schedbot.EUNAVAILABLE, "starting browser: %v", err)
	}
	f.manager = manager
	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML, including the
// content of open shadow roots.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", schedbot.Errorf(schedbot.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	page, release, err := f.manager.Page()
	if err != nil {
		return "", err
	}
	defer release()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", contextErr(ctx, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", contextErr(ctx, err)
	}
	if f.settleTime > 0 {
		if err := page.WaitDOMStable(f.settleTime, 0); err != nil {
			return "", contextErr(ctx, err)
		}
	}

	res, err := page.Eval(serializeScript)
	if err != nil {
		return "", contextErr(ctx, err)
	}
	return res.Value.Str(), nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}

// contextErr prefers the context error so callers can tell a timeout from a
// browser failure.
func contextErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// serializeScript returns the document markup with open shadow roots
// inlined. Folder listings on some shares are rendered inside web
// components, so plain outerHTML would miss their links.
const serializeScript = `() => {
	const root = document.documentElement;
	if (typeof root.getHTML === 'function') {
		const shadowRoots = [];
		const walk = (node) => {
			for (const el of node.querySelectorAll('*')) {
				if (el.shadowRoot) {
					shadowRoots.push(el.shadowRoot);
					walk(el.shadowRoot);
				}
			}
		};
		walk(document);
		return '<!DOCTYPE html><html>' + root.getHTML({ serializableShadowRoots: true, shadowRoots }) + '</html>';
	}
	return '<!DOCTYPE html>' + root.outerHTML;
}`
