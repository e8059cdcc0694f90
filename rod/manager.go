package rod

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/fwojciec/schedbot"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultMaxRenders is the number of folder renders a browser serves before
// it is replaced. A refresh cycle renders each share folder once, so with a
// share of a few dozen folders Chrome is restarted every few cycles.
const DefaultMaxRenders = 150

// BrowserManager hands out browser tabs and replaces the browser once it has
// served maxRenders of them. Replacement waits until no tab is open, so a
// render in progress is never cut short.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	mu         sync.Mutex
	browser    *rod.Browser
	launcher   *launcher.Launcher
	renders    int
	open       int
	maxRenders int
	logger     *slog.Logger
	closed     bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxRenders sets how many tabs a browser serves before it is replaced.
// Values below 1 keep the default.
func WithMaxRenders(n int) ManagerOption {
	return func(bm *BrowserManager) {
		if n > 0 {
			bm.maxRenders = n
		}
	}
}

// WithManagerLogger sets the logger that reports browser restarts.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(bm *BrowserManager) {
		if logger != nil {
			bm.logger = logger
		}
	}
}

// NewBrowserManager launches a headless Chrome browser.
// Close must be called when the BrowserManager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{
		maxRenders: DefaultMaxRenders,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(bm)
	}

	browser, lnchr, err := launch()
	if err != nil {
		return nil, err
	}
	bm.browser, bm.launcher = browser, lnchr
	return bm, nil
}

// Page opens a new tab. The returned release func closes the tab and must be
// called exactly once.
func (bm *BrowserManager) Page() (*rod.Page, func(), error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil, nil, schedbot.Errorf(schedbot.EINVALID, "browser manager is closed")
	}
	if bm.renders >= bm.maxRenders && bm.open == 0 {
		bm.restart()
	}

	page, err := bm.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, nil, fmt.Errorf("opening tab: %w", err)
	}
	bm.renders++
	bm.open++

	var once sync.Once
	release := func() {
		once.Do(func() {
			_ = page.Close()
			bm.mu.Lock()
			bm.open--
			bm.mu.Unlock()
		})
	}
	return page, release, nil
}

// Renders returns the number of tabs served by the current browser.
func (bm *BrowserManager) Renders() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.renders
}

// Close shuts the browser down. Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil
	}
	bm.closed = true

	err := shutdown(bm.browser, bm.launcher)
	bm.browser, bm.launcher = nil, nil
	return err
}

// LauncherPID returns the process ID of the browser launcher, or 0 once the
// manager is closed.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}

// restart replaces the browser. If the new one fails to start the old one
// stays in service and the next Page tries again.
// Must be called with mu held.
func (bm *BrowserManager) restart() {
	browser, lnchr, err := launch()
	if err != nil {
		bm.logger.Warn("browser restart failed", "renders", bm.renders, "error", err)
		return
	}
	if err := shutdown(bm.browser, bm.launcher); err != nil {
		bm.logger.Debug("closing old browser", "error", err)
	}
	bm.logger.Debug("browser restarted", "renders", bm.renders)
	bm.browser, bm.launcher = browser, lnchr
	bm.renders = 0
}

// launch starts a browser. The flags keep timers and rendering running in a
// headless container without a display or a large /dev/shm.
func launch() (*rod.Browser, *launcher.Launcher, error) {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(true)

	u, err := lnchr.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return nil, nil, fmt.Errorf("connecting to browser: %w", err)
	}
	return browser, lnchr, nil
}

func shutdown(browser *rod.Browser, lnchr *launcher.Launcher) error {
	var err error
	if browser != nil {
		err = browser.Close()
	}
	if lnchr != nil {
		lnchr.Kill()
	}
	return err
}
