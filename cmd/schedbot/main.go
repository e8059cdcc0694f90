package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/schedbot"
	"github.com/fwojciec/schedbot/crawl"
	"github.com/fwojciec/schedbot/dialogue"
	"github.com/fwojciec/schedbot/fs"
	"github.com/fwojciec/schedbot/gocache"
	"github.com/fwojciec/schedbot/goquery"
	schedhttp "github.com/fwojciec/schedbot/http"
	"github.com/fwojciec/schedbot/pdfcpu"
	"github.com/fwojciec/schedbot/refresh"
	"github.com/fwojciec/schedbot/rod"
	schedslog "github.com/fwojciec/schedbot/slog"
	"github.com/fwojciec/schedbot/sqlite"
	"github.com/fwojciec/schedbot/telegram"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database holding the refresh journal. Nil when --db is empty.
	DB *sqlite.DB

	// Messenger overrides the Telegram transport. Set before calling Run().
	Messenger schedbot.Messenger

	// Service is the refresh service wired by Run.
	Service *refresh.Service

	closers []io.Closer
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Close releases every resource opened by Run.
func (m *Main) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	m.closers = nil
	return errors.Join(errs...)
}

// Run parses args, wires the bot and blocks until ctx is cancelled or the
// update stream ends.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg := &Config{}
	parser, err := kong.New(cfg,
		kong.Name("schedbot"),
		kong.Description("Telegram bot answering schedule lookups from a public PDF share"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		vars,
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}
	if m.Messenger == nil && cfg.Token == "" {
		fmt.Fprintln(stderr, "Hint: set SCHEDBOT_TELEGRAM_TOKEN or pass --token")
		return fmt.Errorf("telegram token required")
	}
	schedule, err := cfg.Schedule()
	if err != nil {
		return err
	}

	logger := cfg.Logger(stderr)
	defer m.Close()

	if err := m.wire(cfg, logger); err != nil {
		return err
	}

	messenger := m.Messenger
	if messenger == nil {
		tg, err := telegram.NewMessenger(cfg.Token, telegram.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("failed to connect to Telegram: %s", schedbot.ErrorMessage(err))
		}
		logger.Info("connected to telegram", "bot", tg.Username())
		messenger = tg
	}
	messenger = schedslog.NewLoggingMessenger(messenger, logger)
	m.closers = append(m.closers, messenger)

	// The first index is built before any update is answered.
	if _, err := m.Service.Refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		logger.Error("initial refresh failed", "error", err)
	}

	machine := &dialogue.Machine{
		Sessions: gocache.NewSessionStore(cfg.SessionTTL),
		Index:    m.Service,
		Runs:     m.Service.Runs,
		Logger:   logger,
	}
	scheduler := &refresh.Scheduler{
		Refresher: m.Service,
		Schedule:  schedule,
		Logger:    logger,
	}

	g, gctx := errgroup.WithContext(ctx)
	gctx, cancel := context.WithCancel(gctx)
	defer cancel()

	g.Go(func() error {
		return scheduler.Run(gctx)
	})
	g.Go(func() error {
		// A closed update stream stops the whole bot.
		defer cancel()
		return machine.Serve(gctx, messenger)
	})

	logger.Info("schedbot started", "root", cfg.RootURL, "schedule", cfg.ScheduleString())
	err = g.Wait()
	logger.Info("schedbot stopped")
	return err
}

// wire builds the refresh pipeline from cfg.
func (m *Main) wire(cfg *Config, logger *slog.Logger) error {
	mirror := fs.NewMirror(cfg.MirrorDir, cfg.DocExt)
	if err := mirror.Open(); err != nil {
		return fmt.Errorf("failed to open mirror %q: %w", cfg.MirrorDir, err)
	}

	client := schedhttp.NewFetcher(schedhttp.WithTimeout(cfg.FetchTimeout))
	m.closers = append(m.closers, client)

	var fetcher schedbot.Fetcher = client
	if cfg.Render {
		browser, err := rod.NewFetcher(rod.WithFetchTimeout(cfg.FetchTimeout), rod.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("failed to start browser (Chrome or Chromium must be installed): %w", err)
		}
		m.closers = append(m.closers, browser)
		fetcher = browser
	}

	syncer := &crawl.Syncer{
		Fetcher:      schedslog.NewLoggingFetcher(fetcher, logger),
		Downloader:   schedslog.NewLoggingDownloader(client, logger),
		LinkSelector: schedslog.NewLoggingLinkSelector(goquery.NewAnchorSelector(), logger),
		Mirror:       mirror,
		RateLimiter:  crawl.NewDomainLimiter(cfg.Rate),
		Logger:       logger,
		DocExt:       cfg.DocExt,
		ShareMarker:  cfg.ShareMarker,
		MaxFolders:   cfg.MaxFolders,
	}

	extractor := pdfcpu.NewExtractor()
	extractor.Logger = logger

	m.Service = &refresh.Service{
		Syncer:    schedslog.NewLoggingSyncer(syncer, logger),
		Mirror:    mirror,
		Extractor: schedslog.NewLoggingExtractor(extractor, logger),
		Logger:    logger,
		RootURL:   cfg.RootURL,
		Timeout:   cfg.RefreshTimeout,
	}

	if cfg.DB != "" {
		m.DB = sqlite.NewDB(cfg.DB)
		if err := m.DB.Open(); err != nil {
			return fmt.Errorf("failed to open database at %q: %w", cfg.DB, err)
		}
		m.closers = append(m.closers, m.DB)
		m.Service.Runs = sqlite.NewRefreshRunService(m.DB)
	}
	return nil
}
