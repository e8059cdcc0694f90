package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/schedbot"
	"github.com/fwojciec/schedbot/crawl"
	"github.com/fwojciec/schedbot/fs"
	"github.com/fwojciec/schedbot/goquery"
	schedhttp "github.com/fwojciec/schedbot/http"
	"github.com/fwojciec/schedbot/pdfcpu"
	"github.com/fwojciec/schedbot/refresh"
	"github.com/fwojciec/schedbot/rod"
	schedslog "github.com/fwojciec/schedbot/slog"
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
type Main struct{}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("schedfetch"),
		kong.Description("Mirror a schedule share once, index it and optionally run a lookup"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Vars{
			"doc_ext":      crawl.DefaultDocExt,
			"share_marker": crawl.DefaultShareMarker,
		},
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

	kind, err := schedbot.ParseQueryKind(cli.Kind)
	if err != nil {
		return err
	}

	logger := cli.Logger(stderr)

	mirror := fs.NewMirror(cli.MirrorDir, cli.DocExt)
	if err := mirror.Open(); err != nil {
		return fmt.Errorf("failed to open mirror %q: %w", cli.MirrorDir, err)
	}

	extractor := pdfcpu.NewExtractor()
	extractor.Logger = logger

	deps := &Dependencies{
		Ctx:       ctx,
		Stdout:    stdout,
		Stderr:    stderr,
		Mirror:    mirror,
		Extractor: schedslog.NewLoggingExtractor(extractor, logger),
		Logger:    logger,
	}

	if !cli.Offline {
		client := schedhttp.NewFetcher(schedhttp.WithTimeout(cli.Timeout))
		defer client.Close()

		var fetcher schedbot.Fetcher = client
		if cli.Render {
			browser, err := rod.NewFetcher(rod.WithFetchTimeout(cli.Timeout), rod.WithLogger(logger))
			if err != nil {
				fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
				return fmt.Errorf("failed to start browser: %w", err)
			}
			defer browser.Close()
			fetcher = browser
		}

		deps.Syncer = schedslog.NewLoggingSyncer(&crawl.Syncer{
			Fetcher:      schedslog.NewLoggingFetcher(fetcher, logger),
			Downloader:   schedslog.NewLoggingDownloader(client, logger),
			LinkSelector: goquery.NewAnchorSelector(),
			Mirror:       mirror,
			RateLimiter:  crawl.NewDomainLimiter(cli.Rate),
			Logger:       logger,
			DocExt:       cli.DocExt,
			ShareMarker:  cli.ShareMarker,
			MaxFolders:   cli.MaxFolders,
		}, logger)
	}

	cmd := &FetchCmd{
		URL:     cli.URL,
		Offline: cli.Offline,
		Lookup:  cli.Lookup,
		Kind:    kind,
	}
	return cmd.Run(deps)
}

// newService builds a refresh service that publishes into memory only.
func newService(deps *Dependencies, rootURL string) *refresh.Service {
	return &refresh.Service{
		Syncer:    deps.Syncer,
		Mirror:    deps.Mirror,
		Extractor: deps.Extractor,
		Logger:    deps.Logger,
		RootURL:   rootURL,
	}
}
