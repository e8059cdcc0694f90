package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/schedbot"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer

	// Syncer is nil in offline mode.
	Syncer    schedbot.Syncer
	Mirror    schedbot.Mirror
	Extractor schedbot.TextExtractor
	Logger    *slog.Logger
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	URL         string        `arg:"" optional:"" default:"https://cloud.mail.ru/public/QikY/MNEL7hD2y" help:"Public share folder to mirror"`
	MirrorDir   string        `short:"d" name:"mirror-dir" default:"pdf_files" help:"Directory holding downloaded documents"`
	DocExt      string        `name:"doc-ext" default:"${doc_ext}" help:"Extension of documents to mirror"`
	ShareMarker string        `name:"share-marker" default:"${share_marker}" help:"Path fragment identifying share folders"`
	MaxFolders  int           `name:"max-folders" default:"1000" help:"Maximum folders visited"`
	Timeout     time.Duration `short:"t" default:"30s" help:"Timeout per folder page or download"`
	Rate        float64       `default:"2" help:"Requests per second per host (0 disables limiting)"`
	Render      bool          `help:"Render folder pages in headless Chrome"`
	Offline     bool          `help:"Skip the sync and index the existing mirror"`
	Lookup      string        `short:"l" help:"Value to look up after indexing"`
	Kind        string        `short:"k" default:"group" enum:"group,teacher,day" help:"How the lookup is framed (group, teacher, day)"`
	LogLevel    string        `name:"log-level" default:"warn" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)"`
}

// Logger returns a text logger writing to w at the configured level.
func (c *CLI) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// FetchCmd mirrors the share once and reports the result.
type FetchCmd struct {
	URL     string
	Offline bool
	Lookup  string
	Kind    schedbot.QueryKind
}
