package main

import (
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/schedbot"
	"github.com/fwojciec/schedbot/cronexpr"
	"github.com/fwojciec/schedbot/crawl"
	"github.com/fwojciec/schedbot/refresh"
)

// DefaultRootURL is the public share holding the published schedules.
const DefaultRootURL = "https://cloud.mail.ru/public/QikY/MNEL7hD2y"

// Config defines the command-line interface structure for Kong.
// Every flag can also be set through its environment variable.
type Config struct {
	Token       string `name:"token" env:"SCHEDBOT_TELEGRAM_TOKEN" help:"Telegram bot token"`
	RootURL     string `name:"root-url" env:"SCHEDBOT_ROOT_URL" default:"${root_url}" help:"Public share folder to mirror"`
	MirrorDir   string `name:"mirror-dir" env:"SCHEDBOT_MIRROR_DIR" default:"pdf_files" help:"Directory holding downloaded documents"`
	DocExt      string `name:"doc-ext" env:"SCHEDBOT_DOC_EXT" default:"${doc_ext}" help:"Extension of documents to mirror"`
	ShareMarker string `name:"share-marker" env:"SCHEDBOT_SHARE_MARKER" default:"${share_marker}" help:"Path fragment identifying share folders"`
	MaxFolders  int    `name:"max-folders" env:"SCHEDBOT_MAX_FOLDERS" default:"${max_folders}" help:"Maximum folders visited per sync"`

	RefreshInterval time.Duration `name:"refresh-interval" env:"SCHEDBOT_REFRESH_INTERVAL" default:"24h" help:"Time between refreshes"`
	RefreshCron     string        `name:"refresh-cron" env:"SCHEDBOT_REFRESH_CRON" help:"Cron expression for refreshes, overrides --refresh-interval"`
	RefreshTimeout  time.Duration `name:"refresh-timeout" env:"SCHEDBOT_REFRESH_TIMEOUT" default:"30m" help:"Upper bound on a refresh cycle"`

	FetchTimeout time.Duration `name:"fetch-timeout" env:"SCHEDBOT_FETCH_TIMEOUT" default:"30s" help:"Timeout per folder page or download"`
	Rate         float64       `name:"rate" env:"SCHEDBOT_RATE" default:"2" help:"Requests per second per host (0 disables limiting)"`
	Render       bool          `name:"render" env:"SCHEDBOT_RENDER" help:"Render folder pages in headless Chrome"`

	DB         string        `name:"db" env:"SCHEDBOT_DB" default:"schedbot.db" help:"Refresh journal database (empty disables)"`
	SessionTTL time.Duration `name:"session-ttl" env:"SCHEDBOT_SESSION_TTL" default:"1h" help:"Idle time before a conversation is forgotten"`
	LogLevel   string        `name:"log-level" env:"SCHEDBOT_LOG_LEVEL" default:"info" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)"`
}

// Schedule returns the refresh schedule selected by the flags.
func (c *Config) Schedule() (schedbot.Schedule, error) {
	if c.RefreshCron != "" {
		return cronexpr.Parse(c.RefreshCron)
	}
	if c.RefreshInterval <= 0 {
		return nil, schedbot.Errorf(schedbot.EINVALID, "refresh interval must be positive, got %s", c.RefreshInterval)
	}
	return refresh.Every(c.RefreshInterval), nil
}

// ScheduleString describes the refresh schedule for logs.
func (c *Config) ScheduleString() string {
	if c.RefreshCron != "" {
		return "cron " + c.RefreshCron
	}
	return "every " + c.RefreshInterval.String()
}

// Logger returns a text logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// vars are interpolated into Config defaults.
var vars = kong.Vars{
	"root_url":     DefaultRootURL,
	"doc_ext":      crawl.DefaultDocExt,
	"share_marker": crawl.DefaultShareMarker,
	"max_folders":  strconv.Itoa(crawl.DefaultMaxFolders),
}
