// Package crawl mirrors documents from a public share's folder tree.
// It walks folder pages breadth-first, downloads every document not yet
// present in the local mirror, and contains per-folder and per-document
// failures so one bad branch never aborts a cycle.
package crawl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/fwojciec/schedbot"
)

// Sync configuration defaults.
const (
	// DefaultDocExt is the extension that marks a link as a document.
	DefaultDocExt = ".pdf"
	// DefaultShareMarker is the path fragment that marks a link as a share folder.
	DefaultShareMarker = "/public/"
	// DefaultMaxFolders limits the number of folders visited to prevent runaway crawls.
	DefaultMaxFolders = 1000

	// frontierExpectedURLs is the expected number of folders for Bloom filter sizing.
	frontierExpectedURLs = 10000
	// frontierFalsePositiveRate is the acceptable false positive rate of the pre-check.
	frontierFalsePositiveRate = 0.01
)

var _ schedbot.Syncer = (*Syncer)(nil)

// Syncer walks a share's folder tree and mirrors its documents.
type Syncer struct {
	Fetcher      schedbot.Fetcher
	Downloader   schedbot.Downloader
	LinkSelector schedbot.LinkSelector
	Mirror       schedbot.Mirror
	RateLimiter  schedbot.DomainLimiter
	Logger       *slog.Logger

	// DocExt is matched case-insensitively against the end of a link's path.
	DocExt string
	// ShareMarker must appear in a link's path for it to be followed as a folder.
	ShareMarker string
	// MaxFolders caps the number of folder pages fetched per sync.
	MaxFolders int
}

// Sync walks the folder tree from rootURL and downloads new documents.
func (s *Syncer) Sync(ctx context.Context, rootURL string) (*schedbot.SyncResult, error) {
	root, err := url.Parse(rootURL)
	if err != nil || (root.Scheme != "http" && root.Scheme != "https") || root.Host == "" {
		return nil, schedbot.Errorf(schedbot.EINVALID, "invalid root URL %q", rootURL)
	}

	logger := s.logger()
	maxFolders := s.MaxFolders
	if maxFolders <= 0 {
		maxFolders = DefaultMaxFolders
	}

	frontier := NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
	frontier.Push(rootURL)

	var result schedbot.SyncResult
	for {
		if err := ctx.Err(); err != nil {
			return &result, err
		}

		folderURL, ok := frontier.Pop()
		if !ok {
			break
		}
		if result.Folders >= maxFolders {
			logger.Warn("folder limit reached", "limit", maxFolders, "pending", frontier.Len()+1)
			break
		}
		result.Folders++

		links, err := s.fetchFolder(ctx, folderURL)
		if err != nil {
			if ctx.Err() != nil {
				return &result, ctx.Err()
			}
			logger.Warn("folder unreachable", "url", folderURL, "error", err)
			result.Failed++
			continue
		}

		for _, link := range links {
			if err := s.handleLink(ctx, folderURL, link, frontier, &result); err != nil {
				return &result, err
			}
		}
	}

	logger.Info("sync finished",
		"folders", result.Folders,
		"downloaded", result.Downloaded,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return &result, nil
}

// fetchFolder fetches a folder page and returns its links.
func (s *Syncer) fetchFolder(ctx context.Context, folderURL string) ([]schedbot.Link, error) {
	if err := s.wait(ctx, folderURL); err != nil {
		return nil, err
	}
	html, err := s.Fetcher.Fetch(ctx, folderURL)
	if err != nil {
		return nil, err
	}
	return s.LinkSelector.ExtractLinks(html, folderURL)
}

// handleLink classifies one link of a folder page. Only context cancellation
// is returned; download failures are logged and counted.
func (s *Syncer) handleLink(ctx context.Context, folderURL string, link schedbot.Link, frontier *Frontier, result *schedbot.SyncResult) error {
	u, err := url.Parse(link.URL)
	if err != nil {
		return nil
	}

	if name, ok := s.documentName(u); ok {
		if s.Mirror.Has(name) {
			result.Skipped++
			return nil
		}
		if err := s.download(ctx, link.URL, name); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger().Warn("download failed", "url", link.URL, "file", name, "error", err)
			result.Failed++
			return nil
		}
		result.Downloaded++
		return nil
	}

	if s.isFolder(folderURL, u) {
		frontier.Push(link.URL)
	}
	return nil
}

// documentName returns the mirror filename for a document link: the final
// unescaped segment of its path.
func (s *Syncer) documentName(u *url.URL) (string, bool) {
	ext := s.DocExt
	if ext == "" {
		ext = DefaultDocExt
	}
	if !strings.HasSuffix(strings.ToLower(u.Path), strings.ToLower(ext)) {
		return "", false
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" || name == ext {
		return "", false
	}
	return name, true
}

// isFolder reports whether u is a sub-folder of the share rooted at the
// current folder's host.
func (s *Syncer) isFolder(folderURL string, u *url.URL) bool {
	marker := s.ShareMarker
	if marker == "" {
		marker = DefaultShareMarker
	}
	current, err := url.Parse(folderURL)
	if err != nil {
		return false
	}
	if !strings.EqualFold(u.Host, current.Host) {
		return false
	}
	if !strings.Contains(u.Path, marker) {
		return false
	}
	return NormalizeURL(u.String()) != NormalizeURL(folderURL)
}

func (s *Syncer) download(ctx context.Context, docURL, name string) error {
	if err := s.wait(ctx, docURL); err != nil {
		return err
	}
	return s.Mirror.Save(ctx, name, func(w io.Writer) error {
		_, err := s.Downloader.Download(ctx, docURL, w)
		return err
	})
}

func (s *Syncer) wait(ctx context.Context, rawURL string) error {
	if s.RateLimiter == nil {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse %s: %w", rawURL, err)
	}
	return s.RateLimiter.Wait(ctx, u.Host)
}

func (s *Syncer) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}
