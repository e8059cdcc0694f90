// Package refresh keeps the schedule index current. A Service runs one
// sync, extract and index cycle at a time and publishes each new index
// atomically; a Scheduler triggers cycles on a Schedule.
package refresh

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/schedbot"
)

// RebuildResult holds the outcome of rebuilding the index from the mirror.
type RebuildResult struct {
	Index *schedbot.Index

	// Failed is the number of mirrored documents omitted because their text
	// could not be extracted.
	Failed int
}

// Rebuild extracts every mirrored document and returns a fresh index.
// A document that fails extraction is logged and omitted; it is retried on
// the next rebuild. Only a mirror listing failure or cancellation of ctx
// returns an error.
func Rebuild(ctx context.Context, mirror schedbot.Mirror, extractor schedbot.TextExtractor, logger *slog.Logger) (*RebuildResult, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	files, err := mirror.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list mirror: %w", err)
	}

	entries := make([]schedbot.IndexEntry, 0, len(files))
	var failed int
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := extractor.ExtractText(ctx, f.LocalPath)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("extraction failed", "file", f.Filename, "error", err)
			failed++
			continue
		}

		entries = append(entries, schedbot.IndexEntry{
			Key:  f.Filename,
			Text: text,
			Hash: xxhash.Sum64String(text),
		})
	}

	return &RebuildResult{
		Index:  schedbot.NewIndex(entries),
		Failed: failed,
	}, nil
}

// countChanged returns the number of entries in next that are new or whose
// text differs from prev.
func countChanged(prev, next *schedbot.Index) int {
	var changed int
	for _, key := range next.Keys() {
		n, _ := next.Entry(key)
		p, ok := prev.Entry(key)
		if !ok || p.Hash != n.Hash {
			changed++
		}
	}
	return changed
}
