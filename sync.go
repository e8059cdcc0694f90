package schedbot

import "context"

// SyncResult holds the outcome of one pass over the remote folder tree.
type SyncResult struct {
	// Folders is the number of folder pages visited, including unreachable ones.
	Folders int

	// Downloaded is the number of new documents added to the mirror.
	Downloaded int

	// Skipped is the number of documents already present in the mirror.
	Skipped int

	// Failed counts unreachable folders and failed downloads.
	Failed int
}

// Syncer mirrors every document reachable from a root folder URL.
type Syncer interface {
	// Sync walks the folder tree starting at rootURL and downloads documents
	// that are not yet mirrored. Unreachable folders and failed downloads are
	// contained and reported in the result; only cancellation of ctx or an
	// invalid rootURL return an error.
	Sync(ctx context.Context, rootURL string) (*SyncResult, error)
}
