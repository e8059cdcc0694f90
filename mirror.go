package schedbot

import (
	"context"
	"io"
)

// MirroredFile is a document downloaded into the local mirror.
// Its presence on disk is the only record that it was downloaded.
type MirroredFile struct {
	Filename  string
	LocalPath string
}

// Mirror is the local append-only cache of downloaded documents,
// deduplicated by filename.
type Mirror interface {
	// Has reports whether a document with the given filename is already mirrored.
	Has(name string) bool

	// Save stores a new document under name. The write callback receives the
	// destination; if it fails nothing is left behind under name.
	// Returns EINVALID if name is not a plain filename.
	Save(ctx context.Context, name string, write func(w io.Writer) error) error

	// List returns every mirrored document sorted by filename.
	List(ctx context.Context) ([]MirroredFile, error)
}
