package schedbot

import "context"

// TextExtractor converts a mirrored document into plain text.
type TextExtractor interface {
	// ExtractText returns the text of every page of the document at path,
	// concatenated in page order. Pages that yield no text contribute nothing.
	// A document that cannot be opened or parsed returns an error.
	ExtractText(ctx context.Context, path string) (string, error)
}
