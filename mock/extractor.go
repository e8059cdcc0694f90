package mock

import (
	"context"

	"github.com/fwojciec/schedbot"
)

var _ schedbot.TextExtractor = (*TextExtractor)(nil)

// TextExtractor is a mock implementation of schedbot.TextExtractor.
type TextExtractor struct {
	ExtractTextFn func(ctx context.Context, path string) (string, error)
}

func (e *TextExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	return e.ExtractTextFn(ctx, path)
}
