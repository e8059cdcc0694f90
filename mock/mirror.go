package mock

import (
	"context"
	"io"

	"github.com/fwojciec/schedbot"
)

var _ schedbot.Mirror = (*Mirror)(nil)

// Mirror is a mock implementation of schedbot.Mirror.
type Mirror struct {
	HasFn  func(name string) bool
	SaveFn func(ctx context.Context, name string, write func(w io.Writer) error) error
	ListFn func(ctx context.Context) ([]schedbot.MirroredFile, error)
}

func (m *Mirror) Has(name string) bool {
	return m.HasFn(name)
}

func (m *Mirror) Save(ctx context.Context, name string, write func(w io.Writer) error) error {
	return m.SaveFn(ctx, name, write)
}

func (m *Mirror) List(ctx context.Context) ([]schedbot.MirroredFile, error) {
	return m.ListFn(ctx)
}
