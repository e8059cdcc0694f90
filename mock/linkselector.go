package mock

import "github.com/fwojciec/schedbot"

var _ schedbot.LinkSelector = (*LinkSelector)(nil)

// LinkSelector is a mock implementation of schedbot.LinkSelector.
type LinkSelector struct {
	ExtractLinksFn func(html string, baseURL string) ([]schedbot.Link, error)
	NameFn         func() string
}

func (s *LinkSelector) ExtractLinks(html string, baseURL string) ([]schedbot.Link, error) {
	return s.ExtractLinksFn(html, baseURL)
}

func (s *LinkSelector) Name() string {
	return s.NameFn()
}
