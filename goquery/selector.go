// Package goquery provides HTML link extraction for share folder pages.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/schedbot"
)

var _ schedbot.LinkSelector = (*AnchorSelector)(nil)

// AnchorSelector extracts every anchor on a page. Folder pages of a public
// share carry no semantic navigation markup, so no region is preferred over
// another; the crawler decides which links are folders or documents.
type AnchorSelector struct{}

// NewAnchorSelector creates a new AnchorSelector.
func NewAnchorSelector() *AnchorSelector {
	return &AnchorSelector{}
}

// Name returns the selector's identifier.
func (s *AnchorSelector) Name() string {
	return "anchor"
}

// ExtractLinks parses HTML and returns every hyperlink in document order.
// Links are resolved against baseURL and deduplicated by URL; the first
// occurrence wins. Non-HTTP links (javascript:, mailto:, ...) and links back
// to the page itself are dropped. Links to other hosts are kept.
func (s *AnchorSelector) ExtractLinks(html string, baseURL string) ([]schedbot.Link, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, schedbot.Errorf(schedbot.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, schedbot.Errorf(schedbot.EINVALID, "failed to parse HTML: %v", err)
	}

	// A <base href> element changes how relative links resolve.
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			base = base.ResolveReference(ref)
		}
	}

	seen := make(map[string]bool)
	var links []schedbot.Link

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || isNonHTTPLink(href) {
			return
		}

		resolved := resolveURL(base, href)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true

		links = append(links, schedbot.Link{
			URL:  resolved,
			Text: strings.TrimSpace(sel.Text()),
		})
	})

	return links, nil
}

// resolveURL resolves a relative URL against a base URL.
// Returns empty string if the href cannot be parsed, if it resolves to a
// non-HTTP scheme, or if the resolved URL is self-referential (same as base
// URL after stripping fragment).
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}

	result := resolved.String()
	baseNoFragment := *base
	baseNoFragment.Fragment = ""
	if result == baseNoFragment.String() {
		return ""
	}
	return result
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(href)
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") ||
		strings.HasPrefix(href, "#")
}
