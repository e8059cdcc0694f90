//go:build integration

package rod_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fwojciec/schedbot/goquery"
	"github.com/fwojciec/schedbot/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFetcher_Integration_PublicShare renders a live share folder. Set
// SCHEDBOT_TEST_SHARE_URL to a reachable public folder to run it.
func TestFetcher_Integration_PublicShare(t *testing.T) {
	t.Parallel()

	shareURL := os.Getenv("SCHEDBOT_TEST_SHARE_URL")
	if shareURL == "" {
		t.Skip("SCHEDBOT_TEST_SHARE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	fetcher, err := rod.NewFetcher()
	require.NoError(t, err)
	defer fetcher.Close()

	html, err := fetcher.Fetch(ctx, shareURL)
	require.NoError(t, err)
	assert.Contains(t, html, "</body>")

	links, err := goquery.NewAnchorSelector().ExtractLinks(html, shareURL)
	require.NoError(t, err)
	assert.NotEmpty(t, links, "expected the rendered folder to contain links")

	t.Logf("Rendered %d bytes with %d links from %s", len(html), len(links), shareURL)
}
