package schedbot

// Link is a hyperlink discovered on a folder page.
type Link struct {
	// URL is absolute, resolved against the page it was found on.
	URL  string
	Text string
}

// LinkSelector extracts links from HTML.
type LinkSelector interface {
	// ExtractLinks parses HTML and returns the links it contains in document order.
	// The baseURL is used to resolve relative URLs.
	ExtractLinks(html string, baseURL string) ([]Link, error)

	// Name returns the selector's identifier.
	Name() string
}
