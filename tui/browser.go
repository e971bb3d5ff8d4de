package tui

import (
	"fmt"
	"io"
	"net/url"

	"github.com/pkg/browser"
)

func init() {
	// the terminal belongs to the viewer
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

// LinkOpener opens an outbound link outside the viewer
type LinkOpener func(link string) error

// OpenInBrowser hands an http(s) link to the system browser.
// Nothing is passed along except the URL itself.
func OpenInBrowser(link string) error {
	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("invalid link %q: %w", link, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open %q: unsupported scheme", link)
	}
	return browser.OpenURL(u.String())
}
