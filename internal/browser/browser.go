// Package browser opens links in the user's default web browser.
package browser

import (
	"fmt"
	"io"
	"net/url"

	pkgbrowser "github.com/pkg/browser"
)

func init() {
	// xdg-open and friends chatter on stdout, which would tear the TUI.
	pkgbrowser.Stdout = io.Discard
	pkgbrowser.Stderr = io.Discard
}

// Launcher hands a URL to the system browser. Tests replace it.
type Launcher func(url string) error

// Opener opens http(s) URLs through a Launcher.
type Opener struct {
	Launch Launcher
}

// Default is the opener backed by the platform's URL handler.
var Default = Opener{Launch: pkgbrowser.OpenURL}

// Open opens url with the default opener.
func Open(url string) error {
	return Default.Open(url)
}

// Open opens raw in a new browser tab. Only absolute http and https URLs
// are handed to the launcher.
func (o Opener) Open(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("opening %s: not an http(s) URL", raw)
	}
	if err := o.Launch(u.String()); err != nil {
		return fmt.Errorf("opening %s: %w", raw, err)
	}
	return nil
}
