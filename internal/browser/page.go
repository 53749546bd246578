// Package browser wraps page automation behind a capability interface so the
// workflows can be driven against a real Chrome session or a fake in tests.
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrNoCandidate reports that none of the candidate selectors matched a
// visible element.
var ErrNoCandidate = errors.New("no candidate selector matched a visible element")

// FrameInfo describes one embedded frame on the current page.
type FrameInfo struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Src   string `json:"src"`
}

// Page is the automation surface the workflows depend on.
//
// Candidate selectors are CSS, with two extensions borrowed from the EHR's
// markup quirks: "text=Lookup" matches an element whose trimmed text or value
// is exactly "Lookup", and "text*=Prog" matches on substring. A third form,
// "nth=1|.icon-inputcalender", addresses the Nth match of a CSS selector for
// pages with repeated widgets. Methods that
// take a candidate list try each in order and report which one matched;
// ErrNoCandidate means none did.
type Page interface {
	// Navigate loads a URL and waits for the document body.
	Navigate(ctx context.Context, url string) error
	// URL returns the current location.
	URL(ctx context.Context) (string, error)
	// Title returns the current document title.
	Title(ctx context.Context) (string, error)

	// FindAndClick clicks the first visible element matching a candidate.
	FindAndClick(ctx context.Context, candidates []string) (string, error)
	// FillField clears and fills the first visible matching input.
	FillField(ctx context.Context, candidates []string, value string) (string, error)
	// SelectOption picks a dropdown option by visible label.
	SelectOption(ctx context.Context, candidates []string, label string) (string, error)
	// TypeText types into the currently focused element.
	TypeText(ctx context.Context, text string) error
	// PressKey sends a named key ("Tab", "Escape", "Enter").
	PressKey(ctx context.Context, key string) error
	// ClickAt clicks page coordinates, used to dismiss stray menus.
	ClickAt(ctx context.Context, x, y float64) error

	// HTML returns the full document markup.
	HTML(ctx context.Context) (string, error)
	// Frames lists the embedded frames on the page.
	Frames(ctx context.Context) ([]FrameInfo, error)
	// FrameHTML returns the markup of the frame at index, or "" when the
	// frame document is not accessible.
	FrameHTML(ctx context.Context, index int) (string, error)

	// Screenshot captures the viewport to a PNG file.
	Screenshot(ctx context.Context, path string) error
	// Wait pauses for the page to settle.
	Wait(ctx context.Context, d time.Duration) error
}
