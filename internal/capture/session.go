// Package capture drives a headless browser session through the render
// state machine and returns the captured PDF.
package capture

import (
	"context"

	"resume-builder/internal/domain"
)

// Viewport is the page's layout size in CSS pixels.
type Viewport struct {
	Width  int64
	Height int64
	Scale  float64
}

// A4Viewport matches an A4 sheet at 96 dpi and 1x scale.
var A4Viewport = Viewport{Width: 794, Height: 1123, Scale: 1}

// Session is one browser page context. Implementations are not required to
// be safe for concurrent use; the controller drives a session from a single
// goroutine.
type Session interface {
	OpenPage(ctx context.Context, vp Viewport) error
	// SetContent replaces the page document with html.
	SetContent(ctx context.Context, html string) error
	// Navigate seeds localStorage with storage before any page script runs,
	// then loads url.
	Navigate(ctx context.Context, url string, storage map[string]string) error
	// ReadyState reports the readiness flag: absent, pending or ready.
	ReadyState(ctx context.Context) (string, error)
	// WaitImages blocks until every image has loaded or failed and returns
	// the first failing source, if any.
	WaitImages(ctx context.Context) (string, error)
	// PrintPDF captures the document honouring its own @page geometry.
	PrintPDF(ctx context.Context) ([]byte, error)
	Close() error
}

// Launcher acquires a fresh browser session.
type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}

// Content is what the controller puts in the page.
type Content struct {
	JobID    string
	Strategy domain.InjectStrategy

	// HTML is the assembled document for InjectContent.
	HTML []byte

	// URL and Storage drive InjectRoute.
	URL     string
	Storage map[string]string
}
