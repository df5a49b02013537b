// Package snapshot renders a built artifact in headless Chromium and writes
// a PNG screenshot, used to eyeball a bundle without deploying it.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
)

// Defaults for the artifact viewport.
const (
	DefaultWidth      = 1280
	DefaultHeight     = 900
	DefaultTimeoutSec = 30
)

// Options defines parameters for a Chromium-based screenshot capture.
type Options struct {
	// ArtifactPath is the built HTML document to render.
	ArtifactPath string

	// OutputPath is where the PNG screenshot will be written.
	OutputPath string

	// Width and Height are the viewport dimensions in pixels. If zero,
	// DefaultWidth / DefaultHeight are used.
	Width  int
	Height int

	// Timeout bounds the entire capture operation. If zero, a sane default
	// (DefaultTimeoutSec) is used.
	Timeout time.Duration
}

// Capture loads the artifact via a file:// URL, waits for the app container
// to become visible (the artifact's last inline script reveals it once all
// consumer scripts have evaluated), and screenshots the page.
func Capture(parentCtx context.Context, opts Options) error {
	if opts.ArtifactPath == "" {
		return fmt.Errorf("snapshot: ArtifactPath is required")
	}
	if opts.OutputPath == "" {
		return fmt.Errorf("snapshot: OutputPath is required")
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}

	abs, err := filepath.Abs(opts.ArtifactPath)
	if err != nil {
		return fmt.Errorf("snapshot: resolve artifact path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("snapshot: artifact: %w", err)
	}
	url := "file://" + abs

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(url),
		// The #app container starts hidden and is revealed by the final
		// inline script, so its visibility implies the scripts ran.
		chromedp.WaitVisible(`#app`, chromedp.ByQuery),
		// Small extra delay to allow final paints.
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("snapshot: chromedp run failed: %w", err)
	}

	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("snapshot: failed to write PNG: %w", err)
	}

	return nil
}
