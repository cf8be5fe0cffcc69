// Package fetch - browser.go provides headless browser rendering for
// JavaScript-heavy sites that return little or no content over plain HTTP.
package fetch

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// MinContentLength is the minimum extracted text length to consider an
// HTTP fetch successful. Shorter content suggests a JavaScript-rendered
// page that needs browser rendering.
const MinContentLength = 500

// ShouldUseBrowser reports whether a plain-HTTP result warrants a
// headless browser re-fetch: the server blocked us (403/429), or the
// page came back but its visible text is too short to be a real page.
func ShouldUseBrowser(result *Result) bool {
	if result == nil {
		return false
	}
	if result.StatusCode == http.StatusForbidden || result.StatusCode == http.StatusTooManyRequests {
		return true
	}
	// Other failures (404, 5xx) won't be fixed by rendering JavaScript.
	if result.StatusCode != http.StatusOK {
		return false
	}
	text, err := ExtractMainText(result.Body, DefaultContentSelectors())
	if err != nil {
		return true
	}
	return len(strings.TrimSpace(text)) < MinContentLength
}

// WithBrowser renders a page in a headless browser and returns the rendered HTML.
// Requires Chrome/Chromium to be installed on the system.
func WithBrowser(ctx context.Context, url string, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Verbose {
		log.Printf("[BROWSER] Starting headless browser for: %s", url)
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	settle := opts.BrowserWaitTime
	if settle <= 0 {
		settle = DefaultBrowserWait
	}

	var html string

	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		// Let client-side rendering settle before reading the DOM
		chromedp.Sleep(settle),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Dismiss cookie banners if one is in the way - don't fail if not found
			_ = chromedp.Click(`button[id*="accept"], button[class*="accept"]`, chromedp.NodeVisible).Do(ctx)
			return nil
		}),
		chromedp.Sleep(1*time.Second),
		chromedp.OuterHTML("html", &html),
	)

	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	if opts.Verbose {
		log.Printf("[BROWSER] Rendered HTML: %d bytes", len(html))
	}

	return html, nil
}
