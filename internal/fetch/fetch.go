// Package fetch retrieves web pages over HTTP with an optional headless
// browser fallback for JavaScript-rendered sites. It centralizes the
// fetching and HTML-to-text logic used by ingestion.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; AdSmith/1.0)"

// DefaultMaxBodySize caps how much of a response body is read.
const DefaultMaxBodySize = int64(10 << 20) // 10 MB

// DefaultBrowserWait is how long the headless browser waits for
// JavaScript to render content after the page is ready.
const DefaultBrowserWait = 3 * time.Second

// Result holds the raw content from a URL fetch.
type Result struct {
	URL         string
	FinalURL    string // after redirects
	StatusCode  int
	ContentType string
	Body        string
	UsedBrowser bool
}

// Error represents an error during URL fetching.
type Error struct {
	URL        string
	StatusCode int
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout         time.Duration
	UserAgent       string
	MaxBodySize     int64
	UseBrowser      bool // enable the headless browser fallback
	BrowserWaitTime time.Duration
	Headers         map[string]string
	Verbose         bool
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:         DefaultTimeout,
		UserAgent:       DefaultUserAgent,
		MaxBodySize:     DefaultMaxBodySize,
		UseBrowser:      true,
		BrowserWaitTime: DefaultBrowserWait,
	}
}

// URL retrieves a page with a plain HTTP GET.
// On non-200 responses the partial Result is returned alongside the
// error so callers can inspect the status code.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{
			URL:     urlStr,
			Message: "invalid URL",
			Cause:   err,
		}
	}

	client := &http.Client{
		Timeout: opts.Timeout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to create request",
			Cause:   err,
		}
	}

	req.Header.Set("User-Agent", opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "HTTP request failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	maxBody := opts.MaxBodySize
	if maxBody <= 0 {
		maxBody = DefaultMaxBodySize
	}
	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return nil, &Error{
			URL:        urlStr,
			StatusCode: resp.StatusCode,
			Message:    "failed to read response body",
			Cause:      err,
		}
	}
	if int64(len(bodyBytes)) > maxBody {
		return nil, &Error{
			URL:        urlStr,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("response body exceeds %d bytes", maxBody),
		}
	}

	result := &Result{
		URL:         urlStr,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        string(bodyBytes),
	}

	if resp.StatusCode != http.StatusOK {
		return result, &Error{
			URL:        urlStr,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
	}

	if !isHTMLContentType(result.ContentType) {
		return result, &Error{
			URL:        urlStr,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unsupported content type %q", result.ContentType),
		}
	}

	return result, nil
}

// Page retrieves a URL, falling back to a headless browser when the
// plain response looks blocked or JavaScript-rendered. The fallback is
// best effort: if the browser fails, the plain-fetch outcome is kept.
func Page(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	result, err := URL(ctx, urlStr, opts)
	if err != nil && result == nil {
		return nil, err
	}

	if !opts.UseBrowser || !ShouldUseBrowser(result) {
		return result, err
	}

	html, browserErr := WithBrowser(ctx, urlStr, opts)
	if browserErr != nil {
		return result, err
	}

	return &Result{
		URL:         urlStr,
		FinalURL:    result.FinalURL,
		StatusCode:  http.StatusOK,
		ContentType: "text/html",
		Body:        html,
		UsedBrowser: true,
	}, nil
}

// isHTMLContentType reports whether a Content-Type header names an HTML
// document. An empty header passes: plenty of servers omit it.
func isHTMLContentType(contentType string) bool {
	mediaType := contentType
	if idx := strings.IndexByte(mediaType, ';'); idx >= 0 {
		mediaType = mediaType[:idx]
	}
	switch strings.ToLower(strings.TrimSpace(mediaType)) {
	case "", "text/html", "application/xhtml+xml":
		return true
	}
	return false
}

// ExtractMainText parses HTML and returns the main body text.
// It removes noise elements using noiseSelectors, then finds content using contentSelectors.
// If no content selectors match, it falls back to the body element.
func ExtractMainText(html string, contentSelectors []string, noiseSelectors ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	// Remove common unwanted elements (nav, chrome, scripts, overlays)
	doc.Find("nav, footer, header, aside, script, style, noscript, iframe, .ad, .advertisement, .ads, .sidebar, .cookie-banner, .popup, .modal").Remove()

	// Remove platform-specific noise elements
	if len(noiseSelectors) > 0 {
		noiseSelector := strings.Join(noiseSelectors, ", ")
		if noiseSelector != "" {
			doc.Find(noiseSelector).Remove()
		}
	}

	// Try to find main content using provided selectors
	var mainContent *goquery.Selection
	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			mainContent = selection.First()
			break
		}
	}

	// Fallback to body if no selector matched
	if mainContent == nil {
		mainContent = doc.Find("body")
	}

	text := mainContent.Text()
	text = cleanWhitespace(text)

	return text, nil
}

// DefaultContentSelectors returns standard selectors for general web content.
func DefaultContentSelectors() []string {
	return []string{
		"main",
		"article",
		".content",
		"#content",
		".main-content",
		"#main-content",
	}
}

// cleanWhitespace normalizes whitespace in text.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
