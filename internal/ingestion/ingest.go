package ingestion

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akuzmenko/adsmith/internal/fetch"
)

var (
	// ErrFetchFailed is returned when the page could not be retrieved
	ErrFetchFailed = fmt.Errorf("fetch failed")
	// ErrUnsupportedFile is returned for file types IngestFromFile cannot read
	ErrUnsupportedFile = fmt.Errorf("unsupported file type")
)

// IngestFromURL fetches a page and extracts structured website content.
// The fetch layer handles redirects and the headless-browser fallback
// for JavaScript-rendered sites; platform detection drives the
// content-selector choice during extraction.
func IngestFromURL(ctx context.Context, urlStr string, opts *fetch.Options) (*WebsiteContent, error) {
	if opts == nil {
		opts = fetch.DefaultOptions()
	}
	verbose := opts.Verbose

	result, err := fetch.Page(ctx, urlStr, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	if verbose {
		log.Printf("[VERBOSE] Fetched %s: %d bytes (browser: %v)", urlStr, len(result.Body), result.UsedBrowser)
	}

	content, err := FromFetchResult(urlStr, result)
	if err != nil {
		return nil, err
	}

	if verbose {
		log.Printf("[VERBOSE] Detected platform: %s", content.Platform)
		log.Printf("[VERBOSE] Extracted text: %d words, %d headings, %d links",
			content.WordCount, len(content.Headings), len(content.Links))
	}

	return content, nil
}

// FromFetchResult extracts website content from an already-fetched page.
// The domain follows any redirect the fetch recorded.
func FromFetchResult(urlStr string, result *fetch.Result) (*WebsiteContent, error) {
	content, err := FromHTML(urlStr, result.Body)
	if err != nil {
		return nil, err
	}
	content.UsedBrowser = result.UsedBrowser
	if result.FinalURL != "" {
		if domain := domainOf(result.FinalURL); domain != "" {
			content.Domain = domain
		}
	}
	return content, nil
}

// IngestFromFile reads a local .html or .txt file and extracts website
// content from it. HTML files go through the full extraction pipeline;
// text files are treated as pre-extracted main text.
func IngestFromFile(path string) (*WebsiteContent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return FromHTML(path, string(data))
	case ".txt", ".md", "":
		mainText := CleanText(string(data))
		if mainText == "" {
			return nil, &ExtractionError{
				URL:     path,
				Message: "no usable content found",
			}
		}
		return &WebsiteContent{
			URL:         path,
			MainText:    mainText,
			WordCount:   len(strings.Fields(mainText)),
			ContentHash: computeHash(mainText),
			FetchedAt:   time.Now().UTC().Format(time.RFC3339),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(path))
	}
}
