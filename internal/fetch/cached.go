// Package fetch - cached.go wraps page fetching with database-backed caching
// so repeat analyses of the same URL skip the network.
package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akuzmenko/adsmith/internal/db"
)

// CachedFetcher wraps page fetching with database-backed caching.
type CachedFetcher struct {
	db        *db.DB
	options   *Options
	cacheTTL  time.Duration
	skipCache bool // for testing or forcing fresh fetches
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	CacheTTL  time.Duration
	SkipCache bool
	Options   *Options
}

// DefaultCachedFetcherConfig returns sensible defaults.
func DefaultCachedFetcherConfig() *CachedFetcherConfig {
	return &CachedFetcherConfig{
		CacheTTL:  db.DefaultPageCacheTTL, // 7 days
		SkipCache: false,
		Options:   DefaultOptions(),
	}
}

// NewCachedFetcher creates a new cached fetcher. A nil database is
// allowed and turns the fetcher into a plain pass-through.
func NewCachedFetcher(database *db.DB, config *CachedFetcherConfig) *CachedFetcher {
	if config == nil {
		config = DefaultCachedFetcherConfig()
	}
	if config.Options == nil {
		config.Options = DefaultOptions()
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = db.DefaultPageCacheTTL
	}
	return &CachedFetcher{
		db:        database,
		options:   config.Options,
		cacheTTL:  config.CacheTTL,
		skipCache: config.SkipCache,
	}
}

// CachedResult extends Result with cache metadata.
type CachedResult struct {
	*Result
	FromCache bool      // whether this result came from cache
	PageID    uuid.UUID // database ID of the cached page
}

// Fetch retrieves a URL, using cache if available and fresh.
// Returns cached content if within TTL, otherwise fetches fresh content
// (browser fallback included) and caches it. Failed fetches are not cached.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*CachedResult, error) {
	if !f.skipCache && f.db != nil {
		cached, err := f.db.GetFreshCachedPage(ctx, urlStr, f.cacheTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to check page cache: %w", err)
		}
		if cached != nil {
			return &CachedResult{
				Result: &Result{
					URL:         urlStr,
					FinalURL:    cached.URL,
					StatusCode:  cached.HTTPStatus,
					ContentType: "text/html",
					Body:        cached.HTML,
				},
				FromCache: true,
				PageID:    cached.ID,
			}, nil
		}
	}

	result, err := Page(ctx, urlStr, f.options)
	if err != nil {
		return nil, err
	}

	if f.db != nil {
		text, _ := ExtractMainText(result.Body, DefaultContentSelectors())
		page := &db.CachedPage{
			URL:        urlStr,
			HTML:       result.Body,
			Text:       text,
			HTTPStatus: result.StatusCode,
		}
		if err := f.db.UpsertCachedPage(ctx, page); err == nil {
			return &CachedResult{
				Result:    result,
				FromCache: false,
				PageID:    page.ID,
			}, nil
		}
		// Cache write failure is not fatal - the fetch succeeded.
	}

	return &CachedResult{
		Result:    result,
		FromCache: false,
	}, nil
}

// InvalidateCache marks a cached page as stale, forcing a re-fetch on
// the next request.
func (f *CachedFetcher) InvalidateCache(ctx context.Context, urlStr string) error {
	if f.db == nil {
		return nil
	}
	return f.db.ExpireCachedPage(ctx, urlStr)
}
