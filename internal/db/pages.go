package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DefaultPageCacheTTL is how long a fetched page serves repeat analyses
// before the next request goes back to the network.
const DefaultPageCacheTTL = 7 * 24 * time.Hour

// CachedPage is one fetched page kept for repeat analyses
type CachedPage struct {
	ID             uuid.UUID  `json:"id"`
	URL            string     `json:"url"`
	HTML           string     `json:"html,omitempty"`
	Text           string     `json:"text,omitempty"`
	ContentHash    string     `json:"content_hash,omitempty"`
	HTTPStatus     int        `json:"http_status"`
	FetchedAt      time.Time  `json:"fetched_at"`
	ExpiresAt      time.Time  `json:"expires_at"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsFresh reports whether the page can serve a request without a re-fetch
func (p *CachedPage) IsFresh(maxAge time.Duration) bool {
	if time.Since(p.FetchedAt) >= maxAge {
		return false
	}
	return time.Now().Before(p.ExpiresAt)
}

// HashContent returns the sha256 hex digest used for change detection
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// GetCachedPageByURL retrieves a cached page by URL
func (db *DB) GetCachedPageByURL(ctx context.Context, pageURL string) (*CachedPage, error) {
	var p CachedPage
	err := db.pool.QueryRow(ctx,
		`SELECT id, url, html, text, COALESCE(content_hash, ''), http_status,
		        fetched_at, expires_at, last_accessed_at, created_at, updated_at
		 FROM cached_pages WHERE url = $1`,
		pageURL,
	).Scan(&p.ID, &p.URL, &p.HTML, &p.Text, &p.ContentHash, &p.HTTPStatus,
		&p.FetchedAt, &p.ExpiresAt, &p.LastAccessedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached page: %w", err)
	}
	return &p, nil
}

// GetFreshCachedPage returns the page only when it is fresh and the
// original fetch succeeded; stale or failed entries fall through to a
// re-fetch.
func (db *DB) GetFreshCachedPage(ctx context.Context, pageURL string, maxAge time.Duration) (*CachedPage, error) {
	page, err := db.GetCachedPageByURL(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if page == nil || !page.IsFresh(maxAge) {
		return nil, nil
	}
	if page.HTTPStatus < 200 || page.HTTPStatus >= 300 {
		return nil, nil
	}

	_ = db.TouchCachedPage(ctx, page.ID)
	return page, nil
}

// UpsertCachedPage inserts or refreshes a cached page, filling the ID
// and timestamps on the passed struct
func (db *DB) UpsertCachedPage(ctx context.Context, page *CachedPage) error {
	contentHash := page.ContentHash
	if contentHash == "" && page.HTML != "" {
		contentHash = HashContent(page.HTML)
	}

	expiresAt := page.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(DefaultPageCacheTTL)
	}

	err := db.pool.QueryRow(ctx,
		`INSERT INTO cached_pages (url, html, text, content_hash, http_status, fetched_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), $6)
		 ON CONFLICT (url) DO UPDATE SET
		     html = $2,
		     text = $3,
		     content_hash = $4,
		     http_status = $5,
		     fetched_at = NOW(),
		     expires_at = $6,
		     updated_at = NOW()
		 RETURNING id, fetched_at, created_at, updated_at`,
		page.URL, page.HTML, page.Text, contentHash, page.HTTPStatus, expiresAt,
	).Scan(&page.ID, &page.FetchedAt, &page.CreatedAt, &page.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert cached page: %w", err)
	}

	page.ContentHash = contentHash
	page.ExpiresAt = expiresAt
	return nil
}

// TouchCachedPage updates the last_accessed_at timestamp
func (db *DB) TouchCachedPage(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE cached_pages SET last_accessed_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to touch cached page: %w", err)
	}
	return nil
}

// ExpireCachedPage marks a page stale so the next request re-fetches it
func (db *DB) ExpireCachedPage(ctx context.Context, pageURL string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE cached_pages SET expires_at = NOW(), updated_at = NOW() WHERE url = $1`,
		pageURL,
	)
	if err != nil {
		return fmt.Errorf("failed to expire cached page: %w", err)
	}
	return nil
}

// PurgeExpiredPages deletes entries past their TTL and reports how many
// were removed
func (db *DB) PurgeExpiredPages(ctx context.Context) (int64, error) {
	result, err := db.pool.Exec(ctx, `DELETE FROM cached_pages WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired pages: %w", err)
	}
	return result.RowsAffected(), nil
}
