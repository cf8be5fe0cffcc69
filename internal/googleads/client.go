// Package googleads is a read-only reporting client for the Google Ads
// REST search endpoint: canned GAQL queries, a paginating search call,
// and a phrase-table router that maps plain-language questions onto the
// canned reports.
package googleads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
)

const (
	defaultEndpoint   = "https://googleads.googleapis.com"
	defaultAPIVersion = "v20"

	defaultRequestsPerSecond = 5
	defaultMaxRetries        = 3
	retryBaseDelay           = 500 * time.Millisecond
)

// Row is one search result flattened to GAQL field paths, e.g.
// "campaign.id" or "metrics.cost_micros".
type Row map[string]any

// APIError represents a failed Google Ads API call
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	Cause      error
}

func (e *APIError) Error() string {
	msg := "google ads API error"
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the call may succeed on a retry: rate
// limiting and server-side failures do, auth and query errors do not.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// ClientConfig tunes the client. The zero value uses the public endpoint
// with an OAuth2 refresh-token transport.
type ClientConfig struct {
	// Endpoint overrides the API host, used by tests.
	Endpoint   string
	APIVersion string
	// HTTPClient overrides the OAuth2 transport when set.
	HTTPClient        *http.Client
	RequestsPerSecond float64
	MaxRetries        int
	Verbose           bool
}

// Client talks to the Google Ads reporting API. Safe for concurrent use.
type Client struct {
	creds      *Credentials
	httpClient *http.Client
	limiter    *rate.Limiter
	endpoint   string
	apiVersion string
	maxRetries int
	retryDelay time.Duration
	verbose    bool
}

// NewClient builds a reporting client from validated credentials. The
// default transport exchanges the refresh token for access tokens as
// needed.
func NewClient(ctx context.Context, creds *Credentials, cfg *ClientConfig) (*Client, error) {
	if creds == nil {
		return nil, &ConfigError{Message: "credentials are required"}
	}
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &ClientConfig{}
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		oc := &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Endpoint:     google.Endpoint,
		}
		httpClient = oauth2.NewClient(ctx, oc.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken}))
	}

	return &Client{
		creds:      creds,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiVersion: apiVersion,
		maxRetries: maxRetries,
		retryDelay: retryBaseDelay,
		verbose:    cfg.Verbose,
	}, nil
}

type searchRequest struct {
	Query     string `json:"query"`
	PageToken string `json:"pageToken,omitempty"`
}

type searchResponse struct {
	Results       []map[string]any `json:"results"`
	NextPageToken string           `json:"nextPageToken"`
}

// Search runs a GAQL query against one customer account, following
// nextPageToken until the result set is complete.
func (c *Client) Search(ctx context.Context, customerID, query string) ([]Row, error) {
	id := digitsOnly(customerID)
	if id == "" {
		id = c.creds.LoginCustomerID
	}
	if id == "" {
		return nil, &APIError{Message: "customer ID is required"}
	}

	url := fmt.Sprintf("%s/%s/customers/%s/googleAds:search", c.endpoint, c.apiVersion, id)

	var rows []Row
	pageToken := ""
	pages := 0
	for {
		var resp searchResponse
		if err := c.do(ctx, http.MethodPost, url, &searchRequest{Query: query, PageToken: pageToken}, &resp); err != nil {
			return nil, err
		}
		pages++
		for _, result := range resp.Results {
			rows = append(rows, flattenRow(result))
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	if c.verbose {
		log.Printf("[VERBOSE] google ads query returned %d rows across %d page(s)", len(rows), pages)
	}
	return rows, nil
}

// ListAccessibleCustomers returns the customer IDs the authenticated
// user can access.
func (c *Client) ListAccessibleCustomers(ctx context.Context) ([]string, error) {
	url := fmt.Sprintf("%s/%s/customers:listAccessibleCustomers", c.endpoint, c.apiVersion)

	var resp struct {
		ResourceNames []string `json:"resourceNames"`
	}
	if err := c.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.ResourceNames))
	for _, name := range resp.ResourceNames {
		ids = append(ids, strings.TrimPrefix(name, "customers/"))
	}
	return ids, nil
}

// do performs one rate-limited API call with retries on transient
// failures (network errors, 429, 5xx).
func (c *Client) do(ctx context.Context, method, url string, payload, out any) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return &APIError{Message: "failed to marshal request", Cause: err}
		}
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay << (attempt - 1)
			if c.verbose {
				log.Printf("[VERBOSE] retrying google ads request in %s (attempt %d/%d)", delay, attempt+1, c.maxRetries)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
		if err != nil {
			return &APIError{Message: "failed to create request", Cause: err}
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("developer-token", c.creds.DeveloperToken)
		if c.creds.LoginCustomerID != "" {
			req.Header.Set("login-customer-id", c.creds.LoginCustomerID)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = &APIError{Message: "request failed", Cause: err}
			continue
		}
		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = &APIError{StatusCode: resp.StatusCode, Message: "failed to read response", Cause: err}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(respBody, out); err != nil {
				return &APIError{Message: "failed to parse response", Cause: err}
			}
			return nil
		}

		apiErr := parseAPIError(resp.StatusCode, respBody)
		if !apiErr.Retryable() {
			return apiErr
		}
		lastErr = apiErr
	}
	return lastErr
}

func parseAPIError(statusCode int, body []byte) *APIError {
	var envelope struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return &APIError{
			StatusCode: statusCode,
			Status:     envelope.Error.Status,
			Message:    envelope.Error.Message,
		}
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return &APIError{StatusCode: statusCode, Message: msg}
}

// flattenRow turns a nested REST result into a flat Row keyed by GAQL
// field path: camelCase JSON keys become snake_case segments joined with
// dots. List values (e.g. responsive search ad headlines) stay as-is.
func flattenRow(node map[string]any) Row {
	out := make(Row)
	flattenInto(out, "", node)
	return out
}

func flattenInto(out Row, prefix string, node map[string]any) {
	for key, value := range node {
		path := camelToSnake(key)
		if prefix != "" {
			path = prefix + "." + path
		}
		if child, ok := value.(map[string]any); ok {
			flattenInto(out, path, child)
			continue
		}
		out[path] = value
	}
}

func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
