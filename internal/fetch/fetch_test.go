package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body><h1>Aurora X100</h1></body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.Body, "<h1>Aurora X100</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.False(t, result.UsedBrowser)
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "not-a-valid-url", nil)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.NotNil(t, result) // Result is returned even on error
	assert.Equal(t, http.StatusNotFound, result.StatusCode)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Contains(t, err.Error(), "404")
}

func TestURL_FollowsRedirects(t *testing.T) {
	var finalURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>landed</body></html>"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()
	finalURL = server.URL + "/new"

	result, err := URL(context.Background(), server.URL+"/old", nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/old", result.URL)
	assert.Equal(t, finalURL, result.FinalURL)
}

func TestURL_BodySizeLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(strings.Repeat("x", 2048)))
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.MaxBodySize = 1024

	_, err := URL(context.Background(), server.URL, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 1024 bytes")
}

func TestURL_RejectsNonHTMLContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"not": "html"}`))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.NotNil(t, result)
	assert.Contains(t, err.Error(), "unsupported content type")
}

func TestURL_AcceptsMissingContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// Write directly so net/http does not sniff a Content-Type
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte("<html><body>bare</body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Contains(t, result.Body, "bare")
}

func TestPage_NoFallbackWhenContentSufficient(t *testing.T) {
	longText := strings.Repeat("Premium roasted coffee beans delivered fresh. ", 20)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><main>" + longText + "</main></body></html>"))
	}))
	defer server.Close()

	result, err := Page(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.False(t, result.UsedBrowser)
	assert.Contains(t, result.Body, "coffee beans")
}

func TestPage_BrowserDisabled(t *testing.T) {
	// Thin page that would normally trigger the browser fallback
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><div id=\"app\"></div></body></html>"))
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.UseBrowser = false

	result, err := Page(context.Background(), server.URL, opts)
	require.NoError(t, err)
	assert.False(t, result.UsedBrowser)
}

func TestShouldUseBrowser(t *testing.T) {
	longText := strings.Repeat("Handcrafted leather goods made to last a lifetime. ", 20)

	tests := []struct {
		name     string
		result   *Result
		expected bool
	}{
		{"nil result", nil, false},
		{"forbidden", &Result{StatusCode: http.StatusForbidden}, true},
		{"rate limited", &Result{StatusCode: http.StatusTooManyRequests}, true},
		{"not found", &Result{StatusCode: http.StatusNotFound, Body: "<html><body>gone</body></html>"}, false},
		{"server error", &Result{StatusCode: http.StatusInternalServerError}, false},
		{"thin SPA shell", &Result{StatusCode: http.StatusOK, Body: `<html><body><div id="root"></div></body></html>`}, true},
		{"substantial content", &Result{StatusCode: http.StatusOK, Body: "<html><body><main>" + longText + "</main></body></html>"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShouldUseBrowser(tt.result))
		})
	}
}

func TestExtractMainText_WithMainElement(t *testing.T) {
	html := `
	<html>
		<body>
			<nav>Navigation</nav>
			<main>
				<h1>Artisan Coffee Roasters</h1>
				<p>Small-batch beans roasted to order.</p>
			</main>
			<footer>Footer</footer>
		</body>
	</html>`

	text, err := ExtractMainText(html, DefaultContentSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "Artisan Coffee Roasters")
	assert.Contains(t, text, "roasted to order")
	assert.NotContains(t, text, "Navigation")
	assert.NotContains(t, text, "Footer")
}

func TestExtractMainText_FallbackToBody(t *testing.T) {
	html := `
	<html>
		<body>
			<div>Some content here.</div>
		</body>
	</html>`

	text, err := ExtractMainText(html, DefaultContentSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "Some content here")
}

func TestExtractMainText_NoiseSelectors(t *testing.T) {
	html := `
	<html>
		<body>
			<main>
				<div class="announcement-bar">Free shipping over $50!</div>
				<p>Organic skincare made from botanical extracts.</p>
			</main>
		</body>
	</html>`

	text, err := ExtractMainText(html, DefaultContentSelectors(), ".announcement-bar")
	require.NoError(t, err)
	assert.Contains(t, text, "botanical extracts")
	assert.NotContains(t, text, "Free shipping")
}

func TestExtractMainText_RemovesScriptsAndStyles(t *testing.T) {
	html := `
	<html>
		<head><style>.x { color: red; }</style></head>
		<body>
			<script>var tracking = "pixel";</script>
			<main><p>Visible copy only.</p></main>
		</body>
	</html>`

	text, err := ExtractMainText(html, DefaultContentSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "Visible copy only")
	assert.NotContains(t, text, "tracking")
	assert.NotContains(t, text, "color: red")
}

func TestDefaultContentSelectors(t *testing.T) {
	selectors := DefaultContentSelectors()
	assert.Contains(t, selectors, "main")
	assert.Contains(t, selectors, "article")
}

func TestIsHTMLContentType(t *testing.T) {
	assert.True(t, isHTMLContentType("text/html"))
	assert.True(t, isHTMLContentType("text/html; charset=utf-8"))
	assert.True(t, isHTMLContentType("application/xhtml+xml"))
	assert.True(t, isHTMLContentType(""))
	assert.False(t, isHTMLContentType("application/json"))
	assert.False(t, isHTMLContentType("image/png"))
}
