// Package ingestion turns fetched HTML into structured website content
// ready for analysis.
package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/akuzmenko/adsmith/internal/fetch"
)

// Heading is a single h1-h6 element in document order.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// WebsiteContent is the structured result of extracting a web page.
type WebsiteContent struct {
	URL             string    `json:"url"`
	Domain          string    `json:"domain"`
	Title           string    `json:"title,omitempty"`
	MetaDescription string    `json:"meta_description,omitempty"`
	MetaKeywords    string    `json:"meta_keywords,omitempty"`
	Headings        []Heading `json:"headings,omitempty"`
	Links           []string  `json:"links,omitempty"`
	MainText        string    `json:"main_text"`
	WordCount       int       `json:"word_count"`
	ContentHash     string    `json:"content_hash"` // SHA256 hex digest of MainText
	Platform        string    `json:"platform,omitempty"`
	UsedBrowser     bool      `json:"used_browser,omitempty"`
	FetchedAt       string    `json:"fetched_at"` // RFC3339
}

// ExtractionError reports that a page yielded no usable content.
type ExtractionError struct {
	URL     string
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction error for %s: %s", e.URL, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// FromHTML extracts structured content from a fetched HTML document.
// Platform detection picks the content and noise selectors used for the
// main-text pass.
func FromHTML(urlStr, html string) (*WebsiteContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ExtractionError{
			URL:     urlStr,
			Message: "failed to parse HTML",
			Cause:   err,
		}
	}

	platform := fetch.DetectPlatform(urlStr, html)

	content := &WebsiteContent{
		URL:       urlStr,
		Domain:    domainOf(urlStr),
		Platform:  string(platform),
		FetchedAt: time.Now().UTC().Format(time.RFC3339),
	}

	content.Title = extractTitle(doc)
	content.MetaDescription = extractMetaDescription(doc)
	content.MetaKeywords = metaContent(doc, "keywords")
	content.Headings = extractHeadings(doc)
	content.Links = extractLinks(doc, urlStr)

	mainText, err := fetch.ExtractMainText(html,
		fetch.PlatformContentSelectors(platform),
		fetch.PlatformNoiseSelectors(platform)...)
	if err != nil {
		return nil, &ExtractionError{
			URL:     urlStr,
			Message: "content extraction failed",
			Cause:   err,
		}
	}
	content.MainText = CleanText(mainText)
	content.WordCount = len(strings.Fields(content.MainText))
	content.ContentHash = computeHash(content.MainText)

	if content.MainText == "" && content.Title == "" && content.MetaDescription == "" {
		return nil, &ExtractionError{
			URL:     urlStr,
			Message: "no usable content found",
		}
	}

	return content, nil
}

// FormatForPrompt renders the content as readable text for an LLM
// prompt. maxContentChars caps the main-text portion; 0 means no cap.
func (c *WebsiteContent) FormatForPrompt(maxContentChars int) string {
	var sb strings.Builder

	sb.WriteString("Website: " + c.URL + "\n")
	if c.Title != "" {
		sb.WriteString("Title: " + c.Title + "\n")
	}
	if c.MetaDescription != "" {
		sb.WriteString("Meta description: " + c.MetaDescription + "\n")
	}
	if c.MetaKeywords != "" {
		sb.WriteString("Meta keywords: " + c.MetaKeywords + "\n")
	}

	if len(c.Headings) > 0 {
		sb.WriteString("\nKey headings:\n")
		for _, h := range c.Headings {
			sb.WriteString(fmt.Sprintf("- (h%d) %s\n", h.Level, h.Text))
		}
	}

	mainText := c.MainText
	if maxContentChars > 0 && len(mainText) > maxContentChars {
		mainText = mainText[:maxContentChars]
		// Back off to the last line break so the prompt doesn't end mid-word
		if idx := strings.LastIndexAny(mainText, "\n "); idx > 0 {
			mainText = mainText[:idx]
		}
	}
	if mainText != "" {
		sb.WriteString("\nPage content:\n")
		sb.WriteString(mainText)
		sb.WriteString("\n")
	}

	return sb.String()
}

// ToJSON marshals the content to pretty-printed JSON.
func (c *WebsiteContent) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal website content to JSON: %w", err)
	}
	return jsonBytes, nil
}

// WriteJSON writes the content to website_content.json in outDir,
// creating the directory if needed.
func (c *WebsiteContent) WriteJSON(outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	jsonBytes, err := c.ToJSON()
	if err != nil {
		return "", err
	}

	path := filepath.Join(outDir, "website_content.json")
	if err := os.WriteFile(path, jsonBytes, 0644); err != nil {
		return "", fmt.Errorf("failed to write website content file: %w", err)
	}
	return path, nil
}

func extractTitle(doc *goquery.Document) string {
	if title := collapseSpaces(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if title := collapseSpaces(og); title != "" {
			return title
		}
	}
	return collapseSpaces(doc.Find("h1").First().Text())
}

func extractMetaDescription(doc *goquery.Document) string {
	if desc := metaContent(doc, "description"); desc != "" {
		return desc
	}
	if og, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		return collapseSpaces(og)
	}
	return ""
}

func metaContent(doc *goquery.Document, name string) string {
	if content, ok := doc.Find(`meta[name="`+name+`"]`).Attr("content"); ok {
		return collapseSpaces(content)
	}
	return ""
}

func extractHeadings(doc *goquery.Document) []Heading {
	var headings []Heading
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		text := collapseSpaces(s.Text())
		if text == "" {
			return
		}
		name := goquery.NodeName(s)
		if len(name) != 2 || name[0] != 'h' {
			return
		}
		headings = append(headings, Heading{
			Level: int(name[1] - '0'),
			Text:  text,
		})
	})
	return headings
}

// extractLinks returns absolutized http(s) links in document order,
// deduped first-seen, with fragments stripped.
func extractLinks(doc *goquery.Document, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}

		parsed, err := url.Parse(href)
		if err != nil {
			return
		}
		if base != nil {
			parsed = base.ResolveReference(parsed)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return
		}
		parsed.Fragment = ""

		link := parsed.String()
		if seen[link] {
			return
		}
		seen[link] = true
		links = append(links, link)
	})
	return links
}

// domainOf returns the lowercased host without a leading "www.".
func domainOf(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// collapseSpaces trims and collapses internal whitespace runs.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// computeHash computes the SHA256 hash of content and returns a hex string.
func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
