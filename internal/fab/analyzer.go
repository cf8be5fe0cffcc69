// Package fab analyzes website content with the Features-Advantages-Benefits
// framework: an LLM breaks the page into selling points, each carrying the
// concrete feature, its practical advantage, and the customer benefit.
package fab

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/akuzmenko/adsmith/internal/adcopy"
	"github.com/akuzmenko/adsmith/internal/ingestion"
	"github.com/akuzmenko/adsmith/internal/llm"
	"github.com/akuzmenko/adsmith/internal/prompts"
	"github.com/akuzmenko/adsmith/internal/schemas"
)

// maxPromptContentChars caps how much page text goes into the analysis
// prompt. Anything beyond this adds cost without adding selling points.
const maxPromptContentChars = 8000

// Analysis is the structured FAB breakdown of one website.
type Analysis struct {
	ProductName            string         `json:"product_name"`
	TargetAudience         string         `json:"target_audience"`
	UniqueValueProposition string         `json:"unique_value_proposition,omitempty"`
	Facets                 []adcopy.Facet `json:"fab_statements"`
	Model                  string         `json:"model,omitempty"`
	AnalyzedAt             time.Time      `json:"analyzed_at,omitempty"`
}

// Breakdown converts the analysis into the normalizer's input form.
func (a *Analysis) Breakdown() adcopy.Breakdown {
	return adcopy.Breakdown{
		Topic:  a.ProductName,
		Facets: a.Facets,
	}
}

// FacetLines renders one "feature: benefit" line per facet, for prompts
// that need a compact recap of the selling points.
func (a *Analysis) FacetLines() string {
	var sb strings.Builder
	for _, f := range a.Facets {
		sb.WriteString("- " + f.Feature)
		if f.Benefit != "" {
			sb.WriteString(": " + f.Benefit)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// BABLines renders the facets benefit-first, one per line.
func (a *Analysis) BABLines() string {
	var sb strings.Builder
	for _, f := range a.Facets {
		if line := f.BAB(); line != "" {
			sb.WriteString("- " + line + "\n")
		}
	}
	return sb.String()
}

// Analyzer runs FAB analysis through an injected LLM client.
type Analyzer struct {
	client llm.Client
}

// NewAnalyzer creates an Analyzer. The client is injected so callers
// control provider, model tiers, and lifecycle.
func NewAnalyzer(client llm.Client) *Analyzer {
	return &Analyzer{client: client}
}

// Analyze breaks extracted website content into FAB selling points.
// The model reply is schema-validated before unmarshalling, then
// post-processed: fields trimmed, facets without a benefit dropped, and
// at least one facet required.
func (a *Analyzer) Analyze(ctx context.Context, content *ingestion.WebsiteContent) (*Analysis, error) {
	if !hasUsableText(content) {
		return nil, &adcopy.ValidationError{Field: "content", Message: "no content to advertise"}
	}

	prompt := buildAnalysisPrompt(content)

	raw, err := a.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &APICallError{
			Message: "FAB analysis request failed",
			Cause:   err,
		}
	}

	cleaned := llm.CleanJSONBlock(raw)
	if err := schemas.Validate("fab_analysis", cleaned); err != nil {
		return nil, &ParseError{
			Message: "analysis response failed schema validation",
			Cause:   err,
		}
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		return nil, &ParseError{
			Message: "failed to parse analysis response",
			Cause:   err,
		}
	}

	if err := postProcess(&analysis); err != nil {
		return nil, err
	}

	analysis.Model = a.client.GetModel(llm.TierStandard)
	analysis.AnalyzedAt = time.Now().UTC()

	return &analysis, nil
}

// hasUsableText reports whether there is anything to analyze at all.
func hasUsableText(content *ingestion.WebsiteContent) bool {
	if content == nil {
		return false
	}
	return strings.TrimSpace(content.MainText) != "" ||
		strings.TrimSpace(content.Title) != "" ||
		strings.TrimSpace(content.MetaDescription) != ""
}

// buildAnalysisPrompt assembles the persona and task prompt from the
// embedded template and the extracted content.
func buildAnalysisPrompt(content *ingestion.WebsiteContent) string {
	var headings strings.Builder
	for _, h := range content.Headings {
		headings.WriteString("- " + h.Text + "\n")
	}

	system := prompts.MustGet("fab_analysis.json", "system")
	template := prompts.MustGet("fab_analysis.json", "analyze")
	body := prompts.Format(template, map[string]string{
		"URL":             content.URL,
		"Title":           content.Title,
		"MetaDescription": content.MetaDescription,
		"Headings":        headings.String(),
		"Content":         capContent(content.MainText, maxPromptContentChars),
	})

	return system + "\n\n" + body
}

// capContent truncates s to at most max bytes, backing off to the last
// whitespace so the prompt doesn't end mid-word. max <= 0 means no cap.
func capContent(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	s = s[:max]
	if idx := strings.LastIndexAny(s, "\n "); idx > 0 {
		s = s[:idx]
	}
	return s
}

// postProcess trims all fields, drops facets without a benefit, and
// requires a product name and at least one surviving facet.
func postProcess(a *Analysis) error {
	a.ProductName = strings.TrimSpace(a.ProductName)
	a.TargetAudience = strings.TrimSpace(a.TargetAudience)
	a.UniqueValueProposition = strings.TrimSpace(a.UniqueValueProposition)

	var kept []adcopy.Facet
	for _, f := range a.Facets {
		f.Feature = strings.TrimSpace(f.Feature)
		f.Advantage = strings.TrimSpace(f.Advantage)
		f.Benefit = strings.TrimSpace(f.Benefit)
		f.DraftHeadline = strings.TrimSpace(f.DraftHeadline)
		f.DraftDescription = strings.TrimSpace(f.DraftDescription)

		// A selling point that names no benefit can't sell anything
		if f.Benefit == "" {
			continue
		}
		kept = append(kept, f)
	}
	a.Facets = kept

	if a.ProductName == "" {
		return &adcopy.ValidationError{Field: "product_name", Message: "analysis named no product"}
	}
	if len(a.Facets) == 0 {
		return &adcopy.ValidationError{Field: "fab_statements", Message: "analysis produced no usable selling points"}
	}
	return nil
}
