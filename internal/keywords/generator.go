// Package keywords derives search keyword candidates from a FAB analysis,
// either through an LLM or through a deterministic fallback built from the
// analysis itself.
package keywords

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/akuzmenko/adsmith/internal/adcopy"
	"github.com/akuzmenko/adsmith/internal/fab"
	"github.com/akuzmenko/adsmith/internal/llm"
	"github.com/akuzmenko/adsmith/internal/prompts"
	"github.com/akuzmenko/adsmith/internal/schemas"
)

// DefaultMaxKeywords is how many candidates Generate asks for when the
// caller doesn't say.
const DefaultMaxKeywords = 20

// maxPhraseRunes mirrors the platform's keyword length cap; longer
// fallback phrases are skipped outright.
const maxPhraseRunes = 80

// Options configures keyword generation.
type Options struct {
	MaxKeywords int
}

// DefaultOptions returns the default generation options.
func DefaultOptions() Options {
	return Options{MaxKeywords: DefaultMaxKeywords}
}

func (o Options) withDefaults() Options {
	if o.MaxKeywords <= 0 {
		o.MaxKeywords = DefaultMaxKeywords
	}
	return o
}

// RawKeyword is one keyword entry as the model returns it.
type RawKeyword struct {
	Keyword          string `json:"keyword"`
	MatchType        string `json:"match_type,omitempty"`
	SearchVolume     string `json:"search_volume,omitempty"`
	CommercialIntent string `json:"commercial_intent,omitempty"`
	Category         string `json:"category,omitempty"`
}

type keywordList struct {
	Keywords []RawKeyword `json:"keywords"`
}

// Generator derives keywords through an injected LLM client.
type Generator struct {
	client llm.Client
}

// NewGenerator creates a Generator.
func NewGenerator(client llm.Client) *Generator {
	return &Generator{client: client}
}

// Generate asks the model for keyword candidates grounded in the
// analysis. The reply is schema-validated; entries map to
// KeywordCandidate with the commercial-intent label parsed into an
// Intent tag. Match-type expansion and dedup happen later in
// adcopy.ExpandMatchTypes.
func (g *Generator) Generate(ctx context.Context, analysis *fab.Analysis, opts Options) ([]adcopy.KeywordCandidate, error) {
	opts = opts.withDefaults()

	if analysis == nil || len(analysis.Facets) == 0 {
		return nil, &adcopy.ValidationError{Field: "analysis", Message: "no analysis to derive keywords from"}
	}

	prompt := buildKeywordPrompt(analysis, opts)

	raw, err := g.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, &fab.APICallError{
			Message: "keyword generation request failed",
			Cause:   err,
		}
	}

	cleaned := llm.CleanJSONBlock(raw)
	if err := schemas.Validate("keyword_list", cleaned); err != nil {
		return nil, &fab.ParseError{
			Message: "keyword response failed schema validation",
			Cause:   err,
		}
	}

	var list keywordList
	if err := json.Unmarshal([]byte(cleaned), &list); err != nil {
		return nil, &fab.ParseError{
			Message: "failed to parse keyword response",
			Cause:   err,
		}
	}

	candidates := make([]adcopy.KeywordCandidate, 0, len(list.Keywords))
	for _, k := range list.Keywords {
		phrase := strings.TrimSpace(k.Keyword)
		if phrase == "" {
			continue
		}
		candidates = append(candidates, adcopy.KeywordCandidate{
			Phrase: phrase,
			Intent: adcopy.ParseIntent(k.CommercialIntent),
		})
		if len(candidates) == opts.MaxKeywords {
			break
		}
	}

	if len(candidates) == 0 {
		return nil, &fab.ParseError{Message: "model returned no keywords"}
	}

	return candidates, nil
}

// buildKeywordPrompt assembles the keyword prompt from the analysis.
func buildKeywordPrompt(analysis *fab.Analysis, opts Options) string {
	system := prompts.MustGet("keyword_generation.json", "system")
	template := prompts.MustGet("keyword_generation.json", "generate")
	body := prompts.Format(template, map[string]string{
		"ProductName":    analysis.ProductName,
		"TargetAudience": analysis.TargetAudience,
		"UVP":            analysis.UniqueValueProposition,
		"Features":       analysis.FacetLines(),
		"MaxKeywords":    strconv.Itoa(opts.MaxKeywords),
	})
	return system + "\n\n" + body
}

// Fallback derives keyword candidates from the analysis alone, for when
// the model call fails or LLM use is disabled. Deterministic: phrases
// come from the product name, audience, and features in a fixed order,
// deduplicated case-insensitively and capped at n.
func Fallback(analysis *fab.Analysis, n int) []adcopy.KeywordCandidate {
	if analysis == nil || n <= 0 {
		return nil
	}

	seen := make(map[string]bool)
	var candidates []adcopy.KeywordCandidate
	add := func(phrase string, intent adcopy.Intent) {
		if len(candidates) >= n {
			return
		}
		phrase = strings.ToLower(strings.Join(strings.Fields(phrase), " "))
		if phrase == "" || utf8.RuneCountInString(phrase) > maxPhraseRunes {
			return
		}
		if seen[phrase] {
			return
		}
		seen[phrase] = true
		candidates = append(candidates, adcopy.KeywordCandidate{Phrase: phrase, Intent: intent})
	}

	name := strings.TrimSpace(analysis.ProductName)
	if name != "" {
		// Searches for the product by name are brand navigation
		add(name, adcopy.IntentNavigational)
		add("best "+name, adcopy.IntentTransactional)
		add("buy "+name, adcopy.IntentTransactional)
	}

	audience := strings.TrimSpace(analysis.TargetAudience)
	if name != "" && audience != "" {
		add(name+" for "+audience, adcopy.IntentTransactional)
	}

	for _, f := range analysis.Facets {
		feature := strings.TrimSpace(f.Feature)
		if feature == "" {
			continue
		}
		add(feature, adcopy.IntentInformational)
		if name != "" {
			add(name+" "+feature, adcopy.IntentInformational)
		}
	}

	return candidates
}
