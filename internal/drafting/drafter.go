// Package drafting turns a FAB analysis into ad variants: an LLM drafts
// several copy angles, and every draft is forced through the compliance
// pass before it counts. A deterministic compose path builds one variant
// straight from the analysis when no model is wanted.
package drafting

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/akuzmenko/adsmith/internal/adcopy"
	"github.com/akuzmenko/adsmith/internal/fab"
	"github.com/akuzmenko/adsmith/internal/llm"
	"github.com/akuzmenko/adsmith/internal/prompts"
	"github.com/akuzmenko/adsmith/internal/schemas"
)

// RawVariant is one ad variant as the model returns it, before compliance.
type RawVariant struct {
	Type         string   `json:"type"`
	Headlines    []string `json:"headlines"`
	Descriptions []string `json:"descriptions"`
	Paths        []string `json:"paths,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

type adVariants struct {
	Ads []RawVariant `json:"ads"`
}

// Variant is a compliant ad variant: every asset in the group already
// satisfies its length bound.
type Variant struct {
	Type    string         `json:"type"`
	AdGroup adcopy.AdGroup `json:"ad_group"`
	Notes   string         `json:"notes,omitempty"`
}

// Discard records a drafted variant that did not survive compliance.
type Discard struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// DraftResult carries the surviving variants plus the discards, so
// callers can report why drafts were dropped.
type DraftResult struct {
	Variants  []Variant `json:"variants"`
	Discarded []Discard `json:"discarded,omitempty"`
}

// NoUsableVariantsError reports that every drafted variant failed the
// compliance pass.
type NoUsableVariantsError struct {
	Discarded []Discard
}

func (e *NoUsableVariantsError) Error() string {
	return fmt.Sprintf("no ad variant survived the compliance pass (%d discarded)", len(e.Discarded))
}

// Drafter drafts ad variants through an injected LLM client.
type Drafter struct {
	client llm.Client
}

// NewDrafter creates a Drafter.
func NewDrafter(client llm.Client) *Drafter {
	return &Drafter{client: client}
}

// Draft asks the model for ad variants and normalizes each one. Variants
// whose assets fall below platform minimums after normalization are
// discarded with the reason recorded; at least one variant must survive.
func (d *Drafter) Draft(ctx context.Context, analysis *fab.Analysis, candidates []adcopy.KeywordCandidate, opts adcopy.Options) (*DraftResult, error) {
	if analysis == nil || len(analysis.Facets) == 0 {
		return nil, &adcopy.ValidationError{Field: "analysis", Message: "no analysis to draft from"}
	}

	prompt := buildDraftPrompt(analysis, candidates, opts)

	raw, err := d.client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, &fab.APICallError{
			Message: "ad variant drafting request failed",
			Cause:   err,
		}
	}

	cleaned := llm.CleanJSONBlock(raw)
	if err := schemas.Validate("ad_variants", cleaned); err != nil {
		return nil, &fab.ParseError{
			Message: "variant response failed schema validation",
			Cause:   err,
		}
	}

	var reply adVariants
	if err := json.Unmarshal([]byte(cleaned), &reply); err != nil {
		return nil, &fab.ParseError{
			Message: "failed to parse variant response",
			Cause:   err,
		}
	}

	result := &DraftResult{}
	for i, rawVariant := range reply.Ads {
		variantType := normalizeType(rawVariant.Type, i)
		variantCandidates := matchCandidates(rawVariant.Keywords, candidates)

		group, err := adcopy.NormalizeRaw(rawVariant.Headlines, rawVariant.Descriptions, rawVariant.Paths, variantCandidates, opts)
		if err != nil {
			result.Discarded = append(result.Discarded, Discard{
				Type:   variantType,
				Reason: err.Error(),
			})
			continue
		}

		result.Variants = append(result.Variants, Variant{
			Type:    variantType,
			AdGroup: *group,
			Notes:   strings.TrimSpace(rawVariant.Notes),
		})
	}

	if len(result.Variants) == 0 {
		return nil, &NoUsableVariantsError{Discarded: result.Discarded}
	}

	return result, nil
}

// Compose builds one variant deterministically from the analysis facets,
// with no model involved: draft headlines fall back to benefits, draft
// descriptions to the benefit-first rendering, and the path comes from
// the product name.
func Compose(analysis *fab.Analysis, candidates []adcopy.KeywordCandidate, opts adcopy.Options) (*Variant, error) {
	if analysis == nil {
		return nil, &adcopy.ValidationError{Field: "analysis", Message: "no analysis to draft from"}
	}

	group, err := adcopy.Normalize(analysis.Breakdown(), candidates, opts)
	if err != nil {
		return nil, err
	}

	return &Variant{
		Type:    "composed",
		AdGroup: *group,
		Notes:   "built from analysis facets without model drafting",
	}, nil
}

// buildDraftPrompt assembles the drafting prompt: selling points
// benefit-first, target keywords, and the hard character limits spelled
// out as numbers the model can count against.
func buildDraftPrompt(analysis *fab.Analysis, candidates []adcopy.KeywordCandidate, opts adcopy.Options) string {
	phrases := make([]string, 0, len(candidates))
	for _, c := range candidates {
		phrases = append(phrases, c.Phrase)
	}

	limits := opts
	if limits.HeadlineLimit == 0 || limits.DescriptionLimit == 0 || limits.PathLimit == 0 {
		limits = adcopy.DefaultOptions()
	}

	system := prompts.MustGet("ad_variants.json", "system")
	template := prompts.MustGet("ad_variants.json", "draft")
	body := prompts.Format(template, map[string]string{
		"ProductName":      analysis.ProductName,
		"TargetAudience":   analysis.TargetAudience,
		"UVP":              analysis.UniqueValueProposition,
		"FabSummary":       analysis.BABLines(),
		"Keywords":         strings.Join(phrases, ", "),
		"HeadlineLimit":    strconv.Itoa(limits.HeadlineLimit),
		"DescriptionLimit": strconv.Itoa(limits.DescriptionLimit),
		"PathLimit":        strconv.Itoa(limits.PathLimit),
	})
	return system + "\n\n" + body
}

// normalizeType lowercases the model's variant label, with a positional
// fallback for blank labels.
func normalizeType(t string, index int) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if t == "" {
		return "variant_" + strconv.Itoa(index+1)
	}
	return t
}

// matchCandidates resolves the keyword names a variant targets against
// the candidate pool, keeping the pool's intent tags. Names not found in
// the pool stay as untagged candidates; a variant that names nothing
// targets the whole pool.
func matchCandidates(names []string, pool []adcopy.KeywordCandidate) []adcopy.KeywordCandidate {
	if len(names) == 0 {
		return pool
	}

	index := make(map[string]adcopy.KeywordCandidate, len(pool))
	for _, c := range pool {
		index[normalizeKey(c.Phrase)] = c
	}

	var matched []adcopy.KeywordCandidate
	for _, name := range names {
		key := normalizeKey(name)
		if key == "" {
			continue
		}
		if c, ok := index[key]; ok {
			matched = append(matched, c)
			continue
		}
		matched = append(matched, adcopy.KeywordCandidate{Phrase: strings.TrimSpace(name)})
	}
	return matched
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
