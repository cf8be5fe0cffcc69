// Package adcopy turns free-form FAB analysis output into platform-compliant
// ad assets: length-bounded headlines and descriptions, URL path segments, and
// keyword match-type expansions. Everything in this package is a pure
// transformation with no I/O.
package adcopy

import "strings"

// Facet is one selling point extracted from a website: the factual feature,
// its practical advantage, and the emotional benefit, plus the draft ad text
// the analysis step proposed for it.
type Facet struct {
	Feature          string `json:"feature"`
	Advantage        string `json:"advantage"`
	Benefit          string `json:"benefit"`
	DraftHeadline    string `json:"draft_headline,omitempty"`
	DraftDescription string `json:"draft_description,omitempty"`
}

// BAB renders the facet in benefit-first order (Benefit, Advantage, Feature),
// one sentence per part. Empty parts are skipped; an empty facet yields "".
func (f Facet) BAB() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{f.Benefit, f.Advantage, f.Feature} {
		s = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), "."))
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ". ") + "."
}

// Breakdown is the ordered facet list for one analyzed product or service.
// Facet order reflects priority assigned by the analysis step and is
// preserved through normalization.
type Breakdown struct {
	Topic  string  `json:"topic"`
	Facets []Facet `json:"facets"`
}

// Intent tags a keyword candidate with the searcher's likely goal.
type Intent string

const (
	IntentUnknown       Intent = ""
	IntentInformational Intent = "informational"
	IntentTransactional Intent = "transactional"
	IntentNavigational  Intent = "navigational"
)

// ParseIntent maps a free-form intent label to an Intent, defaulting to
// IntentUnknown for anything unrecognized.
func ParseIntent(s string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(s))) {
	case IntentInformational:
		return IntentInformational
	case IntentTransactional:
		return IntentTransactional
	case IntentNavigational:
		return IntentNavigational
	}
	return IntentUnknown
}

// KeywordCandidate is a raw keyword phrase proposed by the keyword step.
// Order across candidates carries no meaning; duplicates collapse during
// expansion.
type KeywordCandidate struct {
	Phrase string `json:"phrase"`
	Intent Intent `json:"intent,omitempty"`
}

// MatchType is an advertising-platform keyword targeting mode.
type MatchType string

const (
	MatchBroad  MatchType = "broad"
	MatchPhrase MatchType = "phrase"
	MatchExact  MatchType = "exact"
)

// KeywordMatch is one keyword in one match-type encoding: broad keeps the
// phrase verbatim, phrase wraps it in double quotes, exact in brackets.
type KeywordMatch struct {
	Keyword string    `json:"keyword"`
	Type    MatchType `json:"match_type"`
	Text    string    `json:"text"`
}

// AdGroup is the validated output bundle: every headline, description and
// path already satisfies its length bound. AdGroups are value objects and
// must not be mutated after Normalize returns them.
type AdGroup struct {
	Headlines    []string       `json:"headlines"`
	Descriptions []string       `json:"descriptions"`
	Paths        []string       `json:"paths,omitempty"`
	Keywords     []KeywordMatch `json:"keywords,omitempty"`
}
