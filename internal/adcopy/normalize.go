package adcopy

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Normalize builds a complete AdGroup from a FAB breakdown and keyword
// candidates. It is deterministic: identical input always yields identical
// output. On any failure no partial group is returned.
func Normalize(b Breakdown, candidates []KeywordCandidate, opts Options) (*AdGroup, error) {
	opts = opts.withDefaults()

	if len(b.Facets) == 0 {
		return nil, &ValidationError{Field: "facets", Message: "no content to advertise"}
	}

	headlines, err := BuildHeadlines(b.Facets, opts)
	if err != nil {
		return nil, err
	}

	descriptions, err := BuildDescriptions(b.Facets, opts)
	if err != nil {
		return nil, err
	}

	var paths []string
	if p := BuildPath(b.Topic, opts); p != "" {
		paths = append(paths, p)
	}

	return &AdGroup{
		Headlines:    headlines,
		Descriptions: descriptions,
		Paths:        paths,
		Keywords:     ExpandMatchTypes(candidates, opts),
	}, nil
}

// NormalizeRaw applies the same compliance pass to already-drafted asset
// lists, as produced by the ad-variant drafting step. Paths are re-slugged
// through the path rules and capped at the platform maximum.
func NormalizeRaw(headlines, descriptions, paths []string, candidates []KeywordCandidate, opts Options) (*AdGroup, error) {
	opts = opts.withDefaults()

	if len(headlines) == 0 && len(descriptions) == 0 {
		return nil, &ValidationError{Field: "assets", Message: "no content to advertise"}
	}

	h, err := normalizeAssets(headlines, opts.HeadlineLimit, opts.MinHeadlines, opts.MaxHeadlines, "headline", opts.DisableTruncation)
	if err != nil {
		return nil, err
	}

	d, err := normalizeAssets(descriptions, opts.DescriptionLimit, opts.MinDescriptions, opts.MaxDescriptions, "description", opts.DisableTruncation)
	if err != nil {
		return nil, err
	}

	var cleaned []string
	for _, p := range paths {
		s := BuildPath(p, opts)
		if s == "" {
			continue
		}
		dup := false
		for _, existing := range cleaned {
			if existing == s {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		cleaned = append(cleaned, s)
		if len(cleaned) == maxPaths {
			break
		}
	}

	return &AdGroup{
		Headlines:    h,
		Descriptions: d,
		Paths:        cleaned,
		Keywords:     ExpandMatchTypes(candidates, opts),
	}, nil
}

// BuildHeadlines produces compliant headlines from the facet list. The
// candidate text per facet is its draft headline, falling back to the
// benefit. Order follows facet order; duplicates collapse to the first
// occurrence.
func BuildHeadlines(facets []Facet, opts Options) ([]string, error) {
	opts = opts.withDefaults()
	candidates := make([]string, 0, len(facets))
	for _, f := range facets {
		text := strings.TrimSpace(f.DraftHeadline)
		if text == "" {
			text = strings.TrimSpace(f.Benefit)
		}
		candidates = append(candidates, text)
	}
	return normalizeAssets(candidates, opts.HeadlineLimit, opts.MinHeadlines, opts.MaxHeadlines, "headline", opts.DisableTruncation)
}

// BuildDescriptions produces compliant descriptions from the facet list,
// falling back to the benefit-first BAB rendering when no draft description
// is present.
func BuildDescriptions(facets []Facet, opts Options) ([]string, error) {
	opts = opts.withDefaults()
	candidates := make([]string, 0, len(facets))
	for _, f := range facets {
		text := strings.TrimSpace(f.DraftDescription)
		if text == "" {
			text = f.BAB()
		}
		candidates = append(candidates, text)
	}
	return normalizeAssets(candidates, opts.DescriptionLimit, opts.MinDescriptions, opts.MaxDescriptions, "description", opts.DisableTruncation)
}

// normalizeAssets trims, length-bounds, deduplicates and caps one asset
// list. With truncation disabled, over-length candidates are dropped; if
// that leaves too few assets the first dropped candidate is reported as a
// LengthConstraintError so the caller sees why the minimum was missed.
func normalizeAssets(candidates []string, limit, minCount, maxCount int, kind string, disableTruncation bool) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	var overLength *LengthConstraintError

	for _, text := range candidates {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if utf8.RuneCountInString(text) > limit {
			if disableTruncation {
				if overLength == nil {
					overLength = &LengthConstraintError{Kind: kind, Text: text, Length: utf8.RuneCountInString(text), Limit: limit}
				}
				continue
			}
			text = truncateAtBoundary(text, limit)
			if text == "" {
				continue
			}
		}
		key := dedupeKey(text)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, text)
	}

	if len(out) > maxCount {
		out = out[:maxCount]
	}
	if len(out) < minCount {
		if overLength != nil {
			return nil, overLength
		}
		return nil, &InsufficientContentError{Kind: kind, Got: len(out), Want: minCount}
	}
	return out, nil
}

// BuildPath slugs a brand or topic into a display-URL path segment:
// lower-cased, whitespace and underscores become hyphens, any other
// character outside [a-z0-9-] is stripped, hyphen runs collapse, and the
// result is cut to the limit at a hyphen boundary when one exists. An empty
// result means no path, which is not an error; path segments are optional.
func BuildPath(topic string, opts Options) string {
	opts = opts.withDefaults()

	s := strings.ToLower(strings.TrimSpace(topic))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-', r == '_', unicode.IsSpace(r):
			b.WriteByte('-')
		}
	}
	s = b.String()
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")

	// All remaining runes are single-byte, so byte indexing is safe.
	if len(s) > opts.PathLimit {
		if s[opts.PathLimit] == '-' {
			s = s[:opts.PathLimit]
		} else if idx := strings.LastIndexByte(s[:opts.PathLimit], '-'); idx > 0 {
			s = s[:idx]
		} else {
			s = s[:opts.PathLimit]
		}
		s = strings.Trim(s, "-")
	}
	return s
}

// ExpandMatchTypes expands each deduplicated candidate into its match-type
// encodings: broad (verbatim), phrase (double-quoted) and exact
// (bracketed). Navigational-intent candidates skip exact match unless
// enabled in Options. The expansion is pure; the broad text always equals
// the normalized phrase.
func ExpandMatchTypes(candidates []KeywordCandidate, opts Options) []KeywordMatch {
	var out []KeywordMatch
	seen := make(map[string]bool)

	for _, c := range candidates {
		phrase := normalizePhrase(c.Phrase)
		if phrase == "" || utf8.RuneCountInString(phrase) > maxKeywordRunes {
			continue
		}
		key := strings.ToLower(phrase)
		if seen[key] {
			continue
		}
		seen[key] = true

		out = append(out,
			KeywordMatch{Keyword: phrase, Type: MatchBroad, Text: phrase},
			KeywordMatch{Keyword: phrase, Type: MatchPhrase, Text: `"` + phrase + `"`},
		)
		if c.Intent != IntentNavigational || opts.ExactMatchNavigational {
			out = append(out, KeywordMatch{Keyword: phrase, Type: MatchExact, Text: "[" + phrase + "]"})
		}
	}
	return out
}

// truncateAtBoundary cuts s to at most limit runes, preferring the last
// whitespace boundary within the limit so no partial word remains. No
// ellipsis is added: truncated ad text must not look truncated. When the
// first limit runes contain no whitespace the cut is a hard cut.
func truncateAtBoundary(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return strings.TrimSpace(s)
	}
	if unicode.IsSpace(runes[limit]) {
		return strings.TrimSpace(string(runes[:limit]))
	}
	boundary := -1
	for i := limit - 1; i > 0; i-- {
		if unicode.IsSpace(runes[i]) {
			boundary = i
			break
		}
	}
	if boundary > 0 {
		return strings.TrimSpace(string(runes[:boundary]))
	}
	return strings.TrimSpace(string(runes[:limit]))
}

// dedupeKey folds case and collapses internal whitespace so "Free  Shipping"
// and "free shipping" compare equal. First occurrence wins during
// deduplication.
func dedupeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// normalizePhrase trims and collapses internal whitespace without touching
// case; keyword phrases keep their original casing in the broad encoding.
func normalizePhrase(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
