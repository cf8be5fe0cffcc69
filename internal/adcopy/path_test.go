package adcopy

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var pathPattern = regexp.MustCompile(`^[a-z0-9-]*$`)

func TestBuildPath_SlugsTopic(t *testing.T) {
	assert.Equal(t, "photo-gear", BuildPath("Photo Gear", DefaultOptions()))
}

func TestBuildPath_TruncatesAtHyphenBoundary(t *testing.T) {
	// "premium-coffee-beans" is 20 characters; the cut lands inside
	// "beans", so the path falls back to the previous hyphen boundary.
	assert.Equal(t, "premium-coffee", BuildPath("Premium Coffee Beans", DefaultOptions()))
}

func TestBuildPath_BoundaryExactlyAtLimit(t *testing.T) {
	// The first 15 characters form complete segments; nothing extra is cut.
	assert.Equal(t, "abcdefghijklmno", BuildPath("abcdefghijklmno-xyz", DefaultOptions()))
}

func TestBuildPath_HardCutWithoutHyphen(t *testing.T) {
	assert.Equal(t, "abcdefghijklmno", BuildPath("abcdefghijklmnopqrstuv", DefaultOptions()))
}

func TestBuildPath_UnderscoresAndWhitespaceBecomeHyphens(t *testing.T) {
	assert.Equal(t, "my-brand-name", BuildPath("my_brand  name", DefaultOptions()))
}

func TestBuildPath_StripsDisallowedRunes(t *testing.T) {
	assert.Equal(t, "caf-photos", BuildPath("Café! Photos?", DefaultOptions()))
}

func TestBuildPath_CollapsesHyphenRuns(t *testing.T) {
	assert.Equal(t, "a-b-c", BuildPath("a --- b ___ c", DefaultOptions()))
}

func TestBuildPath_EmptyResultMeansAbsent(t *testing.T) {
	assert.Equal(t, "", BuildPath("!!! ???", DefaultOptions()))
	assert.Equal(t, "", BuildPath("", DefaultOptions()))
	assert.Equal(t, "", BuildPath("   ", DefaultOptions()))
}

func TestBuildPath_NeverExceedsLimitOrPattern(t *testing.T) {
	topics := []string{
		"Premium Coffee Beans", "my_brand  name", "Café! Photos?",
		"a --- b ___ c", "ALL CAPS BRAND", "hyphen-ated-topic-goes-on",
		"1234567890123456789", "x",
	}
	for _, topic := range topics {
		p := BuildPath(topic, DefaultOptions())
		assert.LessOrEqual(t, len(p), DefaultPathLimit, "topic %q", topic)
		assert.Regexp(t, pathPattern, p, "topic %q", topic)
		assert.NotContains(t, p, " ")
	}
}
