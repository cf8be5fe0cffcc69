package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText_Empty(t *testing.T) {
	assert.Equal(t, "", CleanText(""))
	assert.Equal(t, "", CleanText("   \n\t\n  "))
}

func TestCleanText_NormalizesLineEndings(t *testing.T) {
	input := "first line\r\nsecond line\rthird line"
	expected := "first line\nsecond line\nthird line"
	assert.Equal(t, expected, CleanText(input))
}

func TestCleanText_CollapsesSpaceRuns(t *testing.T) {
	input := "Premium   roasted    coffee"
	assert.Equal(t, "Premium roasted coffee", CleanText(input))
}

func TestCleanText_TrimsTrailingWhitespace(t *testing.T) {
	input := "line one   \nline two\t\t"
	assert.Equal(t, "line one\nline two", CleanText(input))
}

func TestCleanText_LimitsBlankLines(t *testing.T) {
	input := "section one\n\n\n\n\nsection two"
	assert.Equal(t, "section one\n\nsection two", CleanText(input))
}

func TestCleanText_PreservesBullets(t *testing.T) {
	input := "Features:\n- 24MP sensor\n- Weather sealed\n  - Silent shutter"
	expected := "Features:\n- 24MP sensor\n- Weather sealed\n  - Silent shutter"
	assert.Equal(t, expected, CleanText(input))
}

func TestCleanText_PreservesIndentation(t *testing.T) {
	input := "heading\n    indented   detail"
	assert.Equal(t, "heading\n    indented detail", CleanText(input))
}

func TestCleanLine_Blank(t *testing.T) {
	assert.Equal(t, "", cleanLine("   \t  "))
	assert.Equal(t, "", cleanLine(""))
}

func TestCleanLine_UnicodeBullet(t *testing.T) {
	assert.Equal(t, "• all-day battery", cleanLine("• all-day battery"))
}
