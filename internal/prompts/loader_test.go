package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("fab_analysis.json", "analyze")
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
	assert.Contains(t, prompt, "Features-Advantages-Benefits")
	assert.Contains(t, prompt, "{{.Content}}")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("fab_analysis.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestMustGet_ValidPrompt(t *testing.T) {
	ClearCache()

	assert.NotPanics(t, func() {
		prompt := MustGet("ad_variants.json", "draft")
		assert.NotEmpty(t, prompt)
	})
}

func TestFormat(t *testing.T) {
	template := "Analyze {{.ProductName}} for {{.TargetAudience}}."
	data := map[string]string{
		"ProductName":    "Aurora X100",
		"TargetAudience": "hobbyist photographers",
	}

	result := Format(template, data)
	assert.Equal(t, "Analyze Aurora X100 for hobbyist photographers.", result)
}

func TestFormat_NoPlaceholders(t *testing.T) {
	template := "No placeholders here"
	data := map[string]string{"Key": "Value"}

	result := Format(template, data)
	assert.Equal(t, template, result)
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Hello {{.Name}}"
	data := map[string]string{}

	result := Format(template, data)
	assert.Equal(t, template, result) // Placeholder remains
}

func TestFormatFile(t *testing.T) {
	ClearCache()

	prompt, err := FormatFile("keyword_generation.json", "generate", map[string]string{
		"ProductName":    "Aurora X100",
		"TargetAudience": "hobbyist photographers",
		"UVP":            "pro shots without pro complexity",
		"Features":       "- 24MP sensor\n- weather-sealed body",
		"MaxKeywords":    "20",
	})
	require.NoError(t, err)
	assert.Contains(t, prompt, "Aurora X100")
	assert.Contains(t, prompt, "up to 20 keywords")
	assert.NotContains(t, prompt, "{{.ProductName}}")
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List("ad_variants.json")
	require.NoError(t, err)
	assert.Contains(t, keys, "system")
	assert.Contains(t, keys, "draft")
}

func TestCaching(t *testing.T) {
	ClearCache()

	// First call loads from file
	prompt1, err := Get("fab_analysis.json", "analyze")
	require.NoError(t, err)

	// Second call should use cache
	prompt2, err := Get("fab_analysis.json", "analyze")
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}

func TestEmbeddedTemplatesCarryCharacterLimits(t *testing.T) {
	ClearCache()

	prompt, err := Get("ad_variants.json", "draft")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.HeadlineLimit}}")
	assert.Contains(t, prompt, "{{.DescriptionLimit}}")
	assert.Contains(t, prompt, "{{.PathLimit}}")
}
