package fab

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akuzmenko/adsmith/internal/adcopy"
	"github.com/akuzmenko/adsmith/internal/ingestion"
	"github.com/akuzmenko/adsmith/internal/llm"
)

// fakeClient satisfies llm.Client with canned responses for tests.
type fakeClient struct {
	response   string
	err        error
	lastPrompt string
	lastTier   llm.ModelTier
}

func (f *fakeClient) GenerateContent(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	f.lastPrompt = prompt
	f.lastTier = tier
	return f.response, f.err
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	f.lastPrompt = prompt
	f.lastTier = tier
	return f.response, f.err
}

func (f *fakeClient) GetModel(llm.ModelTier) string { return "fake-model" }

func (f *fakeClient) Close() error { return nil }

func sampleContent() *ingestion.WebsiteContent {
	return &ingestion.WebsiteContent{
		URL:             "https://auroracameras.com/products/x100",
		Domain:          "auroracameras.com",
		Title:           "Aurora X100 Mirrorless Camera",
		MetaDescription: "A 24MP sensor in a pocketable body.",
		Headings: []ingestion.Heading{
			{Level: 1, Text: "Aurora X100"},
			{Level: 2, Text: "Why photographers choose Aurora"},
		},
		MainText:  "Sharp low-light shots from a 24MP back-illuminated sensor. Weather-sealed body. All-day battery.",
		WordCount: 15,
	}
}

const validAnalysisJSON = `{
	"product_name": "Aurora X100",
	"target_audience": "Enthusiast photographers",
	"unique_value_proposition": "Pro image quality in a pocketable body.",
	"fab_statements": [
		{
			"feature": "24MP back-illuminated sensor",
			"advantage": "sharp shots in low light",
			"benefit": "never miss a memory",
			"draft_headline": "Never Miss a Memory",
			"draft_description": "Sharp low-light shots from a 24MP sensor."
		},
		{
			"feature": "weather-sealed body",
			"advantage": "shoots in rain and dust",
			"benefit": "take it anywhere"
		}
	]
}`

func TestAnalyze_Success(t *testing.T) {
	client := &fakeClient{response: validAnalysisJSON}
	analyzer := NewAnalyzer(client)

	analysis, err := analyzer.Analyze(context.Background(), sampleContent())
	require.NoError(t, err)

	assert.Equal(t, "Aurora X100", analysis.ProductName)
	assert.Equal(t, "Enthusiast photographers", analysis.TargetAudience)
	assert.Equal(t, "Pro image quality in a pocketable body.", analysis.UniqueValueProposition)
	require.Len(t, analysis.Facets, 2)
	assert.Equal(t, "24MP back-illuminated sensor", analysis.Facets[0].Feature)
	assert.Equal(t, "never miss a memory", analysis.Facets[0].Benefit)
	assert.Equal(t, "fake-model", analysis.Model)
	assert.False(t, analysis.AnalyzedAt.IsZero())

	// The prompt carries the page content and the JSON tier is used
	assert.Contains(t, client.lastPrompt, "Aurora X100 Mirrorless Camera")
	assert.Contains(t, client.lastPrompt, "back-illuminated sensor")
	assert.Equal(t, llm.TierStandard, client.lastTier)
}

func TestAnalyze_MarkdownFencedResponse(t *testing.T) {
	client := &fakeClient{response: "```json\n" + validAnalysisJSON + "\n```"}
	analyzer := NewAnalyzer(client)

	analysis, err := analyzer.Analyze(context.Background(), sampleContent())
	require.NoError(t, err)
	assert.Equal(t, "Aurora X100", analysis.ProductName)
}

func TestAnalyze_EmptyContent(t *testing.T) {
	analyzer := NewAnalyzer(&fakeClient{response: validAnalysisJSON})

	tests := []struct {
		name    string
		content *ingestion.WebsiteContent
	}{
		{"nil content", nil},
		{"whitespace only", &ingestion.WebsiteContent{MainText: "   \n\t"}},
		{"all fields empty", &ingestion.WebsiteContent{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := analyzer.Analyze(context.Background(), tt.content)
			require.Error(t, err)

			var validationErr *adcopy.ValidationError
			assert.ErrorAs(t, err, &validationErr)
			assert.Contains(t, err.Error(), "no content to advertise")
		})
	}
}

func TestAnalyze_TitleOnlyContentIsUsable(t *testing.T) {
	client := &fakeClient{response: validAnalysisJSON}
	analyzer := NewAnalyzer(client)

	content := &ingestion.WebsiteContent{Title: "Aurora X100 Camera"}
	_, err := analyzer.Analyze(context.Background(), content)
	assert.NoError(t, err)
}

func TestAnalyze_APIError(t *testing.T) {
	client := &fakeClient{err: errors.New("rate limited")}
	analyzer := NewAnalyzer(client)

	_, err := analyzer.Analyze(context.Background(), sampleContent())
	require.Error(t, err)

	var apiErr *APICallError
	assert.ErrorAs(t, err, &apiErr)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestAnalyze_MalformedResponse(t *testing.T) {
	client := &fakeClient{response: "sorry, I cannot help with that"}
	analyzer := NewAnalyzer(client)

	_, err := analyzer.Analyze(context.Background(), sampleContent())
	require.Error(t, err)

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestAnalyze_SchemaViolation(t *testing.T) {
	// Valid JSON but missing required product_name
	client := &fakeClient{response: `{"target_audience": "everyone", "fab_statements": [{"feature": "f", "advantage": "a", "benefit": "b"}]}`}
	analyzer := NewAnalyzer(client)

	_, err := analyzer.Analyze(context.Background(), sampleContent())
	require.Error(t, err)

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
	assert.Contains(t, err.Error(), "schema validation")
}

func TestAnalyze_DropsFacetsWithoutBenefit(t *testing.T) {
	client := &fakeClient{response: `{
		"product_name": "Aurora X100",
		"target_audience": "photographers",
		"fab_statements": [
			{"feature": "24MP sensor", "advantage": "sharp", "benefit": "  "},
			{"feature": "weather sealed", "advantage": "rainproof", "benefit": "take it anywhere"}
		]
	}`}
	analyzer := NewAnalyzer(client)

	analysis, err := analyzer.Analyze(context.Background(), sampleContent())
	require.NoError(t, err)
	require.Len(t, analysis.Facets, 1)
	assert.Equal(t, "take it anywhere", analysis.Facets[0].Benefit)
}

func TestAnalyze_AllFacetsUnusable(t *testing.T) {
	client := &fakeClient{response: `{
		"product_name": "Aurora X100",
		"target_audience": "photographers",
		"fab_statements": [
			{"feature": "24MP sensor", "advantage": "sharp", "benefit": ""}
		]
	}`}
	analyzer := NewAnalyzer(client)

	_, err := analyzer.Analyze(context.Background(), sampleContent())
	require.Error(t, err)

	var validationErr *adcopy.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Contains(t, err.Error(), "no usable selling points")
}

func TestAnalyze_TrimsFields(t *testing.T) {
	client := &fakeClient{response: `{
		"product_name": "  Aurora X100  ",
		"target_audience": "\tphotographers ",
		"fab_statements": [
			{"feature": " 24MP sensor ", "advantage": " sharp ", "benefit": " never miss a memory "}
		]
	}`}
	analyzer := NewAnalyzer(client)

	analysis, err := analyzer.Analyze(context.Background(), sampleContent())
	require.NoError(t, err)
	assert.Equal(t, "Aurora X100", analysis.ProductName)
	assert.Equal(t, "photographers", analysis.TargetAudience)
	assert.Equal(t, "24MP sensor", analysis.Facets[0].Feature)
	assert.Equal(t, "never miss a memory", analysis.Facets[0].Benefit)
}

func TestAnalysis_Breakdown(t *testing.T) {
	analysis := &Analysis{
		ProductName: "Aurora X100",
		Facets: []adcopy.Facet{
			{Feature: "24MP sensor", Advantage: "sharp", Benefit: "never miss a memory"},
		},
	}

	b := analysis.Breakdown()
	assert.Equal(t, "Aurora X100", b.Topic)
	assert.Len(t, b.Facets, 1)
}

func TestAnalysis_FacetLines(t *testing.T) {
	analysis := &Analysis{
		Facets: []adcopy.Facet{
			{Feature: "24MP sensor", Benefit: "never miss a memory"},
			{Feature: "weather sealed"},
		},
	}

	lines := analysis.FacetLines()
	assert.Contains(t, lines, "- 24MP sensor: never miss a memory\n")
	assert.Contains(t, lines, "- weather sealed\n")
}

func TestAnalysis_BABLines(t *testing.T) {
	analysis := &Analysis{
		Facets: []adcopy.Facet{
			{Feature: "24MP sensor", Advantage: "sharp low-light shots", Benefit: "never miss a memory"},
		},
	}

	lines := analysis.BABLines()
	assert.Equal(t, "- never miss a memory. sharp low-light shots. 24MP sensor.\n", lines)
}

func TestCapContent(t *testing.T) {
	assert.Equal(t, "short", capContent("short", 100))
	assert.Equal(t, "short", capContent("short", 0))

	long := "alpha beta gamma delta"
	capped := capContent(long, 16) // cuts inside "gamma"
	assert.Equal(t, "alpha beta", capped)
}
