package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/akuzmenko/adsmith/internal/adcopy"
	"github.com/akuzmenko/adsmith/internal/drafting"
	"github.com/akuzmenko/adsmith/internal/fab"
	"github.com/akuzmenko/adsmith/internal/ingestion"
)

func TestPrintWebsiteSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	content := &ingestion.WebsiteContent{
		Domain:    "cloudlens.io",
		Title:     "CloudLens - Website Monitoring",
		Platform:  "custom",
		WordCount: 420,
		Headings: []ingestion.Heading{
			{Level: 1, Text: "CloudLens Monitoring"},
			{Level: 2, Text: "Twelve regions, thirty-second checks"},
		},
	}

	p.PrintWebsiteSummary(content)
	output := buf.String()

	assert.Contains(t, output, "WEBSITE CONTENT")
	assert.Contains(t, output, "cloudlens.io")
	assert.Contains(t, output, "420")
	assert.Contains(t, output, "CloudLens Monitoring")
}

func TestPrintWebsiteSummary_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintWebsiteSummary(nil)

	assert.Empty(t, buf.String())
}

func TestPrintAnalysis(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	analysis := &fab.Analysis{
		ProductName:            "CloudLens",
		TargetAudience:         "small engineering teams",
		UniqueValueProposition: "Thirty-second checks",
		Facets: []adcopy.Facet{
			{Feature: "Thirty-second checks", Advantage: "outages surface fast", Benefit: "Fix problems early"},
			{Feature: "Twelve regions", Benefit: "See what every user sees"},
		},
	}

	p.PrintAnalysis(analysis)
	output := buf.String()

	assert.Contains(t, output, "FAB ANALYSIS")
	assert.Contains(t, output, "CloudLens")
	assert.Contains(t, output, "small engineering teams")
	assert.Contains(t, output, "Thirty-second checks")
	assert.Contains(t, output, "Fix problems early")
}

func TestPrintAnalysis_ManyFacets(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	facets := make([]adcopy.Facet, 8)
	for i := range facets {
		facets[i] = adcopy.Facet{Feature: "feature", Benefit: "benefit"}
	}
	p.PrintAnalysis(&fab.Analysis{ProductName: "X", Facets: facets})

	assert.Contains(t, buf.String(), "... and 3 more")
}

func TestPrintKeywordPlan(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	plan := []adcopy.KeywordMatch{
		{Keyword: "website monitoring", Type: adcopy.MatchBroad, Text: "website monitoring"},
		{Keyword: "website monitoring", Type: adcopy.MatchPhrase, Text: `"website monitoring"`},
		{Keyword: "website monitoring", Type: adcopy.MatchExact, Text: "[website monitoring]"},
	}

	p.PrintKeywordPlan(plan)
	output := buf.String()

	assert.Contains(t, output, "KEYWORD PLAN")
	assert.Contains(t, output, "broad 1, phrase 1, exact 1")
	assert.Contains(t, output, "[website monitoring]")
}

func TestPrintKeywordPlan_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintKeywordPlan(nil)

	assert.Empty(t, buf.String())
}

func TestPrintVariants(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	variants := []drafting.Variant{
		{
			Type: "benefit_focused",
			AdGroup: adcopy.AdGroup{
				Headlines:    []string{"Catch Outages in Seconds", "Monitor From Everywhere", "Set Up in Minutes"},
				Descriptions: []string{"Alerts the moment something breaks.", "Checks every thirty seconds."},
			},
		},
	}
	discarded := []drafting.Discard{
		{Type: "urgency", Reason: "2 compliant headlines, need 3"},
	}

	p.PrintVariants(variants, discarded)
	output := buf.String()

	assert.Contains(t, output, "AD VARIANTS")
	assert.Contains(t, output, "benefit_focused")
	assert.Contains(t, output, "Catch Outages in Seconds")
	assert.Contains(t, output, "3 headlines, 2 descriptions")
	assert.Contains(t, output, "Discarded:")
	assert.Contains(t, output, "urgency")
}

func TestPrintVariants_NoneSurvived(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintVariants(nil, []drafting.Discard{{Type: "urgency", Reason: "too short"}})

	assert.Contains(t, buf.String(), "NO COMPLIANT AD VARIANTS")
}

func TestPrintVariants_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintVariants(nil, nil)

	assert.Empty(t, buf.String())
}

func TestPrintBox_LongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	analysis := &fab.Analysis{
		ProductName:    "A Very Long Product Name That Should Be Truncated To Fit The Box",
		TargetAudience: "an equally long audience description that overflows the frame",
	}

	p.PrintAnalysis(analysis)
	output := buf.String()

	// Should contain box characters
	assert.True(t, strings.Contains(output, "┌"))
	assert.True(t, strings.Contains(output, "└"))
	assert.True(t, strings.Contains(output, "│"))
}
