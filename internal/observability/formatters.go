// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/akuzmenko/adsmith/internal/adcopy"
	"github.com/akuzmenko/adsmith/internal/drafting"
	"github.com/akuzmenko/adsmith/internal/fab"
	"github.com/akuzmenko/adsmith/internal/ingestion"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted summary output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintWebsiteSummary outputs a human-readable summary of the extracted
// website content.
func (p *Printer) PrintWebsiteSummary(content *ingestion.WebsiteContent) {
	if content == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Domain:    %s\n", content.Domain))
	sb.WriteString(fmt.Sprintf("Title:     %s\n", content.Title))
	sb.WriteString(fmt.Sprintf("Platform:  %s\n", content.Platform))
	sb.WriteString(fmt.Sprintf("Words:     %d\n", content.WordCount))

	if len(content.Headings) > 0 {
		sb.WriteString("\nHeadings:\n")
		count := min(len(content.Headings), maxItemsToShow)
		for i := 0; i < count; i++ {
			text := content.Headings[i].Text
			if len(text) > 50 {
				text = text[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  • %s\n", text))
		}
		if len(content.Headings) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(content.Headings)-maxItemsToShow))
		}
	}

	p.printBox("WEBSITE CONTENT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAnalysis outputs the FAB breakdown of the analyzed page.
func (p *Printer) PrintAnalysis(analysis *fab.Analysis) {
	if analysis == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Product:   %s\n", analysis.ProductName))
	sb.WriteString(fmt.Sprintf("Audience:  %s\n", analysis.TargetAudience))
	if analysis.UniqueValueProposition != "" {
		uvp := analysis.UniqueValueProposition
		if len(uvp) > 44 {
			uvp = uvp[:41] + "..."
		}
		sb.WriteString(fmt.Sprintf("UVP:       %s\n", uvp))
	}

	if len(analysis.Facets) > 0 {
		sb.WriteString("\nSelling points:\n")
		count := min(len(analysis.Facets), maxItemsToShow)
		for i := 0; i < count; i++ {
			f := analysis.Facets[i]
			feature := f.Feature
			if len(feature) > 50 {
				feature = feature[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  • %s\n", feature))
			if f.Benefit != "" {
				benefit := f.Benefit
				if len(benefit) > 48 {
					benefit = benefit[:45] + "..."
				}
				sb.WriteString(fmt.Sprintf("    → %s\n", benefit))
			}
		}
		if len(analysis.Facets) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(analysis.Facets)-maxItemsToShow))
		}
	}

	p.printBox("FAB ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintKeywordPlan outputs the expanded keyword plan with per-match-type
// counts.
func (p *Printer) PrintKeywordPlan(plan []adcopy.KeywordMatch) {
	if len(plan) == 0 {
		return
	}

	counts := map[adcopy.MatchType]int{}
	for _, m := range plan {
		counts[m.Type]++
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total: %d (broad %d, phrase %d, exact %d)\n\n",
		len(plan), counts[adcopy.MatchBroad], counts[adcopy.MatchPhrase], counts[adcopy.MatchExact]))

	count := min(len(plan), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("• %-7s %s\n", plan[i].Type, plan[i].Text))
	}
	if len(plan) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more keywords", len(plan)-maxItemsToShow))
	}

	p.printBox("KEYWORD PLAN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintVariants outputs the compliant ad variants and any discards from
// the compliance pass.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintVariants(variants []drafting.Variant, discarded []drafting.Discard) {
	if len(variants) == 0 && len(discarded) == 0 {
		return
	}
	if len(variants) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "⚠ NO COMPLIANT AD VARIANTS")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d variants passed the compliance pass:\n\n", len(variants)))

	count := min(len(variants), maxItemsToShow)
	for i := 0; i < count; i++ {
		v := variants[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, v.Type))
		if len(v.AdGroup.Headlines) > 0 {
			head := v.AdGroup.Headlines[0]
			if len(head) > 45 {
				head = head[:42] + "..."
			}
			sb.WriteString(fmt.Sprintf("    %q\n", head))
		}
		sb.WriteString(fmt.Sprintf("    %d headlines, %d descriptions, %d keywords\n",
			len(v.AdGroup.Headlines), len(v.AdGroup.Descriptions), len(v.AdGroup.Keywords)))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(variants) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more variants", len(variants)-maxItemsToShow))
	}

	for i, d := range discarded {
		if i == 0 {
			sb.WriteString("\n\nDiscarded:\n")
		}
		reason := d.Reason
		if len(reason) > 42 {
			reason = reason[:39] + "..."
		}
		sb.WriteString(fmt.Sprintf("⚠ %s: %s\n", d.Type, reason))
	}

	p.printBox("AD VARIANTS", strings.TrimSuffix(sb.String(), "\n"))
}
