package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/akuzmenko/adsmith/internal/adcopy"
	"github.com/akuzmenko/adsmith/internal/drafting"
	"github.com/akuzmenko/adsmith/internal/fab"
	"github.com/akuzmenko/adsmith/internal/ingestion"
)

const (
	sheetAllAds       = "All Ads"
	sheetHeadlines    = "Headlines"
	sheetDescriptions = "Descriptions"
	sheetKeywords     = "Keywords"
	sheetWebsiteInfo  = "Website Info"
	sheetFABAnalysis  = "FAB Analysis"

	// Columns grow to fit their widest cell plus padding, capped so one
	// long description does not stretch the sheet off-screen.
	maxColumnWidth = 50

	timestampLayout = "20060102_150405"
)

// Exporter writes xlsx reports into a target directory.
type Exporter struct {
	dir string
}

// NewExporter creates an Exporter writing into dir. The directory is
// created on first write.
func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir}
}

// WriteAdReport writes the ad variants and the keyword plan to
// ad_copy_YYYYMMDD_HHMMSS.xlsx and returns the file path.
func (e *Exporter) WriteAdReport(variants []drafting.Variant, keywords []adcopy.KeywordMatch) (string, error) {
	if len(variants) == 0 {
		return "", &WriteError{Message: "no ad variants to export"}
	}

	wb, err := newWorkbook()
	if err != nil {
		return "", err
	}
	defer wb.close()

	if err := writeAdSheets(wb, variants, keywords); err != nil {
		return "", err
	}

	return e.save(wb, "ad_copy", sheetAllAds)
}

// WriteKeywordReport writes the keyword plan alone to
// keywords_YYYYMMDD_HHMMSS.xlsx and returns the file path. Used for
// keywords-only runs where no ad variants exist.
func (e *Exporter) WriteKeywordReport(candidates []adcopy.KeywordCandidate, keywords []adcopy.KeywordMatch) (string, error) {
	if len(keywords) == 0 {
		return "", &WriteError{Message: "no keywords to export"}
	}

	wb, err := newWorkbook()
	if err != nil {
		return "", err
	}
	defer wb.close()

	intents := make(map[string]adcopy.Intent, len(candidates))
	for _, c := range candidates {
		intents[strings.ToLower(strings.TrimSpace(c.Phrase))] = c.Intent
	}

	kw, err := wb.addSheet(sheetKeywords)
	if err != nil {
		return "", err
	}
	if err := kw.header("Keyword", "Intent", "Match Type", "Encoded"); err != nil {
		return "", err
	}
	for _, m := range keywords {
		if err := kw.append(m.Keyword, string(intents[strings.ToLower(m.Keyword)]), string(m.Type), m.Text); err != nil {
			return "", err
		}
	}
	if err := kw.autosize(); err != nil {
		return "", err
	}

	return e.save(wb, "keywords", sheetKeywords)
}

// WriteCompleteReport writes the full run (website info and FAB
// analysis ahead of the ad sheets) to complete_report_YYYYMMDD_HHMMSS.xlsx
// and returns the file path.
func (e *Exporter) WriteCompleteReport(content *ingestion.WebsiteContent, analysis *fab.Analysis, variants []drafting.Variant, keywords []adcopy.KeywordMatch) (string, error) {
	if len(variants) == 0 {
		return "", &WriteError{Message: "no ad variants to export"}
	}

	wb, err := newWorkbook()
	if err != nil {
		return "", err
	}
	defer wb.close()

	if err := writeWebsiteSheet(wb, content); err != nil {
		return "", err
	}
	if err := writeAnalysisSheet(wb, analysis); err != nil {
		return "", err
	}
	if err := writeAdSheets(wb, variants, keywords); err != nil {
		return "", err
	}

	return e.save(wb, "complete_report", sheetWebsiteInfo)
}

func (e *Exporter) save(wb *workbook, prefix, activeSheet string) (string, error) {
	if e.dir != "" {
		if err := os.MkdirAll(e.dir, 0o755); err != nil {
			return "", &WriteError{Message: "failed to create output directory", Cause: err}
		}
	}

	name := fmt.Sprintf("%s_%s.xlsx", prefix, time.Now().Format(timestampLayout))
	path := filepath.Join(e.dir, name)
	if err := wb.save(path, activeSheet); err != nil {
		return "", err
	}
	return path, nil
}

// writeAdSheets writes the four ad sheets: the per-variant overview,
// the per-asset length checks, and the encoded keyword plan.
func writeAdSheets(wb *workbook, variants []drafting.Variant, keywords []adcopy.KeywordMatch) error {
	all, err := wb.addSheet(sheetAllAds)
	if err != nil {
		return err
	}
	if err := all.header("Ad #", "Type", "Headlines", "Descriptions", "Paths", "Keywords", "Notes"); err != nil {
		return err
	}
	for i, v := range variants {
		texts := make([]string, 0, len(v.AdGroup.Keywords))
		for _, m := range v.AdGroup.Keywords {
			texts = append(texts, m.Text)
		}
		err := all.append(i+1, v.Type,
			strings.Join(v.AdGroup.Headlines, " | "),
			strings.Join(v.AdGroup.Descriptions, " | "),
			strings.Join(v.AdGroup.Paths, "/"),
			strings.Join(texts, ", "),
			v.Notes)
		if err != nil {
			return err
		}
	}
	if err := all.autosize(); err != nil {
		return err
	}

	heads, err := wb.addSheet(sheetHeadlines)
	if err != nil {
		return err
	}
	if err := heads.header("Ad #", "Headline", "Length", "Status"); err != nil {
		return err
	}
	for i, v := range variants {
		for _, h := range v.AdGroup.Headlines {
			if err := heads.append(i+1, h, utf8.RuneCountInString(h), lengthStatus(h, adcopy.DefaultHeadlineLimit)); err != nil {
				return err
			}
		}
	}
	if err := heads.autosize(); err != nil {
		return err
	}

	descs, err := wb.addSheet(sheetDescriptions)
	if err != nil {
		return err
	}
	if err := descs.header("Ad #", "Description", "Length", "Status"); err != nil {
		return err
	}
	for i, v := range variants {
		for _, d := range v.AdGroup.Descriptions {
			if err := descs.append(i+1, d, utf8.RuneCountInString(d), lengthStatus(d, adcopy.DefaultDescriptionLimit)); err != nil {
				return err
			}
		}
	}
	if err := descs.autosize(); err != nil {
		return err
	}

	kw, err := wb.addSheet(sheetKeywords)
	if err != nil {
		return err
	}
	if err := kw.header("Keyword", "Match Type", "Encoded"); err != nil {
		return err
	}
	for _, m := range keywords {
		if err := kw.append(m.Keyword, string(m.Type), m.Text); err != nil {
			return err
		}
	}
	return kw.autosize()
}

func writeWebsiteSheet(wb *workbook, content *ingestion.WebsiteContent) error {
	s, err := wb.addSheet(sheetWebsiteInfo)
	if err != nil {
		return err
	}
	if err := s.header("Field", "Value"); err != nil {
		return err
	}

	rows := [][2]any{
		{"URL", content.URL},
		{"Domain", content.Domain},
		{"Title", content.Title},
		{"Platform", content.Platform},
		{"Word Count", content.WordCount},
		{"Content Hash", content.ContentHash},
		{"Fetched At", content.FetchedAt},
	}
	for _, r := range rows {
		if err := s.append(r[0], r[1]); err != nil {
			return err
		}
	}
	return s.autosize()
}

func writeAnalysisSheet(wb *workbook, analysis *fab.Analysis) error {
	s, err := wb.addSheet(sheetFABAnalysis)
	if err != nil {
		return err
	}
	if err := s.header("Field", "Value"); err != nil {
		return err
	}

	rows := [][2]any{
		{"Product", analysis.ProductName},
		{"Target Audience", analysis.TargetAudience},
		{"Unique Value Proposition", analysis.UniqueValueProposition},
		{"Model", analysis.Model},
		{"Analyzed At", analysis.AnalyzedAt.Format(time.RFC3339)},
	}
	for _, r := range rows {
		if err := s.append(r[0], r[1]); err != nil {
			return err
		}
	}

	s.skip()
	if err := s.header("#", "Feature", "Advantage", "Benefit", "Benefit-First Copy"); err != nil {
		return err
	}
	for i, f := range analysis.Facets {
		if err := s.append(i+1, f.Feature, f.Advantage, f.Benefit, f.BAB()); err != nil {
			return err
		}
	}
	return s.autosize()
}

func lengthStatus(text string, limit int) string {
	if utf8.RuneCountInString(text) > limit {
		return "TOO LONG"
	}
	return "OK"
}

// workbook wraps an excelize file with the shared header style. Sheets
// are created in display order; the stock Sheet1 is dropped on save.
type workbook struct {
	f         *excelize.File
	boldStyle int
}

func newWorkbook() (*workbook, error) {
	f := excelize.NewFile()
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, &WriteError{Message: "failed to create header style", Cause: err}
	}
	return &workbook{f: f, boldStyle: style}, nil
}

func (w *workbook) close() {
	w.f.Close()
}

func (w *workbook) addSheet(name string) (*sheet, error) {
	if _, err := w.f.NewSheet(name); err != nil {
		return nil, &WriteError{Message: fmt.Sprintf("failed to create sheet %q", name), Cause: err}
	}
	return &sheet{wb: w, name: name}, nil
}

func (w *workbook) save(path, activeSheet string) error {
	if err := w.f.DeleteSheet("Sheet1"); err != nil {
		return &WriteError{Message: "failed to drop default sheet", Cause: err}
	}
	if idx, err := w.f.GetSheetIndex(activeSheet); err == nil && idx >= 0 {
		w.f.SetActiveSheet(idx)
	}
	if err := w.f.SaveAs(path); err != nil {
		return &WriteError{Message: fmt.Sprintf("failed to write %s", path), Cause: err}
	}
	return nil
}

// sheet appends rows top to bottom and tracks the widest cell per column
// for autosizing.
type sheet struct {
	wb     *workbook
	name   string
	row    int
	widths []int
}

// header appends a row and styles it bold.
func (s *sheet) header(cells ...string) error {
	vals := make([]any, len(cells))
	for i, c := range cells {
		vals[i] = c
	}
	if err := s.append(vals...); err != nil {
		return err
	}

	first, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return &WriteError{Message: "failed to address header row", Cause: err}
	}
	last, err := excelize.CoordinatesToCellName(len(cells), s.row)
	if err != nil {
		return &WriteError{Message: "failed to address header row", Cause: err}
	}
	if err := s.wb.f.SetCellStyle(s.name, first, last, s.wb.boldStyle); err != nil {
		return &WriteError{Message: fmt.Sprintf("failed to style header on %q", s.name), Cause: err}
	}
	return nil
}

func (s *sheet) append(cells ...any) error {
	s.row++
	for i, v := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, s.row)
		if err != nil {
			return &WriteError{Message: fmt.Sprintf("failed to address cell on %q", s.name), Cause: err}
		}
		if err := s.wb.f.SetCellValue(s.name, cell, v); err != nil {
			return &WriteError{Message: fmt.Sprintf("failed to write cell %s on %q", cell, s.name), Cause: err}
		}
		s.track(i, v)
	}
	return nil
}

// skip leaves one empty row.
func (s *sheet) skip() {
	s.row++
}

func (s *sheet) track(col int, v any) {
	w := utf8.RuneCountInString(fmt.Sprint(v))
	for len(s.widths) <= col {
		s.widths = append(s.widths, 0)
	}
	if w > s.widths[col] {
		s.widths[col] = w
	}
}

func (s *sheet) autosize() error {
	for i, w := range s.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return &WriteError{Message: fmt.Sprintf("failed to name column %d", i+1), Cause: err}
		}
		width := float64(w + 2)
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		if err := s.wb.f.SetColWidth(s.name, col, col, width); err != nil {
			return &WriteError{Message: fmt.Sprintf("failed to size column %s on %q", col, s.name), Cause: err}
		}
	}
	return nil
}
