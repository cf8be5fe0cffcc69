// Package pipeline orchestrates a full ad-copy analysis run: fetch the
// page, extract its content, break it into FAB selling points, derive
// keywords and draft ad variants, and export the report. Persistence
// and progress reporting are optional; without them the pipeline
// degrades to a pure in-memory run.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/akuzmenko/adsmith/internal/adcopy"
	"github.com/akuzmenko/adsmith/internal/db"
	"github.com/akuzmenko/adsmith/internal/drafting"
	"github.com/akuzmenko/adsmith/internal/export"
	"github.com/akuzmenko/adsmith/internal/fab"
	"github.com/akuzmenko/adsmith/internal/fetch"
	"github.com/akuzmenko/adsmith/internal/ingestion"
	"github.com/akuzmenko/adsmith/internal/keywords"
	"github.com/akuzmenko/adsmith/internal/llm"
	"github.com/akuzmenko/adsmith/internal/observability"
)

// RunOptions configures a pipeline run.
type RunOptions struct {
	// URL is the page to analyze. Required.
	URL string
	// OutputDir is where reports are written. Empty means the current
	// directory.
	OutputDir string

	// Provider, APIKey, and Model select the LLM backend. Client
	// overrides all three when set; the pipeline then neither creates
	// nor closes the client.
	Provider string
	APIKey   string
	Model    string
	Client   llm.Client

	// KeywordsOnly stops after keyword generation; no ad variants are
	// drafted and the export shrinks to the keyword plan.
	KeywordsOnly bool
	// SkipExport suppresses report writing entirely.
	SkipExport bool
	// UseBrowser enables the headless-browser fallback for
	// JavaScript-rendered sites.
	UseBrowser bool
	// DisableTruncation rejects over-length ad copy instead of
	// shortening it at a word boundary.
	DisableTruncation bool
	// MaxKeywords caps the keyword candidates requested from the model.
	MaxKeywords int

	// DatabaseURL enables run persistence and the page cache.
	// Connection failures degrade to an in-memory run, never abort it.
	DatabaseURL string

	Verbose  bool
	Progress ProgressCallback
}

// Result carries everything a run produced.
type Result struct {
	RunID      uuid.UUID
	Content    *ingestion.WebsiteContent
	Analysis   *fab.Analysis
	Candidates []adcopy.KeywordCandidate
	Keywords   []adcopy.KeywordMatch
	Variants   []drafting.Variant
	Discarded  []drafting.Discard
	ReportPath string
	FromCache  bool
}

// Run executes the analysis pipeline for one URL.
func Run(ctx context.Context, opts RunOptions) (*Result, error) {
	if strings.TrimSpace(opts.URL) == "" {
		return nil, fmt.Errorf("url is required")
	}

	printer := observability.NewPrinter(os.Stdout)

	// Database connection is optional; analysis works without it.
	var database *db.DB
	if opts.DatabaseURL != "" {
		var err error
		database, err = db.Connect(ctx, opts.DatabaseURL)
		if err != nil {
			fmt.Printf("Warning: Failed to connect to database: %v\n", err)
			fmt.Println("Continuing without database persistence...")
			database = nil
		} else {
			defer database.Close()
			if opts.Verbose {
				log.Printf("[VERBOSE] Connected to database")
			}
		}
	}

	client := opts.Client
	if client == nil {
		provider := llm.ParseProvider(opts.Provider)
		config := llm.ConfigForProvider(provider)
		if opts.Model != "" {
			config = config.WithModelForAllTiers(opts.Model)
		}
		var err error
		client, err = llm.NewClient(ctx, config, opts.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		defer func() { _ = client.Close() }()
	}

	fetchOpts := fetch.DefaultOptions()
	fetchOpts.UseBrowser = opts.UseBrowser
	fetchOpts.Verbose = opts.Verbose

	fmt.Printf("Step %d/%d: Fetching %s\n", stepNumber(db.StepWebsiteContent), TotalSteps, opts.URL)
	emitProgress(opts, uuid.Nil, db.StepWebsiteContent, "Fetching page content", nil, nil)

	fetcher := fetch.NewCachedFetcher(database, &fetch.CachedFetcherConfig{Options: fetchOpts})
	fetched, err := fetcher.Fetch(ctx, opts.URL)
	if err != nil {
		emitProgress(opts, uuid.Nil, db.StepWebsiteContent, "Fetch failed", nil, err)
		return nil, fmt.Errorf("failed to fetch %s: %w", opts.URL, err)
	}
	if fetched.FromCache {
		fmt.Println("  Using cached page content")
	}

	fmt.Printf("Step %d/%d: Extracting content\n", stepNumber(db.StepPageText), TotalSteps)
	content, err := ingestion.FromFetchResult(opts.URL, fetched.Result)
	if err != nil {
		emitProgress(opts, uuid.Nil, db.StepPageText, "Extraction failed", nil, err)
		return nil, fmt.Errorf("failed to extract content: %w", err)
	}

	var runID uuid.UUID
	if database != nil {
		id, err := database.CreateRun(ctx, opts.URL, content.Domain)
		if err != nil {
			fmt.Printf("Warning: Failed to create run record: %v\n", err)
		} else {
			runID = id
			if opts.Verbose {
				log.Printf("[VERBOSE] Created analysis run %s", runID)
			}
		}
	}
	if database != nil && runID != uuid.Nil {
		_ = database.SaveArtifact(ctx, runID, db.StepWebsiteContent, db.CategoryIngestion, content)
		_ = database.SaveTextArtifact(ctx, runID, db.StepPageText, db.CategoryIngestion, content.MainText)
	}
	emitProgress(opts, runID, db.StepPageText, "Extracted main content", map[string]any{
		"domain":     content.Domain,
		"title":      content.Title,
		"platform":   content.Platform,
		"word_count": content.WordCount,
		"from_cache": fetched.FromCache,
	}, nil)

	fmt.Printf("Step %d/%d: Analyzing selling points\n", stepNumber(db.StepFABAnalysis), TotalSteps)
	analysis, err := fab.NewAnalyzer(client).Analyze(ctx, content)
	if err != nil {
		emitProgress(opts, runID, db.StepFABAnalysis, "Analysis failed", nil, err)
		failRun(ctx, database, runID)
		return nil, fmt.Errorf("failed to analyze content: %w", err)
	}
	if database != nil && runID != uuid.Nil {
		_ = database.SaveArtifact(ctx, runID, db.StepFABAnalysis, db.CategoryAnalysis, analysis)
		if analysis.ProductName != "" {
			if err := database.SetRunProduct(ctx, runID, analysis.ProductName); err != nil && opts.Verbose {
				log.Printf("[VERBOSE] Failed to record product name: %v", err)
			}
		}
	}
	emitProgress(opts, runID, db.StepFABAnalysis, "Analysis complete", analysis, nil)
	printer.PrintAnalysis(analysis)

	adOpts := adcopy.DefaultOptions()
	adOpts.DisableTruncation = opts.DisableTruncation

	kwOpts := keywords.DefaultOptions()
	if opts.MaxKeywords > 0 {
		kwOpts.MaxKeywords = opts.MaxKeywords
	}

	// The draft prompt is seeded with deterministic keywords so drafting
	// never waits on the keyword model; the generated candidates stay
	// authoritative for the exported plan.
	seed := keywords.Fallback(analysis, kwOpts.MaxKeywords)

	generateKeywords := func(ctx context.Context) []adcopy.KeywordCandidate {
		cands, err := keywords.NewGenerator(client).Generate(ctx, analysis, kwOpts)
		if err != nil {
			fmt.Printf("Warning: Keyword generation failed: %v\n", err)
			fmt.Println("Continuing with keywords derived from the analysis...")
			return seed
		}
		return cands
	}

	var (
		candidates []adcopy.KeywordCandidate
		draft      *drafting.DraftResult
	)

	if opts.KeywordsOnly {
		fmt.Printf("Step %d/%d: Generating keyword candidates\n", stepNumber(db.StepKeywords), TotalSteps)
		candidates = generateKeywords(ctx)
		emitProgress(opts, runID, db.StepKeywords, "Keyword candidates ready", candidates, nil)
		emitProgress(opts, runID, db.StepAdVariants, "Drafting skipped (keywords only)", nil, nil)
	} else {
		fmt.Println("🚀 Generating keywords and drafting ad copy in parallel...")
		var mu sync.Mutex
		g, gCtx := errgroup.WithContext(ctx)

		g.Go(func() error {
			fmt.Printf("Step %d/%d: Generating keyword candidates\n", stepNumber(db.StepKeywords), TotalSteps)
			cands := generateKeywords(gCtx)
			mu.Lock()
			candidates = cands
			mu.Unlock()
			return nil
		})

		g.Go(func() error {
			fmt.Printf("Step %d/%d: Drafting ad variants\n", stepNumber(db.StepAdVariants), TotalSteps)
			result, err := drafting.NewDrafter(client).Draft(gCtx, analysis, seed, adOpts)
			if err != nil {
				return fmt.Errorf("failed to draft ad variants: %w", err)
			}
			mu.Lock()
			draft = result
			mu.Unlock()
			return nil
		})

		// Progress events stay on the caller's goroutine and in stage
		// order, so they are emitted after the join, not from inside
		// the branches.
		if err := g.Wait(); err != nil {
			// The keyword branch falls back instead of failing, so a
			// group error always comes from the drafting branch.
			emitProgress(opts, runID, db.StepKeywords, "Keyword candidates ready", candidates, nil)
			emitProgress(opts, runID, db.StepAdVariants, "Drafting failed", nil, err)
			failRun(ctx, database, runID)
			return nil, err
		}
		fmt.Println("✅ Both branches completed.")
		emitProgress(opts, runID, db.StepKeywords, "Keyword candidates ready", candidates, nil)
		emitProgress(opts, runID, db.StepAdVariants, "Ad variants ready", draft, nil)
	}

	plan := adcopy.ExpandMatchTypes(candidates, adOpts)

	if database != nil && runID != uuid.Nil {
		_ = database.SaveArtifact(ctx, runID, db.StepKeywords, db.CategoryKeywords, map[string]any{
			"candidates": candidates,
			"plan":       plan,
		})
		if draft != nil {
			_ = database.SaveArtifact(ctx, runID, db.StepAdVariants, db.CategoryDrafting, draft)
		}
	}

	printer.PrintKeywordPlan(plan)
	if draft != nil {
		printer.PrintVariants(draft.Variants, draft.Discarded)
	}

	res := &Result{
		RunID:      runID,
		Content:    content,
		Analysis:   analysis,
		Candidates: candidates,
		Keywords:   plan,
		FromCache:  fetched.FromCache,
	}
	if draft != nil {
		res.Variants = draft.Variants
		res.Discarded = draft.Discarded
	}

	if opts.SkipExport {
		fmt.Printf("Step %d/%d: Export skipped\n", stepNumber(db.StepReport), TotalSteps)
		emitProgress(opts, runID, db.StepReport, "Export skipped", nil, nil)
	} else {
		fmt.Printf("Step %d/%d: Exporting report\n", stepNumber(db.StepReport), TotalSteps)
		exporter := export.NewExporter(opts.OutputDir)
		var path string
		if opts.KeywordsOnly {
			path, err = exporter.WriteKeywordReport(candidates, plan)
		} else {
			path, err = exporter.WriteCompleteReport(content, analysis, res.Variants, plan)
		}
		if err != nil {
			emitProgress(opts, runID, db.StepReport, "Export failed", nil, err)
			failRun(ctx, database, runID)
			return nil, fmt.Errorf("failed to export report: %w", err)
		}
		res.ReportPath = path
		fmt.Printf("  Report saved to %s\n", path)
		emitProgress(opts, runID, db.StepReport, "Report written", map[string]any{"path": path}, nil)
		if database != nil && runID != uuid.Nil {
			_ = database.SaveArtifact(ctx, runID, db.StepReport, db.CategoryExport, map[string]any{"path": path})
		}
	}

	if database != nil && runID != uuid.Nil {
		if err := database.CompleteRun(ctx, runID, db.RunStatusCompleted); err != nil && opts.Verbose {
			log.Printf("[VERBOSE] Failed to mark run complete: %v", err)
		}
	}

	fmt.Printf("Done. %d keywords, %d ad variants.\n", len(plan), len(res.Variants))
	return res, nil
}

// failRun marks a persisted run failed, best effort.
func failRun(ctx context.Context, database *db.DB, runID uuid.UUID) {
	if database == nil || runID == uuid.Nil {
		return
	}
	_ = database.CompleteRun(ctx, runID, db.RunStatusFailed)
}
