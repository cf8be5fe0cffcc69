package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/akuzmenko/adsmith/internal/adcopy"
	"github.com/akuzmenko/adsmith/internal/drafting"
	"github.com/akuzmenko/adsmith/internal/fab"
	"github.com/akuzmenko/adsmith/internal/llm"
	"github.com/akuzmenko/adsmith/internal/pipeline"
)

// AnalyzeRequest represents the request body for /api/analyze
type AnalyzeRequest struct {
	URL          string `json:"url" validate:"required,url"`
	Provider     string `json:"provider,omitempty" validate:"omitempty,oneof=gemini google openai anthropic groq ollama"`
	Model        string `json:"model,omitempty"`
	KeywordsOnly bool   `json:"keywords_only,omitempty"`
	SkipExport   bool   `json:"skip_export,omitempty"`
	MaxKeywords  int    `json:"max_keywords,omitempty" validate:"omitempty,min=1,max=100"`
	NoTruncate   bool   `json:"no_truncate,omitempty"`
}

// AnalyzeResponse represents the JSON result envelope for /api/analyze
type AnalyzeResponse struct {
	RunID      string                    `json:"run_id,omitempty"`
	URL        string                    `json:"url"`
	Domain     string                    `json:"domain,omitempty"`
	Title      string                    `json:"title,omitempty"`
	Platform   string                    `json:"platform,omitempty"`
	WordCount  int                       `json:"word_count,omitempty"`
	FromCache  bool                      `json:"from_cache"`
	Analysis   *fab.Analysis             `json:"analysis,omitempty"`
	Candidates []adcopy.KeywordCandidate `json:"keyword_candidates,omitempty"`
	Keywords   []adcopy.KeywordMatch     `json:"keyword_plan,omitempty"`
	Variants   []drafting.Variant        `json:"ad_variants,omitempty"`
	Discarded  []drafting.Discard        `json:"discarded,omitempty"`
	ReportURL  string                    `json:"report_url,omitempty"`
}

// handleAnalyze runs the analysis pipeline for one URL. With ?stream=1 the
// run is relayed as SSE progress events; otherwise the full result is
// returned as one JSON envelope.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	if isStreamRequest(r) {
		s.streamAnalyze(w, r, &req)
		return
	}

	opts := s.runOptionsFor(&req)

	log.Printf("Starting analysis for %s", req.URL)
	res, err := pipeline.Run(r.Context(), opts)
	if err != nil {
		log.Printf("Analysis failed for %s: %v", req.URL, err)
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, s.analyzeResponse(req.URL, res))
}

// streamAnalyze runs the pipeline synchronously, relaying progress as SSE
// step events.
func (s *Server) streamAnalyze(w http.ResponseWriter, r *http.Request, req *AnalyzeRequest) {
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("Starting streaming analysis for %s", req.URL)

	opts := s.runOptionsFor(req)
	opts.Progress = func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent("step", event); err != nil {
			log.Printf("Error writing SSE event: %v", err)
		}
	}

	res, err := pipeline.Run(r.Context(), opts)
	if err != nil {
		log.Printf("Analysis failed for %s: %v", req.URL, err)
		sse.WriteError(err.Error())
		return
	}

	runID := ""
	if res.RunID != uuid.Nil {
		runID = res.RunID.String()
	}
	sse.WriteComplete(runID, "completed", reportURL(res.ReportPath))
	log.Printf("Streaming analysis completed for %s", req.URL)
}

// runOptionsFor assembles pipeline options from the request and the
// server configuration.
func (s *Server) runOptionsFor(req *AnalyzeRequest) pipeline.RunOptions {
	cfg := s.configSnapshot()

	provider := req.Provider
	if provider == "" {
		provider = cfg.AIProvider
	}
	model := req.Model
	if model == "" {
		model = cfg.AIModel
	}
	maxKeywords := req.MaxKeywords
	if maxKeywords == 0 {
		maxKeywords = cfg.MaxKeywords
	}

	return pipeline.RunOptions{
		URL:               req.URL,
		OutputDir:         cfg.OutputDir,
		Provider:          provider,
		APIKey:            cfg.APIKeyFor(provider),
		Model:             model,
		Client:            s.llmClient,
		KeywordsOnly:      req.KeywordsOnly,
		SkipExport:        req.SkipExport,
		UseBrowser:        cfg.UseBrowser,
		DisableTruncation: req.NoTruncate,
		MaxKeywords:       maxKeywords,
		DatabaseURL:       cfg.DatabaseURL,
		Verbose:           cfg.Verbose,
	}
}

// analyzeResponse maps a pipeline result onto the response envelope.
func (s *Server) analyzeResponse(url string, res *pipeline.Result) AnalyzeResponse {
	resp := AnalyzeResponse{
		URL:        url,
		FromCache:  res.FromCache,
		Analysis:   res.Analysis,
		Candidates: res.Candidates,
		Keywords:   res.Keywords,
		Variants:   res.Variants,
		Discarded:  res.Discarded,
		ReportURL:  reportURL(res.ReportPath),
	}
	if res.RunID != uuid.Nil {
		resp.RunID = res.RunID.String()
	}
	if res.Content != nil {
		resp.Domain = res.Content.Domain
		resp.Title = res.Content.Title
		resp.Platform = res.Content.Platform
		resp.WordCount = res.Content.WordCount
	}
	return resp
}

// reportURL converts an exported file path into its download endpoint.
func reportURL(reportPath string) string {
	if reportPath == "" {
		return ""
	}
	return "/api/download/" + filepath.Base(reportPath)
}

// isStreamRequest reports whether the client asked for SSE progress.
func isStreamRequest(r *http.Request) bool {
	stream := r.URL.Query().Get("stream")
	return stream == "1" || strings.EqualFold(stream, "true")
}

// handleDownload serves an exported report from the output directory.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	if filename == "" {
		s.errorResponse(w, http.StatusBadRequest, "Filename is required")
		return
	}

	// The name must be a bare file name; anything that resolves outside
	// the output directory is rejected.
	if filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		s.errorResponse(w, http.StatusBadRequest, "Invalid filename")
		return
	}

	cfg := s.configSnapshot()
	path := filepath.Join(cfg.OutputDir, filename)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		nf := &ErrNotFound{Resource: "report", Name: filename}
		s.errorResponse(w, HTTPStatus(nf), nf.Error())
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, r, path)
}

// ProviderInfo describes one selectable LLM backend.
type ProviderInfo struct {
	Name      string            `json:"name"`
	Models    map[string]string `json:"models"`
	KeyEnvVar string            `json:"key_env_var,omitempty"`
	Local     bool              `json:"local,omitempty"`
}

// handleProviders lists the supported LLM providers with their default
// tier models.
func (s *Server) handleProviders(w http.ResponseWriter, _ *http.Request) {
	providers := []llm.Provider{
		llm.ProviderGemini,
		llm.ProviderOpenAI,
		llm.ProviderAnthropic,
		llm.ProviderGroq,
		llm.ProviderOllama,
	}

	out := make([]ProviderInfo, 0, len(providers))
	for _, p := range providers {
		cfg := llm.ConfigForProvider(p)
		models := make(map[string]string, len(cfg.Models))
		for tier, model := range cfg.Models {
			models[string(tier)] = model
		}

		info := ProviderInfo{Name: string(p), Models: models}
		switch p {
		case llm.ProviderOpenAI:
			info.KeyEnvVar = "OPENAI_API_KEY"
		case llm.ProviderAnthropic:
			info.KeyEnvVar = "ANTHROPIC_API_KEY"
		case llm.ProviderGroq:
			info.KeyEnvVar = "GROQ_API_KEY"
		case llm.ProviderOllama:
			info.Local = true
		default:
			info.KeyEnvVar = "GEMINI_API_KEY"
		}
		out = append(out, info)
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"providers": out,
		"default":   string(llm.ProviderGemini),
	})
}

// handleGetConfig returns the effective configuration with secrets masked.
func (s *Server) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	cfg := s.configSnapshot()
	s.jsonResponse(w, http.StatusOK, cfg.Masked())
}

// ConfigUpdateRequest is the runtime-updatable configuration subset.
// Pointer fields distinguish "not sent" from a zero value.
type ConfigUpdateRequest struct {
	OutputDir   *string `json:"output_dir,omitempty"`
	AIProvider  *string `json:"ai_provider,omitempty" validate:"omitempty,oneof=gemini google openai anthropic groq ollama"`
	AIModel     *string `json:"ai_model,omitempty"`
	MaxKeywords *int    `json:"max_keywords,omitempty" validate:"omitempty,min=1,max=100"`
	UseBrowser  *bool   `json:"use_browser,omitempty"`
	Verbose     *bool   `json:"verbose,omitempty"`
}

// handleUpdateConfig applies a runtime configuration update and returns
// the new effective configuration.
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req ConfigUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	s.mu.Lock()
	if req.OutputDir != nil {
		s.cfg.OutputDir = *req.OutputDir
	}
	if req.AIProvider != nil {
		s.cfg.AIProvider = *req.AIProvider
	}
	if req.AIModel != nil {
		s.cfg.AIModel = *req.AIModel
	}
	if req.MaxKeywords != nil {
		s.cfg.MaxKeywords = *req.MaxKeywords
	}
	if req.UseBrowser != nil {
		s.cfg.UseBrowser = *req.UseBrowser
	}
	if req.Verbose != nil {
		s.cfg.Verbose = *req.Verbose
	}
	updated := s.cfg
	s.mu.Unlock()

	log.Printf("Configuration updated")
	s.jsonResponse(w, http.StatusOK, updated.Masked())
}
