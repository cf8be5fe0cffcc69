package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/akuzmenko/adsmith/internal/googleads"
)

// ads returns the reporting client, or the configuration error that is
// keeping it unavailable.
func (s *Server) ads() (*googleads.Client, error) {
	if s.adsClient == nil {
		return nil, &ErrAdsNotConfigured{Cause: s.adsErr}
	}
	return s.adsClient, nil
}

// adsParams holds the query parameters shared by the reporting endpoints.
type adsParams struct {
	customerID string
	dateRange  googleads.DateRange
	campaignID string
	adGroupID  string
}

func parseAdsParams(r *http.Request) (adsParams, error) {
	q := r.URL.Query()
	p := adsParams{
		customerID: q.Get("customer_id"),
		campaignID: q.Get("campaign_id"),
		adGroupID:  q.Get("ad_group_id"),
	}
	if raw := q.Get("date_range"); raw != "" {
		dr, err := googleads.ParseDateRange(raw)
		if err != nil {
			return p, &ErrValidation{Field: "date_range", Message: err.Error()}
		}
		p.dateRange = dr
	}
	return p, nil
}

func (p adsParams) window(def googleads.DateRange) googleads.DateRange {
	if p.dateRange == "" {
		return def
	}
	return p.dateRange
}

// intParam parses an optional numeric query parameter.
func intParam(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, &ErrValidation{Field: name, Message: "must be a non-negative integer"}
	}
	return n, nil
}

// runAdsReport executes one canned query and writes the report envelope.
func (s *Server) runAdsReport(w http.ResponseWriter, r *http.Request, report *googleads.Report, customerID, query string) {
	client, err := s.ads()
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	rows, err := client.Search(r.Context(), customerID, query)
	if err != nil {
		log.Printf("Google Ads query failed: %v", err)
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	report.Count = len(rows)
	report.Rows = rows
	s.jsonResponse(w, http.StatusOK, report)
}

// handleAdsStatus reports whether Google Ads reporting is available and,
// when it is not, why.
func (s *Server) handleAdsStatus(w http.ResponseWriter, _ *http.Request) {
	status := map[string]any{"configured": s.adsClient != nil}
	if s.adsErr != nil {
		status["error"] = s.adsErr.Error()
	}
	s.jsonResponse(w, http.StatusOK, status)
}

// handleAdsAccounts lists the customer accounts the credentials can access.
func (s *Server) handleAdsAccounts(w http.ResponseWriter, r *http.Request) {
	client, err := s.ads()
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	ids, err := client.ListAccessibleCustomers(r.Context())
	if err != nil {
		log.Printf("Google Ads account listing failed: %v", err)
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"accounts": ids,
		"count":    len(ids),
	})
}

func (s *Server) handleAdsAccountSummary(w http.ResponseWriter, r *http.Request) {
	p, err := parseAdsParams(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	window := p.window(googleads.DateRangeLast30Days)
	report := &googleads.Report{Tool: googleads.ToolAccountSummary, DateRange: window}
	s.runAdsReport(w, r, report, p.customerID, googleads.AccountSummary(window))
}

func (s *Server) handleAdsCampaigns(w http.ResponseWriter, r *http.Request) {
	p, err := parseAdsParams(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	window := p.window(googleads.DateRangeLast30Days)
	report := &googleads.Report{Tool: googleads.ToolCampaigns, DateRange: window}
	s.runAdsReport(w, r, report, p.customerID, googleads.CampaignsOverview(window, r.URL.Query().Get("status")))
}

func (s *Server) handleAdsAdGroups(w http.ResponseWriter, r *http.Request) {
	p, err := parseAdsParams(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	window := p.window(googleads.DateRangeLast30Days)
	report := &googleads.Report{Tool: googleads.ToolAdGroups, DateRange: window}
	s.runAdsReport(w, r, report, p.customerID, googleads.AdGroups(p.campaignID, window))
}

func (s *Server) handleAdsKeywords(w http.ResponseWriter, r *http.Request) {
	p, err := parseAdsParams(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	minImpressions, err := intParam(r, "min_impressions")
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	window := p.window(googleads.DateRangeLast30Days)
	report := &googleads.Report{Tool: googleads.ToolKeywords, DateRange: window}
	s.runAdsReport(w, r, report, p.customerID, googleads.KeywordsPerformance(p.campaignID, window, int(minImpressions)))
}

func (s *Server) handleAdsSearchTerms(w http.ResponseWriter, r *http.Request) {
	p, err := parseAdsParams(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	window := p.window(googleads.DateRangeLast7Days)
	report := &googleads.Report{Tool: googleads.ToolSearchTerms, DateRange: window}
	s.runAdsReport(w, r, report, p.customerID, googleads.SearchTerms(p.campaignID, window))
}

func (s *Server) handleAdsAds(w http.ResponseWriter, r *http.Request) {
	p, err := parseAdsParams(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	window := p.window(googleads.DateRangeLast30Days)
	report := &googleads.Report{Tool: googleads.ToolAds, DateRange: window}
	s.runAdsReport(w, r, report, p.customerID, googleads.AdsPerformance(p.campaignID, p.adGroupID, window))
}

func (s *Server) handleAdsGeographic(w http.ResponseWriter, r *http.Request) {
	p, err := parseAdsParams(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	window := p.window(googleads.DateRangeLast30Days)
	report := &googleads.Report{Tool: googleads.ToolGeographic, DateRange: window}
	s.runAdsReport(w, r, report, p.customerID, googleads.Geographic(p.campaignID, window))
}

func (s *Server) handleAdsDevice(w http.ResponseWriter, r *http.Request) {
	p, err := parseAdsParams(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	window := p.window(googleads.DateRangeLast30Days)
	report := &googleads.Report{Tool: googleads.ToolDevice, DateRange: window}
	s.runAdsReport(w, r, report, p.customerID, googleads.Device(p.campaignID, window))
}

func (s *Server) handleAdsQualityScore(w http.ResponseWriter, r *http.Request) {
	p, err := parseAdsParams(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	minImpressions, err := intParam(r, "min_impressions")
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	report := &googleads.Report{
		Tool:           googleads.ToolLowQualityScores,
		DateRange:      googleads.DateRangeLast30Days,
		Recommendation: googleads.AdviceLowQualityScore,
	}
	s.runAdsReport(w, r, report, p.customerID, googleads.DiagnoseLowQualityScore(int(minImpressions)))
}

func (s *Server) handleAdsHighCost(w http.ResponseWriter, r *http.Request) {
	p, err := parseAdsParams(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	costFloor, err := intParam(r, "cost_floor_micros")
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	report := &googleads.Report{
		Tool:           googleads.ToolHighCostKeywords,
		DateRange:      googleads.DateRangeLast30Days,
		Recommendation: googleads.AdviceHighCostKeywords,
	}
	s.runAdsReport(w, r, report, p.customerID, googleads.DiagnoseHighCostKeywords(costFloor))
}

func (s *Server) handleAdsDisapprovedAds(w http.ResponseWriter, r *http.Request) {
	p, err := parseAdsParams(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	report := &googleads.Report{
		Tool:           googleads.ToolDisapprovedAds,
		Recommendation: googleads.AdviceDisapprovedAds,
	}
	s.runAdsReport(w, r, report, p.customerID, googleads.DiagnoseDisapprovedAds())
}

// QueryRequest is the body for POST /api/googleads/query: a plain-language
// question routed onto one of the canned reports.
type QueryRequest struct {
	Question   string `json:"question" validate:"required"`
	CustomerID string `json:"customer_id,omitempty"`
	DateRange  string `json:"date_range,omitempty"`
}

func (s *Server) handleAdsQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	var window googleads.DateRange
	if req.DateRange != "" {
		dr, err := googleads.ParseDateRange(req.DateRange)
		if err != nil {
			ve := &ErrValidation{Field: "date_range", Message: err.Error()}
			s.errorResponse(w, HTTPStatus(ve), ve.Error())
			return
		}
		window = dr
	}

	client, err := s.ads()
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	log.Printf("Routing Google Ads question: %q", req.Question)
	report, err := googleads.Dispatch(r.Context(), client, req.CustomerID, req.Question, window)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, report)
}
