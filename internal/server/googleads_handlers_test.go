package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akuzmenko/adsmith/internal/googleads"
)

// newAdsServer wires a server to a fake Google Ads API.
func newAdsServer(t *testing.T, handler http.Handler) *Server {
	t.Helper()

	api := httptest.NewServer(handler)
	t.Cleanup(api.Close)

	creds := &googleads.Credentials{
		DeveloperToken:  "dev-tok",
		ClientID:        "client-id",
		ClientSecret:    "client-secret",
		RefreshToken:    "refresh-tok",
		LoginCustomerID: "1112223333",
	}
	client, err := googleads.NewClient(context.Background(), creds, &googleads.ClientConfig{
		Endpoint:          api.URL,
		HTTPClient:        api.Client(),
		RequestsPerSecond: 1000,
	})
	require.NoError(t, err)

	s := newTestServer()
	s.adsClient = client
	return s
}

// searchFake records GAQL queries and returns the given result rows.
func searchFake(queries *[]string, results string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query string `json:"query"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if queries != nil {
			*queries = append(*queries, req.Query)
		}
		_, _ = w.Write([]byte(`{"results": ` + results + `}`))
	})
}

func TestAdsStatus_NotConfigured(t *testing.T) {
	s := newTestServer()
	s.adsErr = &googleads.ConfigError{Message: "missing credentials: developer_token"}

	req := httptest.NewRequest(http.MethodGet, "/api/googleads/status", nil)
	w := httptest.NewRecorder()

	s.handleAdsStatus(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["configured"])
	assert.Contains(t, resp["error"], "developer_token")
}

func TestAdsStatus_Configured(t *testing.T) {
	s := newAdsServer(t, searchFake(nil, "[]"))

	req := httptest.NewRequest(http.MethodGet, "/api/googleads/status", nil)
	w := httptest.NewRecorder()

	s.handleAdsStatus(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["configured"])
	assert.NotContains(t, resp, "error")
}

func TestAdsEndpoints_NotConfigured(t *testing.T) {
	s := newTestServer()
	s.adsErr = &googleads.ConfigError{Message: "missing credentials: developer_token"}

	req := httptest.NewRequest(http.MethodGet, "/api/googleads/campaigns", nil)
	w := httptest.NewRecorder()

	s.handleAdsCampaigns(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "google ads is not configured")
}

func TestAdsCampaigns(t *testing.T) {
	var queries []string
	s := newAdsServer(t, searchFake(&queries, `[
		{"campaign": {"id": "1", "name": "Spring Sale"}, "metrics": {"clicks": "40"}},
		{"campaign": {"id": "2", "name": "Brand"}, "metrics": {"clicks": "7"}}
	]`))

	req := httptest.NewRequest(http.MethodGet, "/api/googleads/campaigns", nil)
	w := httptest.NewRecorder()

	s.handleAdsCampaigns(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var report googleads.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, googleads.ToolCampaigns, report.Tool)
	assert.Equal(t, googleads.DateRangeLast30Days, report.DateRange)
	assert.Equal(t, 2, report.Count)
	require.Len(t, report.Rows, 2)
	assert.Equal(t, "Spring Sale", report.Rows[0]["campaign.name"])

	require.Len(t, queries, 1)
	assert.Contains(t, queries[0], "FROM campaign")
	assert.Contains(t, queries[0], "DURING LAST_30_DAYS")
}

func TestAdsCampaigns_CustomDateRange(t *testing.T) {
	var queries []string
	s := newAdsServer(t, searchFake(&queries, "[]"))

	req := httptest.NewRequest(http.MethodGet, "/api/googleads/campaigns?date_range=last+7+days", nil)
	w := httptest.NewRecorder()

	s.handleAdsCampaigns(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, queries, 1)
	assert.Contains(t, queries[0], "DURING LAST_7_DAYS")
}

func TestAdsCampaigns_InvalidDateRange(t *testing.T) {
	s := newAdsServer(t, searchFake(nil, "[]"))

	req := httptest.NewRequest(http.MethodGet, "/api/googleads/campaigns?date_range=since+forever", nil)
	w := httptest.NewRecorder()

	s.handleAdsCampaigns(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "date_range")
}

func TestAdsKeywords_CampaignFilter(t *testing.T) {
	var queries []string
	s := newAdsServer(t, searchFake(&queries, "[]"))

	req := httptest.NewRequest(http.MethodGet, "/api/googleads/keywords?campaign_id=123-456", nil)
	w := httptest.NewRecorder()

	s.handleAdsKeywords(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, queries, 1)
	assert.Contains(t, queries[0], "FROM keyword_view")
	assert.Contains(t, queries[0], "campaign.id = 123456")
}

func TestAdsKeywords_InvalidMinImpressions(t *testing.T) {
	s := newAdsServer(t, searchFake(nil, "[]"))

	req := httptest.NewRequest(http.MethodGet, "/api/googleads/keywords?min_impressions=lots", nil)
	w := httptest.NewRecorder()

	s.handleAdsKeywords(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdsAccounts(t *testing.T) {
	s := newAdsServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "customers:listAccessibleCustomers"))
		_, _ = w.Write([]byte(`{"resourceNames": ["customers/1112223333", "customers/4445556666"]}`))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/googleads/accounts", nil)
	w := httptest.NewRecorder()

	s.handleAdsAccounts(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Accounts []string `json:"accounts"`
		Count    int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"1112223333", "4445556666"}, resp.Accounts)
	assert.Equal(t, 2, resp.Count)
}

func TestAdsHighCost_DefaultFloor(t *testing.T) {
	var queries []string
	s := newAdsServer(t, searchFake(&queries, "[]"))

	req := httptest.NewRequest(http.MethodGet, "/api/googleads/diagnose/high-cost", nil)
	w := httptest.NewRecorder()

	s.handleAdsHighCost(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var report googleads.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, googleads.ToolHighCostKeywords, report.Tool)
	assert.Equal(t, googleads.AdviceHighCostKeywords, report.Recommendation)

	require.Len(t, queries, 1)
	assert.Contains(t, queries[0], "metrics.cost_micros > 100000000")
	assert.Contains(t, queries[0], "metrics.conversions = 0")
}

func TestAdsDisapprovedAds(t *testing.T) {
	var queries []string
	s := newAdsServer(t, searchFake(&queries, `[
		{"adGroupAd": {"policySummary": {"approvalStatus": "DISAPPROVED"}}}
	]`))

	req := httptest.NewRequest(http.MethodGet, "/api/googleads/diagnose/disapproved-ads", nil)
	w := httptest.NewRecorder()

	s.handleAdsDisapprovedAds(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var report googleads.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, googleads.ToolDisapprovedAds, report.Tool)
	assert.Empty(t, report.DateRange, "policy state is not a windowed metric")
	assert.Equal(t, 1, report.Count)

	require.Len(t, queries, 1)
	assert.Contains(t, queries[0], "approval_status = 'DISAPPROVED'")
}

func TestAdsUpstreamError(t *testing.T) {
	s := newAdsServer(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"code": 400, "message": "unrecognized field", "status": "INVALID_ARGUMENT"}}`))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/googleads/campaigns", nil)
	w := httptest.NewRecorder()

	s.handleAdsCampaigns(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "unrecognized field")
}

func TestAdsQuery(t *testing.T) {
	var queries []string
	s := newAdsServer(t, searchFake(&queries, `[{"campaign": {"id": "1", "name": "Spring Sale"}}]`))

	body := `{"question": "How are my campaigns doing?"}`
	req := httptest.NewRequest(http.MethodPost, "/api/googleads/query", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.handleAdsQuery(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var report googleads.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, googleads.ToolCampaigns, report.Tool)
	assert.Equal(t, 1, report.Count)

	require.Len(t, queries, 1)
	assert.Contains(t, queries[0], "FROM campaign")
}

func TestAdsQuery_Unroutable(t *testing.T) {
	s := newAdsServer(t, searchFake(nil, "[]"))

	body := `{"question": "what is the weather tomorrow"}`
	req := httptest.NewRequest(http.MethodPost, "/api/googleads/query", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.handleAdsQuery(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "no report matches")
	assert.Contains(t, resp["error"], "campaigns", "error should list the available reports")
}

func TestAdsQuery_MissingQuestion(t *testing.T) {
	s := newAdsServer(t, searchFake(nil, "[]"))

	body := `{"customer_id": "1112223333"}`
	req := httptest.NewRequest(http.MethodPost, "/api/googleads/query", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.handleAdsQuery(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdsQuery_InvalidDateRange(t *testing.T) {
	s := newAdsServer(t, searchFake(nil, "[]"))

	body := `{"question": "show campaigns", "date_range": "whenever"}`
	req := httptest.NewRequest(http.MethodPost, "/api/googleads/query", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.handleAdsQuery(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
