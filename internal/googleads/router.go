package googleads

import (
	"context"
	"fmt"
	"strings"
)

// Tool identifies one canned report.
type Tool string

const (
	ToolListAccounts     Tool = "list_accounts"
	ToolAccountSummary   Tool = "account_summary"
	ToolCampaigns        Tool = "campaigns"
	ToolAdGroups         Tool = "ad_groups"
	ToolKeywords         Tool = "keywords"
	ToolSearchTerms      Tool = "search_terms"
	ToolAds              Tool = "ads"
	ToolBudgets          Tool = "budgets"
	ToolNegativeKeywords Tool = "negative_keywords"
	ToolGeographic       Tool = "geographic"
	ToolDevice           Tool = "device"
	ToolLowQualityScores Tool = "low_quality_scores"
	ToolHighCostKeywords Tool = "high_cost_keywords"
	ToolDisapprovedAds   Tool = "disapproved_ads"
)

type route struct {
	tool    Tool
	phrases []string
}

// routes maps question phrases to tools. Matching is first-hit in table
// order, so the narrow entries sit above the generic ones they would
// otherwise collide with: "quality score" must win over "keywords",
// "negative keywords" over "keywords", "disapproved ads" over "ads".
var routes = []route{
	{ToolListAccounts, []string{"list accounts", "accounts"}},
	{ToolAccountSummary, []string{"account summary", "overview", "summary"}},
	{ToolLowQualityScores, []string{"quality score", "quality scores", "low quality"}},
	{ToolNegativeKeywords, []string{"negative keywords", "negative keyword", "negatives"}},
	{ToolSearchTerms, []string{"search terms", "search term", "search queries", "searches"}},
	{ToolHighCostKeywords, []string{"high cost", "expensive", "wasted spend", "overspending"}},
	{ToolDisapprovedAds, []string{"disapproved", "rejected"}},
	{ToolBudgets, []string{"budget", "budgets", "spend limit"}},
	{ToolGeographic, []string{"geographic", "geography", "location", "locations", "country", "countries"}},
	{ToolDevice, []string{"device", "devices", "mobile", "desktop", "tablet"}},
	{ToolAdGroups, []string{"ad groups", "ad group", "adgroups"}},
	{ToolKeywords, []string{"keywords", "keyword"}},
	{ToolCampaigns, []string{"campaigns", "campaign"}},
	{ToolAds, []string{"ads", "ad performance"}},
}

// Route resolves a natural-language question to a tool.
func Route(question string) (Tool, bool) {
	norm := normalizeQuestion(question)
	for _, r := range routes {
		for _, p := range r.phrases {
			if containsPhrase(norm, p) {
				return r.tool, true
			}
		}
	}
	return "", false
}

// AvailableTools lists every routable tool in table order.
func AvailableTools() []Tool {
	tools := make([]Tool, len(routes))
	for i, r := range routes {
		tools[i] = r.tool
	}
	return tools
}

// normalizeQuestion lowercases and strips punctuation so phrase lookup
// sees clean word sequences ("Show me the Keywords!" -> "show me the keywords").
func normalizeQuestion(q string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(q) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// containsPhrase matches on word boundaries, not substrings: "leads"
// does not contain the phrase "ads".
func containsPhrase(norm, phrase string) bool {
	return strings.Contains(" "+norm+" ", " "+phrase+" ")
}

// Remediation hints returned with the diagnostic reports.
const (
	AdviceLowQualityScore  = "Review ad relevance, landing pages, and expected CTR"
	AdviceHighCostKeywords = "Review targeting, ad copy, and landing page conversion rate"
	AdviceDisapprovedAds   = "Review policy violations and update ad copy"
)

// Report is the envelope a dispatched question returns.
type Report struct {
	Tool           Tool      `json:"tool"`
	DateRange      DateRange `json:"date_range,omitempty"`
	Count          int       `json:"count"`
	Rows           []Row     `json:"rows"`
	Recommendation string    `json:"recommendation,omitempty"`
}

// UnroutableError means no phrase in the routing table matched the
// question.
type UnroutableError struct {
	Question  string
	Available []Tool
}

func (e *UnroutableError) Error() string {
	names := make([]string, len(e.Available))
	for i, t := range e.Available {
		names[i] = string(t)
	}
	return fmt.Sprintf("no report matches %q (available: %s)", e.Question, strings.Join(names, ", "))
}

// Dispatch routes the question, runs the matching report against the
// account, and wraps the rows in a Report. dateRange may be empty; each
// tool falls back to its own default window.
func Dispatch(ctx context.Context, client *Client, customerID, question string, dateRange DateRange) (*Report, error) {
	tool, ok := Route(question)
	if !ok {
		return nil, &UnroutableError{Question: question, Available: AvailableTools()}
	}

	if tool == ToolListAccounts {
		ids, err := client.ListAccessibleCustomers(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]Row, len(ids))
		for i, id := range ids {
			rows[i] = Row{"customer.id": id, "resource_name": "customers/" + id}
		}
		return &Report{Tool: tool, Count: len(rows), Rows: rows}, nil
	}

	var (
		query          string
		window         DateRange
		recommendation string
	)
	switch tool {
	case ToolAccountSummary:
		window = dateRange.orDefault(DateRangeLast30Days)
		query = AccountSummary(window)
	case ToolCampaigns:
		window = dateRange.orDefault(DateRangeLast30Days)
		query = CampaignsOverview(window, "")
	case ToolAdGroups:
		window = dateRange.orDefault(DateRangeLast30Days)
		query = AdGroups("", window)
	case ToolKeywords:
		window = dateRange.orDefault(DateRangeLast30Days)
		query = KeywordsPerformance("", window, 0)
	case ToolSearchTerms:
		window = dateRange.orDefault(DateRangeLast7Days)
		query = SearchTerms("", window)
	case ToolAds:
		window = dateRange.orDefault(DateRangeLast30Days)
		query = AdsPerformance("", "", window)
	case ToolBudgets:
		query = Budgets("")
	case ToolNegativeKeywords:
		query = NegativeKeywords("")
	case ToolGeographic:
		window = dateRange.orDefault(DateRangeLast30Days)
		query = Geographic("", window)
	case ToolDevice:
		window = dateRange.orDefault(DateRangeLast30Days)
		query = Device("", window)
	case ToolLowQualityScores:
		window = DateRangeLast30Days
		query = DiagnoseLowQualityScore(0)
		recommendation = AdviceLowQualityScore
	case ToolHighCostKeywords:
		window = DateRangeLast30Days
		query = DiagnoseHighCostKeywords(0)
		recommendation = AdviceHighCostKeywords
	case ToolDisapprovedAds:
		query = DiagnoseDisapprovedAds()
		recommendation = AdviceDisapprovedAds
	default:
		return nil, &UnroutableError{Question: question, Available: AvailableTools()}
	}

	rows, err := client.Search(ctx, customerID, query)
	if err != nil {
		return nil, err
	}
	return &Report{
		Tool:           tool,
		DateRange:      window,
		Count:          len(rows),
		Rows:           rows,
		Recommendation: recommendation,
	}, nil
}
