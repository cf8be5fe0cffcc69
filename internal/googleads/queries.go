package googleads

import (
	"fmt"
	"strings"
)

// DateRange is a GAQL DURING window.
type DateRange string

const (
	DateRangeToday      DateRange = "TODAY"
	DateRangeYesterday  DateRange = "YESTERDAY"
	DateRangeLast7Days  DateRange = "LAST_7_DAYS"
	DateRangeLast14Days DateRange = "LAST_14_DAYS"
	DateRangeLast30Days DateRange = "LAST_30_DAYS"
	DateRangeThisMonth  DateRange = "THIS_MONTH"
	DateRangeLastMonth  DateRange = "LAST_MONTH"
)

var dateRanges = []DateRange{
	DateRangeToday,
	DateRangeYesterday,
	DateRangeLast7Days,
	DateRangeLast14Days,
	DateRangeLast30Days,
	DateRangeThisMonth,
	DateRangeLastMonth,
}

// Valid reports whether d is one of the supported windows.
func (d DateRange) Valid() bool {
	for _, r := range dateRanges {
		if d == r {
			return true
		}
	}
	return false
}

// ParseDateRange normalizes a user-supplied window ("last 7 days",
// "LAST_7_DAYS") into a DateRange.
func ParseDateRange(s string) (DateRange, error) {
	norm := DateRange(strings.ToUpper(strings.Join(strings.Fields(s), "_")))
	if norm.Valid() {
		return norm, nil
	}
	names := make([]string, len(dateRanges))
	for i, r := range dateRanges {
		names[i] = string(r)
	}
	return "", fmt.Errorf("invalid date range %q (valid: %s)", s, strings.Join(names, ", "))
}

func (d DateRange) orDefault(def DateRange) DateRange {
	if d == "" {
		return def
	}
	return d
}

// Cost and conversion floors for the diagnostic queries, in the units
// the API reports (micros = currency unit / 1e6).
const (
	DefaultHighCostFloorMicros = 100_000_000
	DefaultMinImpressions      = 100
	lowQualityScoreCeiling     = 5
)

// gaql assembles a single-line GAQL statement.
type gaql struct {
	selects []string
	from    string
	wheres  []string
	orderBy string
}

func (g gaql) String() string {
	q := "SELECT " + strings.Join(g.selects, ", ") + " FROM " + g.from
	if len(g.wheres) > 0 {
		q += " WHERE " + strings.Join(g.wheres, " AND ")
	}
	if g.orderBy != "" {
		q += " ORDER BY " + g.orderBy
	}
	return q
}

// CampaignsOverview lists campaigns with their core metrics. statusFilter
// narrows to ENABLED/PAUSED/REMOVED when non-empty.
func CampaignsOverview(dateRange DateRange, statusFilter string) string {
	q := gaql{
		selects: []string{
			"campaign.id", "campaign.name", "campaign.status",
			"campaign.advertising_channel_type", "campaign.bidding_strategy_type",
			"metrics.impressions", "metrics.clicks", "metrics.ctr",
			"metrics.average_cpc", "metrics.cost_micros",
			"metrics.conversions", "metrics.cost_per_conversion",
		},
		from:    "campaign",
		wheres:  []string{during(dateRange.orDefault(DateRangeLast30Days))},
		orderBy: "metrics.impressions DESC",
	}
	if statusFilter = strings.ToUpper(strings.TrimSpace(statusFilter)); statusFilter != "" {
		q.wheres = append(q.wheres, "campaign.status = "+statusFilter)
	}
	return q.String()
}

// AdGroups lists ad groups with metrics, optionally within one campaign.
func AdGroups(campaignID string, dateRange DateRange) string {
	q := gaql{
		selects: []string{
			"campaign.id", "campaign.name",
			"ad_group.id", "ad_group.name", "ad_group.status",
			"metrics.impressions", "metrics.clicks", "metrics.ctr",
			"metrics.average_cpc", "metrics.cost_micros", "metrics.conversions",
		},
		from:    "ad_group",
		wheres:  []string{during(dateRange.orDefault(DateRangeLast30Days))},
		orderBy: "metrics.cost_micros DESC",
	}
	q.wheres = appendIDFilter(q.wheres, "campaign.id", campaignID)
	return q.String()
}

// KeywordsPerformance lists keywords with metrics and quality score.
func KeywordsPerformance(campaignID string, dateRange DateRange, minImpressions int) string {
	if minImpressions < 0 {
		minImpressions = 0
	}
	q := gaql{
		selects: []string{
			"campaign.id", "campaign.name",
			"ad_group.id", "ad_group.name",
			"ad_group_criterion.keyword.text", "ad_group_criterion.keyword.match_type",
			"ad_group_criterion.status",
			"metrics.impressions", "metrics.clicks", "metrics.ctr",
			"metrics.average_cpc", "metrics.cost_micros",
			"metrics.conversions", "metrics.quality_score",
		},
		from: "keyword_view",
		wheres: []string{
			during(dateRange.orDefault(DateRangeLast30Days)),
			fmt.Sprintf("metrics.impressions >= %d", minImpressions),
		},
		orderBy: "metrics.impressions DESC",
	}
	q.wheres = appendIDFilter(q.wheres, "campaign.id", campaignID)
	return q.String()
}

// SearchTerms reports the actual searches that triggered ads.
func SearchTerms(campaignID string, dateRange DateRange) string {
	q := gaql{
		selects: []string{
			"campaign.id", "campaign.name",
			"ad_group.id", "ad_group.name",
			"search_term_view.search_term", "search_term_view.status",
			"metrics.impressions", "metrics.clicks", "metrics.ctr",
			"metrics.cost_micros", "metrics.conversions",
		},
		from:    "search_term_view",
		wheres:  []string{during(dateRange.orDefault(DateRangeLast7Days))},
		orderBy: "metrics.impressions DESC",
	}
	q.wheres = appendIDFilter(q.wheres, "campaign.id", campaignID)
	return q.String()
}

// AdsPerformance lists ads (with responsive search ad assets) and their
// metrics, optionally narrowed by campaign and ad group.
func AdsPerformance(campaignID, adGroupID string, dateRange DateRange) string {
	q := gaql{
		selects: []string{
			"campaign.id", "campaign.name",
			"ad_group.id", "ad_group.name",
			"ad_group_ad.ad.id", "ad_group_ad.ad.type", "ad_group_ad.status",
			"ad_group_ad.ad.responsive_search_ad.headlines",
			"ad_group_ad.ad.responsive_search_ad.descriptions",
			"metrics.impressions", "metrics.clicks", "metrics.ctr",
			"metrics.average_cpc", "metrics.cost_micros", "metrics.conversions",
		},
		from:    "ad_group_ad",
		wheres:  []string{during(dateRange.orDefault(DateRangeLast30Days))},
		orderBy: "metrics.impressions DESC",
	}
	q.wheres = appendIDFilter(q.wheres, "campaign.id", campaignID)
	q.wheres = appendIDFilter(q.wheres, "ad_group.id", adGroupID)
	return q.String()
}

// Budgets reports campaign budget settings. No date window: budgets are
// configuration, not metrics.
func Budgets(campaignID string) string {
	q := gaql{
		selects: []string{
			"campaign.id", "campaign.name", "campaign.status",
			"campaign_budget.amount_micros", "campaign_budget.delivery_method",
			"campaign.target_spend.cpc_bid_ceiling_micros",
			"campaign.target_spend.target_spend_micros",
		},
		from: "campaign",
	}
	q.wheres = appendIDFilter(q.wheres, "campaign.id", campaignID)
	return q.String()
}

// NegativeKeywords lists campaign-level negative keywords.
func NegativeKeywords(campaignID string) string {
	q := gaql{
		selects: []string{
			"campaign.id", "campaign.name",
			"campaign_criterion.criterion_id",
			"campaign_criterion.keyword.text", "campaign_criterion.keyword.match_type",
			"campaign_criterion.negative",
		},
		from:   "campaign_criterion",
		wheres: []string{"campaign_criterion.negative = TRUE"},
	}
	q.wheres = appendIDFilter(q.wheres, "campaign.id", campaignID)
	return q.String()
}

// Geographic reports performance by location.
func Geographic(campaignID string, dateRange DateRange) string {
	q := gaql{
		selects: []string{
			"campaign.id", "campaign.name",
			"geographic_view.country_criterion_id", "geographic_view.location_type",
			"metrics.impressions", "metrics.clicks", "metrics.ctr",
			"metrics.cost_micros", "metrics.conversions",
		},
		from:    "geographic_view",
		wheres:  []string{during(dateRange.orDefault(DateRangeLast30Days))},
		orderBy: "metrics.impressions DESC",
	}
	q.wheres = appendIDFilter(q.wheres, "campaign.id", campaignID)
	return q.String()
}

// Device reports performance split by device type.
func Device(campaignID string, dateRange DateRange) string {
	q := gaql{
		selects: []string{
			"campaign.id", "campaign.name", "segments.device",
			"metrics.impressions", "metrics.clicks", "metrics.ctr",
			"metrics.average_cpc", "metrics.cost_micros", "metrics.conversions",
		},
		from:    "campaign",
		wheres:  []string{during(dateRange.orDefault(DateRangeLast30Days))},
		orderBy: "segments.device, metrics.impressions DESC",
	}
	q.wheres = appendIDFilter(q.wheres, "campaign.id", campaignID)
	return q.String()
}

// AccountSummary reports account-level totals.
func AccountSummary(dateRange DateRange) string {
	return gaql{
		selects: []string{
			"customer.id", "customer.descriptive_name",
			"metrics.impressions", "metrics.clicks", "metrics.ctr",
			"metrics.average_cpc", "metrics.cost_micros",
			"metrics.conversions", "metrics.cost_per_conversion",
		},
		from:   "customer",
		wheres: []string{during(dateRange.orDefault(DateRangeLast30Days))},
	}.String()
}

// DiagnoseLowQualityScore finds keywords with meaningful traffic whose
// quality score sits below the ceiling.
func DiagnoseLowQualityScore(minImpressions int) string {
	if minImpressions <= 0 {
		minImpressions = DefaultMinImpressions
	}
	return gaql{
		selects: []string{
			"campaign.id", "campaign.name",
			"ad_group.id", "ad_group.name",
			"ad_group_criterion.keyword.text", "ad_group_criterion.keyword.match_type",
			"metrics.quality_score", "metrics.impressions", "metrics.clicks", "metrics.ctr",
		},
		from: "keyword_view",
		wheres: []string{
			during(DateRangeLast30Days),
			fmt.Sprintf("metrics.impressions >= %d", minImpressions),
			fmt.Sprintf("metrics.quality_score < %d", lowQualityScoreCeiling),
		},
		orderBy: "metrics.impressions DESC",
	}.String()
}

// DiagnoseHighCostKeywords finds keywords spending above the cost floor
// without converting at all.
func DiagnoseHighCostKeywords(costFloorMicros int64) string {
	if costFloorMicros <= 0 {
		costFloorMicros = DefaultHighCostFloorMicros
	}
	return gaql{
		selects: []string{
			"campaign.id", "campaign.name",
			"ad_group.id", "ad_group.name",
			"ad_group_criterion.keyword.text", "ad_group_criterion.keyword.match_type",
			"metrics.cost_micros", "metrics.clicks", "metrics.conversions",
			"metrics.cost_per_conversion",
		},
		from: "keyword_view",
		wheres: []string{
			during(DateRangeLast30Days),
			fmt.Sprintf("metrics.cost_micros > %d", costFloorMicros),
			"metrics.conversions = 0",
		},
		orderBy: "metrics.cost_micros DESC",
	}.String()
}

// DiagnoseDisapprovedAds lists ads blocked by policy review.
func DiagnoseDisapprovedAds() string {
	return gaql{
		selects: []string{
			"campaign.id", "campaign.name",
			"ad_group.id", "ad_group.name",
			"ad_group_ad.ad.id",
			"ad_group_ad.policy_summary.approval_status",
			"ad_group_ad.policy_summary.review_status",
		},
		from:   "ad_group_ad",
		wheres: []string{"ad_group_ad.policy_summary.approval_status = 'DISAPPROVED'"},
	}.String()
}

func during(d DateRange) string {
	return "segments.date DURING " + string(d)
}

// appendIDFilter adds an equality filter when id holds digits; anything
// else (including empty) is ignored rather than interpolated into GAQL.
func appendIDFilter(wheres []string, field, id string) []string {
	if id = digitsOnly(id); id == "" {
		return wheres
	}
	return append(wheres, fmt.Sprintf("%s = %s", field, id))
}
