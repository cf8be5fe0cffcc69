package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/akuzmenko/adsmith/internal/googleads"
)

var googleadsCmd = &cobra.Command{
	Use:   "googleads",
	Short: "Query live Google Ads accounts",
	Long: `Reporting commands backed by the Google Ads REST API.

Credentials come from a google-ads.yaml file (--ads-config, the GOOGLE_ADS_CONFIG environment variable, or the default locations) or from GOOGLE_ADS_* environment variables.`,
}

var (
	adsConfigPath string
	adsCustomerID string
	adsDateRange  string
	adsVerboseLog bool

	adsCampaignStatus  string
	adsCampaignID      string
	adsAdGroupID       string
	adsMinImpressions  int
	adsCostFloorMicros int64
	adsDiagnoseCheck   string
)

func init() {
	googleadsCmd.PersistentFlags().StringVar(&adsConfigPath, "ads-config", "", "Path to google-ads.yaml")
	googleadsCmd.PersistentFlags().StringVar(&adsCustomerID, "customer-id", "", "Customer ID to query (defaults to login_customer_id)")
	googleadsCmd.PersistentFlags().StringVar(&adsDateRange, "date-range", "", `Reporting window, e.g. "last 7 days", "this month"`)
	googleadsCmd.PersistentFlags().BoolVarP(&adsVerboseLog, "verbose", "v", false, "Log API requests and retries")

	adsCampaignsCmd.Flags().StringVar(&adsCampaignStatus, "status", "", "Filter by campaign status (ENABLED, PAUSED, REMOVED)")
	adsKeywordsCmd.Flags().StringVar(&adsCampaignID, "campaign-id", "", "Restrict to one campaign")
	adsKeywordsCmd.Flags().IntVar(&adsMinImpressions, "min-impressions", 0, "Hide keywords below this impression count")
	adsSearchTermsCmd.Flags().StringVar(&adsCampaignID, "campaign-id", "", "Restrict to one campaign")
	adsAdsCmd.Flags().StringVar(&adsCampaignID, "campaign-id", "", "Restrict to one campaign")
	adsAdsCmd.Flags().StringVar(&adsAdGroupID, "ad-group-id", "", "Restrict to one ad group")
	adsDiagnoseCmd.Flags().StringVar(&adsDiagnoseCheck, "check", "", "Which diagnostic to run: quality-score, high-cost, or disapproved")
	adsDiagnoseCmd.Flags().IntVar(&adsMinImpressions, "min-impressions", 0, "Impression floor for the quality-score check")
	adsDiagnoseCmd.Flags().Int64Var(&adsCostFloorMicros, "cost-floor-micros", 0, "Spend floor for the high-cost check, in micros")
	_ = adsDiagnoseCmd.MarkFlagRequired("check")

	googleadsCmd.AddCommand(adsAccountsCmd)
	googleadsCmd.AddCommand(adsSummaryCmd)
	googleadsCmd.AddCommand(adsCampaignsCmd)
	googleadsCmd.AddCommand(adsKeywordsCmd)
	googleadsCmd.AddCommand(adsSearchTermsCmd)
	googleadsCmd.AddCommand(adsAdsCmd)
	googleadsCmd.AddCommand(adsDiagnoseCmd)
	googleadsCmd.AddCommand(adsAskCmd)
	rootCmd.AddCommand(googleadsCmd)
}

var adsAccountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List customer accounts the credentials can access",
	Args:  cobra.NoArgs,
	RunE:  runAdsAccounts,
}

var adsSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Account-level performance totals",
	Args:  cobra.NoArgs,
	RunE:  runAdsSummary,
}

var adsCampaignsCmd = &cobra.Command{
	Use:   "campaigns",
	Short: "Campaign performance overview",
	Args:  cobra.NoArgs,
	RunE:  runAdsCampaigns,
}

var adsKeywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Keyword performance",
	Args:  cobra.NoArgs,
	RunE:  runAdsKeywords,
}

var adsSearchTermsCmd = &cobra.Command{
	Use:   "search-terms",
	Short: "Search terms that triggered your ads",
	Args:  cobra.NoArgs,
	RunE:  runAdsSearchTerms,
}

var adsAdsCmd = &cobra.Command{
	Use:   "ads",
	Short: "Ad performance with headlines and descriptions",
	Args:  cobra.NoArgs,
	RunE:  runAdsAds,
}

var adsDiagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Run an account health check",
	Long:  `Runs one of the canned diagnostics: quality-score (keywords dragging down ad rank), high-cost (spend with zero conversions), or disapproved (ads blocked by policy).`,
	Args:  cobra.NoArgs,
	RunE:  runAdsDiagnose,
}

var adsAskCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Route a plain-language question to the right report",
	Long: `Matches the question against the canned reports and runs the closest one, e.g.:

  adsmith googleads ask "which keywords are wasting money?"`,
	Args: cobra.ExactArgs(1),
	RunE: runAdsAsk,
}

func runAdsAccounts(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	client, err := newAdsClient(ctx)
	if err != nil {
		return err
	}
	ids, err := client.ListAccessibleCustomers(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

func runAdsSummary(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	window, err := adsWindow(googleads.DateRangeLast30Days)
	if err != nil {
		return err
	}
	report := &googleads.Report{Tool: googleads.ToolAccountSummary, DateRange: window}
	return runAdsQuery(ctx, report, googleads.AccountSummary(window))
}

func runAdsCampaigns(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	window, err := adsWindow(googleads.DateRangeLast30Days)
	if err != nil {
		return err
	}
	report := &googleads.Report{Tool: googleads.ToolCampaigns, DateRange: window}
	return runAdsQuery(ctx, report, googleads.CampaignsOverview(window, adsCampaignStatus))
}

func runAdsKeywords(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	window, err := adsWindow(googleads.DateRangeLast30Days)
	if err != nil {
		return err
	}
	report := &googleads.Report{Tool: googleads.ToolKeywords, DateRange: window}
	return runAdsQuery(ctx, report, googleads.KeywordsPerformance(adsCampaignID, window, adsMinImpressions))
}

func runAdsSearchTerms(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	window, err := adsWindow(googleads.DateRangeLast7Days)
	if err != nil {
		return err
	}
	report := &googleads.Report{Tool: googleads.ToolSearchTerms, DateRange: window}
	return runAdsQuery(ctx, report, googleads.SearchTerms(adsCampaignID, window))
}

func runAdsAds(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	window, err := adsWindow(googleads.DateRangeLast30Days)
	if err != nil {
		return err
	}
	report := &googleads.Report{Tool: googleads.ToolAds, DateRange: window}
	return runAdsQuery(ctx, report, googleads.AdsPerformance(adsCampaignID, adsAdGroupID, window))
}

func runAdsDiagnose(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	switch adsDiagnoseCheck {
	case "quality-score":
		report := &googleads.Report{
			Tool:           googleads.ToolLowQualityScores,
			DateRange:      googleads.DateRangeLast30Days,
			Recommendation: googleads.AdviceLowQualityScore,
		}
		return runAdsQuery(ctx, report, googleads.DiagnoseLowQualityScore(adsMinImpressions))
	case "high-cost":
		report := &googleads.Report{
			Tool:           googleads.ToolHighCostKeywords,
			DateRange:      googleads.DateRangeLast30Days,
			Recommendation: googleads.AdviceHighCostKeywords,
		}
		return runAdsQuery(ctx, report, googleads.DiagnoseHighCostKeywords(adsCostFloorMicros))
	case "disapproved":
		report := &googleads.Report{
			Tool:           googleads.ToolDisapprovedAds,
			Recommendation: googleads.AdviceDisapprovedAds,
		}
		return runAdsQuery(ctx, report, googleads.DiagnoseDisapprovedAds())
	default:
		return fmt.Errorf("unknown check %q (valid: quality-score, high-cost, disapproved)", adsDiagnoseCheck)
	}
}

func runAdsAsk(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	window := googleads.DateRange("")
	if adsDateRange != "" {
		parsed, err := googleads.ParseDateRange(adsDateRange)
		if err != nil {
			return err
		}
		window = parsed
	}

	client, err := newAdsClient(ctx)
	if err != nil {
		return err
	}
	report, err := googleads.Dispatch(ctx, client, adsCustomerID, args[0], window)
	if err != nil {
		return err
	}
	return printJSON(report)
}

// newAdsClient builds a REST client from the credentials the flags and
// environment resolve to.
func newAdsClient(ctx context.Context) (*googleads.Client, error) {
	path := adsConfigPath
	if path == "" {
		path = os.Getenv("GOOGLE_ADS_CONFIG")
	}
	creds, err := googleads.LoadCredentials(path)
	if err != nil {
		return nil, err
	}
	return googleads.NewClient(ctx, creds, &googleads.ClientConfig{Verbose: adsVerboseLog})
}

// adsWindow resolves --date-range, falling back to the report's default.
func adsWindow(def googleads.DateRange) (googleads.DateRange, error) {
	if adsDateRange == "" {
		return def, nil
	}
	return googleads.ParseDateRange(adsDateRange)
}

func runAdsQuery(ctx context.Context, report *googleads.Report, query string) error {
	client, err := newAdsClient(ctx)
	if err != nil {
		return err
	}
	rows, err := client.Search(ctx, adsCustomerID, query)
	if err != nil {
		return err
	}
	report.Count = len(rows)
	report.Rows = rows
	return printJSON(report)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
