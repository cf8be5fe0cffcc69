package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/akuzmenko/adsmith/internal/fetch"
	"github.com/akuzmenko/adsmith/internal/ingestion"
	"github.com/akuzmenko/adsmith/internal/observability"
)

var parseCommand = &cobra.Command{
	Use:   "parse <url>",
	Short: "Fetch a website and print the extracted content",
	Long: `Fetches a single page and runs content extraction without making any LLM calls.

Useful for checking what the analyzer would see before spending API quota.`,
	Args: cobra.ExactArgs(1),
	RunE: runParseCmd,
}

var (
	parseBrowser bool
	parseJSON    bool
	parseVerbose bool
)

func init() {
	parseCommand.Flags().BoolVar(&parseBrowser, "browser", false, "Use headless browser for JavaScript-rendered sites (requires Chrome)")
	parseCommand.Flags().BoolVar(&parseJSON, "json", false, "Print the extracted content as JSON instead of a summary")
	parseCommand.Flags().BoolVarP(&parseVerbose, "verbose", "v", false, "Print detailed debug information")
	rootCmd.AddCommand(parseCommand)
}

func runParseCmd(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	opts := fetch.DefaultOptions()
	opts.UseBrowser = parseBrowser
	opts.Verbose = parseVerbose

	content, err := ingestion.IngestFromURL(ctx, args[0], opts)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", args[0], err)
	}

	if parseJSON {
		data, err := content.ToJSON()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintWebsiteSummary(content)
	return nil
}
