// Package main provides the adsmith command line interface and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "adsmith",
	Short: "Generate Google Ads copy from a website",
	Long:  "Adsmith turns a product website into ready-to-review Google Ads copy: it extracts the page content, runs a features/advantages/benefits analysis, derives a keyword plan, and drafts length-checked ad variants. It also ships a reporting client for live Google Ads accounts.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
