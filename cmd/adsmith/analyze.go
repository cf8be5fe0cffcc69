package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/akuzmenko/adsmith/internal/config"
	"github.com/akuzmenko/adsmith/internal/pipeline"
)

var analyzeCommand = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Run the full ad copy pipeline against a website",
	Long: `Orchestrates the entire ad copy generation process: fetch -> extraction -> FAB analysis -> keyword plan -> ad variants -> report.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyzeCmd,
}

var (
	analyzeConfigPath   string
	analyzeOutput       string
	analyzeProvider     string
	analyzeModel        string
	analyzeKeywordsOnly bool
	analyzeSkipExport   bool
	analyzeBrowser      bool
	analyzeNoTruncate   bool
	analyzeMaxKeywords  int
	analyzeVerbose      bool
)

func init() {
	// Config file flag (processed first)
	analyzeCommand.Flags().StringVar(&analyzeConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	analyzeCommand.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Directory for exported reports")
	analyzeCommand.Flags().StringVarP(&analyzeProvider, "provider", "p", "", "LLM provider (gemini, openai, anthropic, groq, ollama)")
	analyzeCommand.Flags().StringVarP(&analyzeModel, "model", "m", "", "Model name (overrides the provider's tier defaults)")
	analyzeCommand.Flags().BoolVar(&analyzeKeywordsOnly, "keywords-only", false, "Stop after the keyword plan; skip ad drafting")
	analyzeCommand.Flags().BoolVar(&analyzeSkipExport, "skip-export", false, "Do not write a report file")
	analyzeCommand.Flags().BoolVar(&analyzeBrowser, "browser", false, "Use headless browser for JavaScript-rendered sites (requires Chrome)")
	analyzeCommand.Flags().BoolVar(&analyzeNoTruncate, "no-truncate", false, "Discard over-length ad copy instead of shortening it")
	analyzeCommand.Flags().IntVar(&analyzeMaxKeywords, "max-keywords", 0, "Maximum keyword candidates to request from the model")
	analyzeCommand.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(analyzeCommand)
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	url := args[0]

	// Step 1: Load config file if provided
	var cfg config.Config
	if analyzeConfigPath != "" {
		loadedCfg, err := config.LoadConfig(analyzeConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Validate loaded config
		if err := loadedCfg.Validate(); err != nil {
			return err
		}

		cfg = *loadedCfg
		if analyzeVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", analyzeConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("output") {
		cfg.OutputDir = analyzeOutput
	}
	if cmd.Flags().Changed("provider") {
		cfg.AIProvider = analyzeProvider
	}
	if cmd.Flags().Changed("model") {
		cfg.AIModel = analyzeModel
	}
	if cmd.Flags().Changed("max-keywords") {
		cfg.MaxKeywords = analyzeMaxKeywords
	}
	if cmd.Flags().Changed("browser") {
		cfg.UseBrowser = analyzeBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = analyzeVerbose
	}

	// Step 3: Apply defaults for unset values
	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Step 4: API key handling (ollama runs locally and needs none)
	apiKey := cfg.APIKeyFor(cfg.AIProvider)
	if apiKey == "" && cfg.AIProvider != "ollama" {
		return fmt.Errorf("API key is required for provider %s (set %s environment variable or api_key in the config file)", cfg.AIProvider, apiKeyEnvVar(cfg.AIProvider))
	}

	// Step 5: Database URL fallback (persistence is optional)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	opts := pipeline.RunOptions{
		URL:               url,
		OutputDir:         cfg.OutputDir,
		Provider:          cfg.AIProvider,
		APIKey:            apiKey,
		Model:             cfg.AIModel,
		KeywordsOnly:      analyzeKeywordsOnly,
		SkipExport:        analyzeSkipExport,
		UseBrowser:        cfg.UseBrowser,
		DisableTruncation: analyzeNoTruncate,
		MaxKeywords:       cfg.MaxKeywords,
		DatabaseURL:       cfg.DatabaseURL,
		Verbose:           cfg.Verbose,
	}

	_, err := pipeline.Run(ctx, opts)
	return err
}

// apiKeyEnvVar names the environment variable holding a provider's API
// key, for error messages.
func apiKeyEnvVar(provider string) string {
	switch provider {
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "groq":
		return "GROQ_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}
