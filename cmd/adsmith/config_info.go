package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akuzmenko/adsmith/internal/config"
)

var configInfoCommand = &cobra.Command{
	Use:   "config-info",
	Short: "Print the effective configuration",
	Long: `Resolves the layered configuration (environment variables, then an optional JSON file, then built-in defaults) and prints the result.

Secrets are masked.`,
	RunE: runConfigInfoCmd,
}

var configInfoPath string

func init() {
	configInfoCommand.Flags().StringVar(&configInfoPath, "config", "", "Path to config.json file")
	rootCmd.AddCommand(configInfoCommand)
}

func runConfigInfoCmd(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configInfoPath)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg.Masked(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))

	// Key visibility per provider, since the masked dump only shows an
	// explicitly configured api_key.
	fmt.Println("\nAPI keys:")
	for _, provider := range []string{"gemini", "openai", "anthropic", "groq"} {
		state := "not set"
		if cfg.APIKeyFor(provider) != "" {
			state = "set"
		}
		fmt.Printf("  %-10s %s\n", provider, state)
	}
	return nil
}
