package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var setupCommand = &cobra.Command{
	Use:   "setup",
	Short: "Interactively create or update a .env file",
	Long: `Walks through the settings adsmith reads at startup and writes them to an env file in the current directory.

Existing values are kept as defaults; press Enter to leave one unchanged.`,
	RunE: runSetupCmd,
}

var setupEnvPath string

func init() {
	setupCommand.Flags().StringVar(&setupEnvPath, "env-file", ".env", "Path to the env file to write")
	rootCmd.AddCommand(setupCommand)
}

func runSetupCmd(_ *cobra.Command, _ []string) error {
	env, err := godotenv.Read(setupEnvPath)
	if err != nil {
		env = map[string]string{}
	} else {
		fmt.Printf("Updating existing %s\n", setupEnvPath)
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Println("adsmith setup. Press Enter to keep the value shown in brackets.")
	fmt.Println()

	provider := promptValue(reader, "LLM provider (gemini, openai, anthropic, groq, ollama)", valueOr(env["AI_PROVIDER"], "gemini"))
	env["AI_PROVIDER"] = provider

	if provider != "ollama" {
		keyVar := apiKeyEnvVar(provider)
		label := keyVar
		if env[keyVar] != "" {
			// Never echo a stored secret back to the terminal.
			label = keyVar + " (already set, Enter to keep)"
		}
		if v := promptValue(reader, label, ""); v != "" {
			env[keyVar] = v
		}
	}

	env["OUTPUT_DIR"] = promptValue(reader, "Report output directory", valueOr(env["OUTPUT_DIR"], "output"))

	if v := promptValue(reader, "PostgreSQL URL for run history (optional)", env["DATABASE_URL"]); v != "" {
		env["DATABASE_URL"] = v
	}
	if v := promptValue(reader, "Path to google-ads.yaml (optional)", env["GOOGLE_ADS_CONFIG"]); v != "" {
		env["GOOGLE_ADS_CONFIG"] = v
	}

	if err := godotenv.Write(env, setupEnvPath); err != nil {
		return fmt.Errorf("failed to write %s: %w", setupEnvPath, err)
	}

	fmt.Printf("\nWrote %s. Try it with: adsmith analyze <url>\n", setupEnvPath)
	return nil
}

// promptValue reads one line, falling back to def on empty input or EOF.
func promptValue(reader *bufio.Reader, label, def string) string {
	if def != "" {
		fmt.Printf("%s [%s]: ", label, def)
	} else {
		fmt.Printf("%s: ", label)
	}
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return def
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
