// Package config provides configuration loading and validation for the CLI
// and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// validate is the shared struct validator for config values.
var validate = validator.New()

// Config represents the application configuration that can be loaded from a
// JSON file. All fields are optional; missing values use defaults or must be
// provided via CLI flags.
type Config struct {
	// Output
	OutputDir string `json:"output_dir,omitempty"` // Directory for exported reports

	// Model selection
	AIProvider string `json:"ai_provider,omitempty" validate:"omitempty,oneof=gemini google openai anthropic groq ollama"`
	AIModel    string `json:"ai_model,omitempty"` // Pins every tier to one model when set
	APIKey     string `json:"api_key,omitempty"`  // Provider API key

	// Behavior
	UseBrowser  bool `json:"use_browser,omitempty"`  // Use headless browser fallback for SPA sites
	MaxKeywords int  `json:"max_keywords,omitempty" validate:"omitempty,min=1,max=100"`
	Verbose     bool `json:"verbose,omitempty"` // Print detailed debug information

	// Persistence
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL

	// Server
	ServerAddr       string `json:"server_addr,omitempty"`
	AuthEnabled      bool   `json:"auth_enabled,omitempty"`
	AuthUsername     string `json:"auth_username,omitempty"`
	AuthPassword     string `json:"auth_password,omitempty"`      // Plaintext; hashed at startup when no hash is set
	AuthPasswordHash string `json:"auth_password_hash,omitempty"` // bcrypt hash, takes priority over AuthPassword

	// Google Ads
	GoogleAdsConfig string `json:"google_ads_config,omitempty"` // Path to google-ads.yaml
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config from environment variables. Unset variables leave
// their fields at the zero value so later merging can fill them.
func FromEnv() *Config {
	cfg := &Config{
		OutputDir:        os.Getenv("OUTPUT_DIR"),
		AIProvider:       os.Getenv("AI_PROVIDER"),
		AIModel:          os.Getenv("AI_MODEL"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		ServerAddr:       os.Getenv("SERVER_ADDR"),
		AuthUsername:     os.Getenv("AUTH_USERNAME"),
		AuthPassword:     os.Getenv("AUTH_PASSWORD"),
		AuthPasswordHash: os.Getenv("AUTH_PASSWORD_HASH"),
		GoogleAdsConfig:  os.Getenv("GOOGLE_ADS_CONFIG"),
	}

	if v := os.Getenv("AUTH_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.AuthEnabled = enabled
		}
	}
	if v := os.Getenv("MAX_KEYWORDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxKeywords = n
		}
	}

	return cfg
}

// Defaults returns the built-in fallback values applied after file and
// environment layers.
func Defaults() Config {
	return Config{
		OutputDir:    "output",
		AIProvider:   "gemini",
		ServerAddr:   ":8080",
		AuthUsername: "admin",
	}
}

// Load assembles the effective configuration: environment variables first,
// overridden by the JSON file at path (when non-empty), topped up with
// built-in defaults, then validated. CLI flags override the result at the
// command layer.
func Load(path string) (*Config, error) {
	cfg := *FromEnv()

	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		merged := fileCfg.MergeWithDefaults(cfg)
		// Bool fields are not merged (unset and false are indistinguishable
		// in JSON), so a true from either layer sticks.
		merged.UseBrowser = merged.UseBrowser || cfg.UseBrowser
		merged.Verbose = merged.Verbose || cfg.Verbose
		merged.AuthEnabled = merged.AuthEnabled || cfg.AuthEnabled
		cfg = merged
	}

	cfg = cfg.MergeWithDefaults(Defaults())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			ve := errs[0]
			return fmt.Errorf("config error: invalid %s (failed '%s' check)", jsonFieldName(ve.Field()), ve.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}

	if c.AuthEnabled && c.AuthPassword == "" && c.AuthPasswordHash == "" {
		return fmt.Errorf("config error: auth is enabled but neither 'auth_password' nor 'auth_password_hash' is set")
	}

	// Validate file paths exist (if specified)
	if c.GoogleAdsConfig != "" {
		if _, err := os.Stat(c.GoogleAdsConfig); os.IsNotExist(err) {
			return fmt.Errorf("config error: google ads config file not found: %s", c.GoogleAdsConfig)
		}
	}

	return nil
}

// jsonFieldName maps a struct field name to its JSON tag spelling for
// error messages.
func jsonFieldName(field string) string {
	t, ok := jsonNames[field]
	if !ok {
		return field
	}
	return t
}

var jsonNames = map[string]string{
	"OutputDir":        "output_dir",
	"AIProvider":       "ai_provider",
	"AIModel":          "ai_model",
	"APIKey":           "api_key",
	"UseBrowser":       "use_browser",
	"MaxKeywords":      "max_keywords",
	"Verbose":          "verbose",
	"DatabaseURL":      "database_url",
	"ServerAddr":       "server_addr",
	"AuthEnabled":      "auth_enabled",
	"AuthUsername":     "auth_username",
	"AuthPassword":     "auth_password",
	"AuthPasswordHash": "auth_password_hash",
	"GoogleAdsConfig":  "google_ads_config",
}

// MergeWithDefaults returns a new Config with empty string fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.AIProvider == "" {
		result.AIProvider = defaults.AIProvider
	}
	if result.AIModel == "" {
		result.AIModel = defaults.AIModel
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.ServerAddr == "" {
		result.ServerAddr = defaults.ServerAddr
	}
	if result.AuthUsername == "" {
		result.AuthUsername = defaults.AuthUsername
	}
	if result.AuthPassword == "" {
		result.AuthPassword = defaults.AuthPassword
	}
	if result.AuthPasswordHash == "" {
		result.AuthPasswordHash = defaults.AuthPasswordHash
	}
	if result.GoogleAdsConfig == "" {
		result.GoogleAdsConfig = defaults.GoogleAdsConfig
	}

	// Int fields: use default if zero
	if result.MaxKeywords == 0 {
		result.MaxKeywords = defaults.MaxKeywords
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// APIKeyFor returns the configured API key, falling back to the provider's
// conventional environment variable. Gemini accepts either GEMINI_API_KEY or
// GOOGLE_API_KEY; Ollama runs locally and needs no key.
func (c *Config) APIKeyFor(provider string) string {
	if c.APIKey != "" {
		return c.APIKey
	}
	switch provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "groq":
		return os.Getenv("GROQ_API_KEY")
	case "ollama":
		return ""
	default:
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			return key
		}
		return os.Getenv("GOOGLE_API_KEY")
	}
}

// Masked returns a copy with secret values replaced for display.
func (c *Config) Masked() Config {
	masked := *c
	masked.APIKey = maskSecret(masked.APIKey)
	masked.AuthPassword = maskSecret(masked.AuthPassword)
	masked.AuthPasswordHash = maskSecret(masked.AuthPasswordHash)
	masked.DatabaseURL = maskSecret(masked.DatabaseURL)
	return masked
}

// maskSecret keeps a short prefix so the operator can tell which credential
// is loaded without exposing it.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****"
}
