package googleads

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the conventional credentials file name, looked up
// in the home directory and then the working directory.
const DefaultConfigFile = "google-ads.yaml"

// Credentials holds the Google Ads API access material. All fields except
// LoginCustomerID are required.
type Credentials struct {
	DeveloperToken  string
	ClientID        string
	ClientSecret    string
	RefreshToken    string
	LoginCustomerID string
}

// ConfigError represents missing or unreadable Google Ads credentials
type ConfigError struct {
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("google ads config error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("google ads config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// credentialsFile mirrors the google-ads.yaml layout. The login customer
// ID is decoded loosely because the file often carries it unquoted.
type credentialsFile struct {
	DeveloperToken  string `yaml:"developer_token"`
	ClientID        string `yaml:"client_id"`
	ClientSecret    string `yaml:"client_secret"`
	RefreshToken    string `yaml:"refresh_token"`
	LoginCustomerID any    `yaml:"login_customer_id"`
}

// LoadCredentials reads credentials from a google-ads.yaml file, then
// fills any still-empty field from GOOGLE_ADS_* environment variables.
// With an empty path the home directory is tried first, then the working
// directory; when no file exists the environment alone must supply the
// credentials.
func LoadCredentials(path string) (*Credentials, error) {
	creds := &Credentials{}

	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, &ConfigError{Message: fmt.Sprintf("credentials file not found: %s", path), Cause: err}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &ConfigError{Message: fmt.Sprintf("failed to read %s", path), Cause: err}
		}
		var file credentialsFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, &ConfigError{Message: fmt.Sprintf("failed to parse %s", path), Cause: err}
		}
		creds = &Credentials{
			DeveloperToken:  strings.TrimSpace(file.DeveloperToken),
			ClientID:        strings.TrimSpace(file.ClientID),
			ClientSecret:    strings.TrimSpace(file.ClientSecret),
			RefreshToken:    strings.TrimSpace(file.RefreshToken),
			LoginCustomerID: looseString(file.LoginCustomerID),
		}
	}

	creds.applyEnv()
	creds.LoginCustomerID = digitsOnly(creds.LoginCustomerID)

	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return creds, nil
}

// Validate reports the required fields that are still missing.
func (c *Credentials) Validate() error {
	var missing []string
	if c.DeveloperToken == "" {
		missing = append(missing, "developer_token")
	}
	if c.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "client_secret")
	}
	if c.RefreshToken == "" {
		missing = append(missing, "refresh_token")
	}
	if len(missing) > 0 {
		return &ConfigError{Message: fmt.Sprintf("missing credentials: %s (set them in %s or GOOGLE_ADS_* env vars)",
			strings.Join(missing, ", "), DefaultConfigFile)}
	}
	return nil
}

func (c *Credentials) applyEnv() {
	if c.DeveloperToken == "" {
		c.DeveloperToken = os.Getenv("GOOGLE_ADS_DEVELOPER_TOKEN")
	}
	if c.ClientID == "" {
		c.ClientID = os.Getenv("GOOGLE_ADS_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		c.ClientSecret = os.Getenv("GOOGLE_ADS_CLIENT_SECRET")
	}
	if c.RefreshToken == "" {
		c.RefreshToken = os.Getenv("GOOGLE_ADS_REFRESH_TOKEN")
	}
	if c.LoginCustomerID == "" {
		c.LoginCustomerID = os.Getenv("GOOGLE_ADS_LOGIN_CUSTOMER_ID")
	}
}

func findConfigFile() string {
	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile
	}
	return ""
}

func looseString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}

// digitsOnly strips dashes and any other non-digit from a customer ID;
// the API wants bare digits while humans write 123-456-7890.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
