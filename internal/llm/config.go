// Package llm provides centralized LLM configuration and client abstractions.
// This package enables switching between providers and model tiers without
// touching the generation steps that consume them.
package llm

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: classification, extraction, basic summarization
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning: analysis, structured output
	TierStandard ModelTier = "standard"
	// TierAdvanced is for complex reasoning: copy drafting, diagnosis
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is the OpenAI provider
	ProviderOpenAI Provider = "openai"
	// ProviderAnthropic is the Anthropic/Claude provider
	ProviderAnthropic Provider = "anthropic"
	// ProviderGroq serves open models over an OpenAI-compatible API
	ProviderGroq Provider = "groq"
	// ProviderOllama is a locally hosted OpenAI-compatible endpoint
	ProviderOllama Provider = "ollama"
)

// ParseProvider maps a free-form provider name to a Provider; unknown names
// fall back to Gemini, the default provider.
func ParseProvider(s string) Provider {
	switch Provider(s) {
	case ProviderOpenAI:
		return ProviderOpenAI
	case ProviderAnthropic:
		return ProviderAnthropic
	case ProviderGroq:
		return ProviderGroq
	case ProviderOllama:
		return ProviderOllama
	default:
		return ProviderGemini
	}
}

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
	// BaseURL overrides the provider endpoint; used for OpenAI-compatible
	// servers such as Groq and Ollama.
	BaseURL string
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// ConfigForProvider returns the default configuration for a provider
func ConfigForProvider(provider Provider) *Config {
	switch provider {
	case ProviderOpenAI:
		return DefaultOpenAIConfig()
	case ProviderAnthropic:
		return DefaultAnthropicConfig()
	case ProviderGroq:
		return DefaultGroqConfig()
	case ProviderOllama:
		return DefaultOllamaConfig()
	default:
		return DefaultGeminiConfig()
	}
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// DefaultOpenAIConfig returns the default OpenAI configuration
func DefaultOpenAIConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		BaseURL:  "https://api.openai.com/v1",
		Models: map[ModelTier]string{
			TierLite:     "gpt-4o-mini",
			TierStandard: "gpt-4o-mini",
			TierAdvanced: "gpt-4o",
		},
	}
}

// DefaultAnthropicConfig returns the default Anthropic configuration
func DefaultAnthropicConfig() *Config {
	return &Config{
		Provider: ProviderAnthropic,
		Models: map[ModelTier]string{
			TierLite:     "claude-3-5-haiku-latest",
			TierStandard: "claude-3-5-sonnet-latest",
			TierAdvanced: "claude-3-5-sonnet-latest",
		},
	}
}

// DefaultGroqConfig returns the default Groq configuration
func DefaultGroqConfig() *Config {
	return &Config{
		Provider: ProviderGroq,
		BaseURL:  "https://api.groq.com/openai/v1",
		Models: map[ModelTier]string{
			TierLite:     "llama-3.1-8b-instant",
			TierStandard: "llama-3.3-70b-versatile",
			TierAdvanced: "llama-3.3-70b-versatile",
		},
	}
}

// DefaultOllamaConfig returns the default local Ollama configuration
func DefaultOllamaConfig() *Config {
	return &Config{
		Provider: ProviderOllama,
		BaseURL:  "http://localhost:11434/v1",
		Models: map[ModelTier]string{
			TierLite:     "llama3.2",
			TierStandard: "llama3.2",
			TierAdvanced: "llama3.2",
		},
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return "" // No model configured
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider: c.Provider,
		BaseURL:  c.BaseURL,
		Models:   make(map[ModelTier]string),
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}

// WithModelForAllTiers returns a new Config pinning every tier to one model,
// matching the CLI's --model flag semantics.
func (c *Config) WithModelForAllTiers(model string) *Config {
	newConfig := &Config{
		Provider: c.Provider,
		BaseURL:  c.BaseURL,
		Models: map[ModelTier]string{
			TierLite:     model,
			TierStandard: model,
			TierAdvanced: model,
		},
	}
	return newConfig
}
