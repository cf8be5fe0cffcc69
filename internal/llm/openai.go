package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OpenAICompatClient implements Client for any OpenAI-compatible chat
// completions endpoint. OpenAI itself, Groq, and local Ollama servers all
// speak this protocol; only the base URL, model names, and key differ.
type OpenAICompatClient struct {
	apiKey     string
	config     *Config
	httpClient *http.Client
}

// NewOpenAICompatClient creates a client for an OpenAI-compatible endpoint.
// Ollama runs unauthenticated, so the key is only required for hosted
// providers.
func NewOpenAICompatClient(config *Config, apiKey string) (*OpenAICompatClient, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required for provider %s", config.Provider)
	}
	if apiKey == "" && config.Provider != ProviderOllama {
		return nil, fmt.Errorf("API key is required for provider %s", config.Provider)
	}

	return &OpenAICompatClient{
		apiKey: apiKey,
		config: config,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string              `json:"model"`
	Messages       []chatMessage       `json:"messages"`
	Temperature    float64             `json:"temperature"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (c *OpenAICompatClient) callAPI(ctx context.Context, model, prompt string, temperature float64, jsonMode bool) (string, error) {
	reqBody := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: temperature,
	}
	if jsonMode {
		reqBody.ResponseFormat = &chatResponseFormat{Type: "json_object"}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.config.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("%s API error: %s (%s)", c.config.Provider, chatResp.Error.Message, chatResp.Error.Type)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s API returned status %d", c.config.Provider, resp.StatusCode)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from %s", c.config.Provider)
	}

	return chatResp.Choices[0].Message.Content, nil
}

// GenerateContent generates text content using the specified model tier
func (c *OpenAICompatClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}
	return c.callAPI(ctx, modelName, prompt, textTemperature, false)
}

// GenerateJSON generates JSON content using the specified model tier
func (c *OpenAICompatClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	text, err := c.callAPI(ctx, modelName, prompt, jsonTemperature, true)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// GetModel returns the model name for a tier
func (c *OpenAICompatClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client
func (c *OpenAICompatClient) Close() error {
	return nil
}
