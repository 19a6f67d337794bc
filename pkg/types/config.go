// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
	"time"
)

// ProviderName identifies a generation backend.
type ProviderName string

const (
	ProviderClaude          ProviderName = "claude"
	ProviderOpenAI          ProviderName = "openai"
	ProviderOpenAIAssistant ProviderName = "openai-assistant"
	ProviderGemini          ProviderName = "gemini"
)

// SupportedProviders returns the fixed provider set in display order.
func SupportedProviders() []ProviderName {
	return []ProviderName{ProviderClaude, ProviderOpenAI, ProviderOpenAIAssistant, ProviderGemini}
}

// ParseProvider normalises s and checks it against the supported set.
func ParseProvider(s string) (ProviderName, error) {
	name := ProviderName(strings.ToLower(strings.TrimSpace(s)))
	for _, p := range SupportedProviders() {
		if p == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown provider %q (supported: %s)", s, strings.Join(providerStrings(), ", "))
}

func providerStrings() []string {
	names := SupportedProviders()
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = string(n)
	}
	return out
}

// AIConfig holds shared settings for providers that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-20250514").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API. Resolved by the CLI;
	// the pipeline never reads the environment itself.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxTokens caps the length of the generated response (default 8000).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// ClaudeConfig holds settings for the Anthropic Messages API provider.
type ClaudeConfig struct {
	AIConfig `yaml:",inline"`

	// BaseURL overrides the API endpoint. Empty uses the SDK default.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// OpenAIConfig holds settings for the OpenAI chat completions provider.
type OpenAIConfig struct {
	AIConfig `yaml:",inline"`

	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// TextLimit bounds the number of runes of extracted PDF text embedded in
	// the prompt (default 100000, 0 means unlimited).
	TextLimit int `json:"text_limit" yaml:"text_limit"`
}

// AssistantConfig holds settings for the OpenAI Assistants provider, which
// uploads the PDF and lets a file_search assistant read it.
type AssistantConfig struct {
	AIConfig `yaml:",inline"`

	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// PollInterval is the delay between run status checks (default 5s).
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`

	// MaxWait bounds the total time spent polling one run (default 10m).
	MaxWait time.Duration `json:"max_wait" yaml:"max_wait"`

	// Cleanup deletes the uploaded file, vector store, and assistant after
	// the run (default true).
	Cleanup bool `json:"cleanup" yaml:"cleanup"`
}

// GeminiConfig holds settings for the Google Gemini provider.
type GeminiConfig struct {
	AIConfig `yaml:",inline"`

	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// GenerationConfig holds settings for the generate pipeline.
type GenerationConfig struct {
	// Provider selects the backend.
	Provider ProviderName `json:"provider" yaml:"provider"`

	// MaxAttempts is the attempt budget for one document (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// Repair applies the truncated-document fallback to a best-effort
	// payload when the attempt budget runs out (default true).
	Repair bool `json:"repair" yaml:"repair"`

	// OutputPath overrides the derived <stem>_testplan.xtp path.
	OutputPath string `json:"output_path,omitempty" yaml:"output_path,omitempty"`
}

// HistoryConfig holds settings for the run history store.
type HistoryConfig struct {
	// DBPath is the SQLite database path. Empty disables history.
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// Config groups all settings for one vega invocation.
type Config struct {
	Generation GenerationConfig `json:"generation" yaml:"generation"`
	Claude     ClaudeConfig     `json:"claude" yaml:"claude"`
	OpenAI     OpenAIConfig     `json:"openai" yaml:"openai"`
	Assistant  AssistantConfig  `json:"assistant" yaml:"assistant"`
	Gemini     GeminiConfig     `json:"gemini" yaml:"gemini"`
	History    HistoryConfig    `json:"history" yaml:"history"`
}

// Defaults for Config fields left at their zero value.
const (
	DefaultMaxAttempts      = 3
	DefaultMaxTokens        = 8000
	DefaultTextLimit        = 100000
	DefaultClaudeModel      = "claude-sonnet-4-20250514"
	DefaultOpenAIModel      = "gpt-4o"
	DefaultAssistantModel   = "gpt-4o"
	DefaultGeminiModel      = "gemini-2.5-pro"
	DefaultPollInterval     = 5 * time.Second
	DefaultAssistantMaxWait = 10 * time.Minute
)

// DefaultConfig returns a Config with every default applied and no credentials.
func DefaultConfig() Config {
	return Config{
		Generation: GenerationConfig{
			Provider:    ProviderClaude,
			MaxAttempts: DefaultMaxAttempts,
			Repair:      true,
		},
		Claude: ClaudeConfig{
			AIConfig: AIConfig{Model: DefaultClaudeModel, MaxTokens: DefaultMaxTokens},
		},
		OpenAI: OpenAIConfig{
			AIConfig:  AIConfig{Model: DefaultOpenAIModel, MaxTokens: DefaultMaxTokens},
			TextLimit: DefaultTextLimit,
		},
		Assistant: AssistantConfig{
			AIConfig:     AIConfig{Model: DefaultAssistantModel},
			PollInterval: DefaultPollInterval,
			MaxWait:      DefaultAssistantMaxWait,
			Cleanup:      true,
		},
		Gemini: GeminiConfig{
			AIConfig: AIConfig{Model: DefaultGeminiModel, MaxTokens: DefaultMaxTokens},
		},
	}
}

// ModelFor returns the configured model identifier for provider p.
func (c Config) ModelFor(p ProviderName) string {
	switch p {
	case ProviderClaude:
		return c.Claude.Model
	case ProviderOpenAI:
		return c.OpenAI.Model
	case ProviderOpenAIAssistant:
		return c.Assistant.Model
	case ProviderGemini:
		return c.Gemini.Model
	}
	return ""
}

// SetModel overrides the model identifier for provider p.
func (c *Config) SetModel(p ProviderName, model string) {
	switch p {
	case ProviderClaude:
		c.Claude.Model = model
	case ProviderOpenAI:
		c.OpenAI.Model = model
	case ProviderOpenAIAssistant:
		c.Assistant.Model = model
	case ProviderGemini:
		c.Gemini.Model = model
	}
}

// APIKeyFor returns the configured API key for provider p. Both OpenAI
// providers share one key.
func (c Config) APIKeyFor(p ProviderName) string {
	switch p {
	case ProviderClaude:
		return c.Claude.APIKey
	case ProviderOpenAI:
		return c.OpenAI.APIKey
	case ProviderOpenAIAssistant:
		if c.Assistant.APIKey != "" {
			return c.Assistant.APIKey
		}
		return c.OpenAI.APIKey
	case ProviderGemini:
		return c.Gemini.APIKey
	}
	return ""
}
