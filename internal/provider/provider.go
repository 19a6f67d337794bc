// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider calls the generation APIs that turn a specification PDF
// and a prompt into a test plan response. Each backend implements Provider;
// Caller wraps one and converts every failure into a logged ErrCallFailed.
package provider

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/vega/pkg/types"
)

var (
	// ErrUnknownProvider is returned for a name outside the supported set.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrMissingCredential is returned when the provider's API key is empty.
	ErrMissingCredential = errors.New("missing API key")

	// ErrCallFailed wraps every failure surfaced by Caller.Call.
	ErrCallFailed = errors.New("provider call failed")

	// ErrEmptyResponse is returned when the API answered without any text.
	ErrEmptyResponse = errors.New("no text in response")
)

// Environment variables conventionally holding each provider's API key.
const (
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvGeminiAPIKey    = "GEMINI_API_KEY"
)

// Provider generates a plan response for one document and prompt. Generate
// makes the outbound calls for a single attempt and never retries.
type Provider interface {
	Name() types.ProviderName
	Generate(ctx context.Context, doc *types.Document, prompt string) (string, error)
}

// CredentialEnv returns the environment variable that conventionally holds
// the API key for p.
func CredentialEnv(p types.ProviderName) string {
	switch p {
	case types.ProviderClaude:
		return EnvAnthropicAPIKey
	case types.ProviderOpenAI, types.ProviderOpenAIAssistant:
		return EnvOpenAIAPIKey
	case types.ProviderGemini:
		return EnvGeminiAPIKey
	}
	return ""
}

// SecretName returns the .secrets/ file name holding the API key for p.
func SecretName(p types.ProviderName) string {
	switch p {
	case types.ProviderClaude:
		return "anthropic-api-key"
	case types.ProviderOpenAI, types.ProviderOpenAIAssistant:
		return "openai-api-key"
	case types.ProviderGemini:
		return "gemini-api-key"
	}
	return ""
}

// New builds the provider selected by name from cfg. The name and the API
// key are checked here, before any network activity.
func New(name types.ProviderName, cfg types.Config, logger *zap.Logger) (Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := types.ParseProvider(string(name)); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	if cfg.APIKeyFor(name) == "" {
		return nil, missingCredential(name)
	}

	switch name {
	case types.ProviderClaude:
		return NewClaude(cfg.Claude, logger)
	case types.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAI, logger)
	case types.ProviderOpenAIAssistant:
		ac := cfg.Assistant
		ac.APIKey = cfg.APIKeyFor(name)
		if ac.BaseURL == "" {
			ac.BaseURL = cfg.OpenAI.BaseURL
		}
		return NewAssistant(ac, logger)
	case types.ProviderGemini:
		return NewGemini(cfg.Gemini, logger)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
}

func missingCredential(p types.ProviderName) error {
	return fmt.Errorf("%w for %s: set %s", ErrMissingCredential, p, CredentialEnv(p))
}

func maxTokensOrDefault(n int) int {
	if n <= 0 {
		return types.DefaultMaxTokens
	}
	return n
}
