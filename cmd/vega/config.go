// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/viper"

	"github.com/pdiddy/vega/internal/logging"
	"github.com/pdiddy/vega/internal/provider"
	"github.com/pdiddy/vega/internal/secrets"
	"github.com/pdiddy/vega/pkg/types"
)

func setDefaults(v *viper.Viper) {
	d := types.DefaultConfig()

	v.SetDefault("provider", string(d.Generation.Provider))
	v.SetDefault("max_attempts", d.Generation.MaxAttempts)
	v.SetDefault("repair", d.Generation.Repair)

	v.SetDefault("claude.model", d.Claude.Model)
	v.SetDefault("claude.max_tokens", d.Claude.MaxTokens)

	v.SetDefault("openai.model", d.OpenAI.Model)
	v.SetDefault("openai.max_tokens", d.OpenAI.MaxTokens)
	v.SetDefault("openai.text_limit", d.OpenAI.TextLimit)

	v.SetDefault("assistant.model", d.Assistant.Model)
	v.SetDefault("assistant.poll_interval", d.Assistant.PollInterval)
	v.SetDefault("assistant.max_wait", d.Assistant.MaxWait)
	v.SetDefault("assistant.cleanup", d.Assistant.Cleanup)

	v.SetDefault("gemini.model", d.Gemini.Model)
	v.SetDefault("gemini.max_tokens", d.Gemini.MaxTokens)

	v.SetDefault("log.level", logging.DefaultLevel)
	v.SetDefault("log.json", false)
}

// config assembles a types.Config from viper and resolves every provider's
// API key: explicit configuration first, then the .secrets/ file, then the
// provider's conventional environment variable.
func (a *app) config() types.Config {
	v := a.v
	cfg := types.Config{
		Generation: types.GenerationConfig{
			Provider:    types.ProviderName(v.GetString("provider")),
			MaxAttempts: v.GetInt("max_attempts"),
			Repair:      v.GetBool("repair"),
			OutputPath:  v.GetString("output"),
		},
		Claude: types.ClaudeConfig{
			AIConfig: types.AIConfig{
				Model:     v.GetString("claude.model"),
				MaxTokens: v.GetInt("claude.max_tokens"),
				APIKey:    a.credential(types.ProviderClaude, v.GetString("claude.api_key")),
			},
			BaseURL: v.GetString("claude.base_url"),
		},
		OpenAI: types.OpenAIConfig{
			AIConfig: types.AIConfig{
				Model:     v.GetString("openai.model"),
				MaxTokens: v.GetInt("openai.max_tokens"),
				APIKey:    a.credential(types.ProviderOpenAI, v.GetString("openai.api_key")),
			},
			BaseURL:   v.GetString("openai.base_url"),
			TextLimit: v.GetInt("openai.text_limit"),
		},
		Assistant: types.AssistantConfig{
			AIConfig: types.AIConfig{
				Model:  v.GetString("assistant.model"),
				APIKey: v.GetString("assistant.api_key"),
			},
			BaseURL:      v.GetString("assistant.base_url"),
			PollInterval: v.GetDuration("assistant.poll_interval"),
			MaxWait:      v.GetDuration("assistant.max_wait"),
			Cleanup:      v.GetBool("assistant.cleanup"),
		},
		Gemini: types.GeminiConfig{
			AIConfig: types.AIConfig{
				Model:     v.GetString("gemini.model"),
				MaxTokens: v.GetInt("gemini.max_tokens"),
				APIKey:    a.credential(types.ProviderGemini, v.GetString("gemini.api_key")),
			},
			BaseURL: v.GetString("gemini.base_url"),
		},
		History: types.HistoryConfig{
			DBPath: v.GetString("history.db"),
		},
	}
	return cfg
}

func (a *app) credential(p types.ProviderName, configured string) string {
	return secrets.Resolve(
		configured,
		a.secrets[provider.SecretName(p)],
		a.getenv(provider.CredentialEnv(p)),
	)
}
