// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProvider(t *testing.T) {
	tests := []struct {
		in      string
		want    ProviderName
		wantErr bool
	}{
		{in: "claude", want: ProviderClaude},
		{in: " OpenAI ", want: ProviderOpenAI},
		{in: "openai-assistant", want: ProviderOpenAIAssistant},
		{in: "gemini", want: ProviderGemini},
		{in: "mistral", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseProvider(tt.in)
		if tt.wantErr {
			require.Error(t, err, tt.in)
			assert.Contains(t, err.Error(), "supported: claude, openai, openai-assistant, gemini")
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ProviderClaude, cfg.Generation.Provider)
	assert.Equal(t, 3, cfg.Generation.MaxAttempts)
	assert.True(t, cfg.Generation.Repair)
	assert.True(t, cfg.Assistant.Cleanup)
	for _, p := range SupportedProviders() {
		assert.NotEmpty(t, cfg.ModelFor(p), "default model for %s", p)
		assert.Empty(t, cfg.APIKeyFor(p), "no credentials by default")
	}
}

func TestAssistantSharesOpenAIKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OpenAI.APIKey = "sk-shared"
	assert.Equal(t, "sk-shared", cfg.APIKeyFor(ProviderOpenAIAssistant))

	cfg.Assistant.APIKey = "sk-own"
	assert.Equal(t, "sk-own", cfg.APIKeyFor(ProviderOpenAIAssistant))
	assert.Equal(t, "sk-shared", cfg.APIKeyFor(ProviderOpenAI))
}

func TestSetModel(t *testing.T) {
	cfg := DefaultConfig()
	for _, p := range SupportedProviders() {
		cfg.SetModel(p, "custom-"+string(p))
		assert.Equal(t, "custom-"+string(p), cfg.ModelFor(p))
	}
}

func TestDocumentStem(t *testing.T) {
	tests := []struct{ name, want string }{
		{"proto_spec.pdf", "proto_spec"},
		{"v1.2.spec.PDF", "v1.2.spec"},
		{"noext", "noext"},
	}
	for _, tt := range tests {
		d := &Document{Name: tt.name}
		if got := d.Stem(); got != tt.want {
			t.Errorf("Stem(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
