// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/pdiddy/vega/pkg/types"
)

const pdfMIMEType = "application/pdf"

// Gemini attaches the PDF inline to a Gemini API request.
type Gemini struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int32
	logger    *zap.Logger
}

// NewGemini builds a Gemini provider.
func NewGemini(cfg types.GeminiConfig, logger *zap.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, missingCredential(types.ProviderGemini)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	model := cfg.Model
	if model == "" {
		model = types.DefaultGeminiModel
	}

	return &Gemini{
		apiKey:    cfg.APIKey,
		baseURL:   cfg.BaseURL,
		model:     model,
		maxTokens: int32(maxTokensOrDefault(cfg.MaxTokens)),
		logger:    logger,
	}, nil
}

// Name implements Provider.
func (g *Gemini) Name() types.ProviderName { return types.ProviderGemini }

// Generate implements Provider.
func (g *Gemini) Generate(ctx context.Context, doc *types.Document, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend:     genai.BackendGeminiAPI,
		APIKey:      g.apiKey,
		HTTPOptions: genai.HTTPOptions{BaseURL: g.baseURL},
	})
	if err != nil {
		return "", fmt.Errorf("creating Gemini client: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(doc.Data, pdfMIMEType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		MaxOutputTokens: g.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("calling Gemini API: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("Gemini API: %w", ErrEmptyResponse)
	}

	if resp.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		g.logger.Warn("response truncated at max tokens", zap.Int32("max_tokens", g.maxTokens))
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && !part.Thought {
			text += part.Text
		}
	}
	return text, nil
}
