// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/pdiddy/vega/internal/document"
	"github.com/pdiddy/vega/pkg/types"
)

// Claude sends the PDF as a base64 document block to the Anthropic
// Messages API.
type Claude struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	logger    *zap.Logger
}

// NewClaude builds a Claude provider. SDK retries are disabled; retrying is
// the coordinator's job.
func NewClaude(cfg types.ClaudeConfig, logger *zap.Logger) (*Claude, error) {
	if cfg.APIKey == "" {
		return nil, missingCredential(types.ProviderClaude)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = types.DefaultClaudeModel
	}

	return &Claude{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: int64(maxTokensOrDefault(cfg.MaxTokens)),
		logger:    logger,
	}, nil
}

// Name implements Provider.
func (c *Claude) Name() types.ProviderName { return types.ProviderClaude }

// Generate implements Provider.
func (c *Claude) Generate(ctx context.Context, doc *types.Document, prompt string) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewDocumentBlock(anthropic.Base64PDFSourceParam{
					Data: document.Encode(doc.Data),
				}),
				anthropic.NewTextBlock(prompt),
			),
		},
	})
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}

	if msg.StopReason == anthropic.StopReasonMaxTokens {
		c.logger.Warn("response truncated at max tokens", zap.Int64("max_tokens", c.maxTokens))
	}

	var b strings.Builder
	found := false
	for _, block := range msg.Content {
		if block.Type == "text" {
			found = true
			b.WriteString(block.Text)
		}
	}
	if !found {
		return "", fmt.Errorf("Claude API: %w", ErrEmptyResponse)
	}
	return b.String(), nil
}
