// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/pdiddy/vega/internal/document"
	"github.com/pdiddy/vega/pkg/types"
)

// OpenAI calls the chat completions API. Chat models cannot take the PDF
// itself, so the prompt carries the document's extracted text instead.
type OpenAI struct {
	opts      []option.RequestOption
	model     string
	maxTokens int64
	textLimit int
	logger    *zap.Logger
}

// NewOpenAI builds an OpenAI chat provider with SDK retries disabled.
func NewOpenAI(cfg types.OpenAIConfig, logger *zap.Logger) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, missingCredential(types.ProviderOpenAI)
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
		model = types.DefaultOpenAIModel
	}

	return &OpenAI{
		opts:      opts,
		model:     model,
		maxTokens: int64(maxTokensOrDefault(cfg.MaxTokens)),
		textLimit: cfg.TextLimit,
		logger:    logger,
	}, nil
}

// Name implements Provider.
func (o *OpenAI) Name() types.ProviderName { return types.ProviderOpenAI }

// Generate implements Provider.
func (o *OpenAI) Generate(ctx context.Context, doc *types.Document, prompt string) (string, error) {
	client := openai.NewClient(o.opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(o.model),
		MaxTokens: openai.Int(o.maxTokens),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(o.userMessage(doc, prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("calling OpenAI API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI API: %w", ErrEmptyResponse)
	}

	choice := resp.Choices[0]
	if choice.FinishReason == "length" {
		o.logger.Warn("response truncated at max tokens", zap.Int64("max_tokens", o.maxTokens))
	}
	return choice.Message.Content, nil
}

// userMessage prefixes prompt with the document name and, when it can be
// extracted, the document text.
func (o *OpenAI) userMessage(doc *types.Document, prompt string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I have a PDF specification called %s.", doc.Name)

	text, err := document.PlainText(doc, o.textLimit)
	switch {
	case err != nil:
		o.logger.Warn("could not extract PDF text; sending prompt only", zap.String("document", doc.Name), zap.Error(err))
	case text == "":
		o.logger.Warn("PDF has no extractable text; sending prompt only", zap.String("document", doc.Name))
	default:
		b.WriteString(" Its extracted text follows between the markers.\n\n")
		b.WriteString("=== BEGIN DOCUMENT TEXT ===\n")
		b.WriteString(text)
		b.WriteString("\n=== END DOCUMENT TEXT ===")
	}

	b.WriteString("\n\n")
	b.WriteString(prompt)
	return b.String()
}
