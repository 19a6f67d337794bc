// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/vega/pkg/types"
)

// Caller is the failure boundary around a Provider. Provider errors,
// cancellation, and panics inside client libraries all come back as an
// error wrapping ErrCallFailed, after being logged.
type Caller struct {
	provider Provider
	logger   *zap.Logger
}

// NewCaller wraps p. A nil logger discards diagnostics.
func NewCaller(p Provider, logger *zap.Logger) *Caller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Caller{provider: p, logger: logger.With(zap.String("provider", string(p.Name())))}
}

// Provider returns the wrapped provider.
func (c *Caller) Provider() Provider { return c.provider }

// Call makes one generation call. An empty string with a nil error is a
// genuine empty response; any failure returns an error and no text.
func (c *Caller) Call(ctx context.Context, doc *types.Document, prompt string) (text string, err error) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %s: panic: %v", ErrCallFailed, c.provider.Name(), r)
			c.logger.Error("provider panicked", zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)))
		}
	}()

	if err := ctx.Err(); err != nil {
		c.logger.Error("provider call skipped", zap.Error(err))
		return "", fmt.Errorf("%w: %s: %w", ErrCallFailed, c.provider.Name(), err)
	}

	c.logger.Debug("calling provider", zap.String("document", doc.Name), zap.Int("prompt_bytes", len(prompt)))

	text, err = c.provider.Generate(ctx, doc, prompt)
	if err != nil {
		c.logger.Error("provider call failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return "", fmt.Errorf("%w: %s: %w", ErrCallFailed, c.provider.Name(), err)
	}

	c.logger.Info("provider responded",
		zap.Int("response_bytes", len(text)),
		zap.Duration("elapsed", time.Since(start)))
	return text, nil
}
