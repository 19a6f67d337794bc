// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the generate flow for one document: build the
// prompt, call the provider, clean and validate the response, and retry
// with an escalated prompt until a valid plan arrives or the attempt budget
// runs out.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/pdiddy/vega/internal/xtp"
	"github.com/pdiddy/vega/pkg/types"
)

// PromptBuilder renders the initial and retry prompts.
type PromptBuilder interface {
	Build(filename string) (string, error)
	BuildRetry(filename, reason string) (string, error)
}

// ModelCaller makes a single generation call. *provider.Caller implements it.
type ModelCaller interface {
	Call(ctx context.Context, doc *types.Document, prompt string) (string, error)
}

// Result is the outcome of a coordinated run.
type Result struct {
	Outcome types.Outcome

	// Payload is the cleaned text of the last attempt. On OutcomeExhausted
	// it is the best-effort candidate and has not passed validation.
	Payload string

	// Attempts lists every call made, in order.
	Attempts []types.Attempt

	// Validation is the verdict on Payload.
	Validation types.ValidationResult
}

// Coordinator drives the attempt loop. A provider failure ends the run at
// once; only validation failures consume further attempts.
type Coordinator struct {
	prompts     PromptBuilder
	caller      ModelCaller
	maxAttempts int
	out         io.Writer
	logger      *zap.Logger
}

// NewCoordinator returns a Coordinator with the given attempt budget.
// maxAttempts below 1 is treated as 1. Progress lines are written to out
// when it is non-nil.
func NewCoordinator(prompts PromptBuilder, caller ModelCaller, maxAttempts int, out io.Writer, logger *zap.Logger) *Coordinator {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		prompts:     prompts,
		caller:      caller,
		maxAttempts: maxAttempts,
		out:         out,
		logger:      logger,
	}
}

// MaxAttempts returns the effective attempt budget.
func (c *Coordinator) MaxAttempts() int { return c.maxAttempts }

// Run generates a plan for doc. On a provider failure it returns the
// partial result with OutcomeFailed and the wrapped call error. Exhausting
// the budget is not an error.
func (c *Coordinator) Run(ctx context.Context, doc *types.Document) (*Result, error) {
	prompt, err := c.prompts.Build(doc.Name)
	if err != nil {
		return nil, fmt.Errorf("building prompt: %w", err)
	}

	res := &Result{}
	for n := 1; ; n++ {
		fmt.Fprintf(c.out, "      attempt %d/%d\n", n, c.maxAttempts)

		attempt := types.Attempt{Number: n, Retry: n > 1}
		raw, err := c.caller.Call(ctx, doc, prompt)
		if err != nil {
			attempt.Error = err.Error()
			res.Attempts = append(res.Attempts, attempt)
			res.Outcome = types.OutcomeFailed
			return res, fmt.Errorf("attempt %d: %w", n, err)
		}

		payload := xtp.Clean(raw)
		verdict := xtp.Validate(payload)
		attempt.ResponseBytes = len(raw)
		attempt.Validation = verdict
		res.Attempts = append(res.Attempts, attempt)
		res.Payload = payload
		res.Validation = verdict

		if verdict.OK {
			c.logger.Info("plan accepted", zap.Int("attempt", n),
				zap.Int("suites", verdict.Suites), zap.Int("cases", verdict.Cases))
			for _, w := range verdict.Warnings {
				c.logger.Warn("plan warning", zap.String("warning", w))
			}
			res.Outcome = types.OutcomeSucceeded
			return res, nil
		}

		c.logger.Warn("plan rejected", zap.Int("attempt", n), zap.String("reason", verdict.Reason))
		if n >= c.maxAttempts {
			fmt.Fprintf(c.out, "      attempt %d invalid: %s\n", n, verdict.Reason)
			res.Outcome = types.OutcomeExhausted
			return res, nil
		}

		fmt.Fprintf(c.out, "      attempt %d invalid: %s; retrying\n", n, verdict.Reason)
		prompt, err = c.prompts.BuildRetry(doc.Name, verdict.Reason)
		if err != nil {
			return nil, fmt.Errorf("building retry prompt: %w", err)
		}
	}
}
