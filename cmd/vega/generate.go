// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/vega/internal/history"
	"github.com/pdiddy/vega/internal/pipeline"
	"github.com/pdiddy/vega/internal/prompt"
	"github.com/pdiddy/vega/internal/provider"
	"github.com/pdiddy/vega/pkg/types"
)

func newGenerateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <pdf>",
		Short: "Generate an XML test plan from a specification PDF",
		Long: `Generate reads a specification PDF, asks the selected provider for a test
plan, and writes it to <input-dir>/<name>_testplan.xtp (or --output).

Each response is cleaned of markdown and chatter and checked for a testplan
root with at least one test_suite and one test_case. Invalid responses are
retried with a stricter prompt. When every attempt fails validation the last
response is still written, flagged for manual review, and the command
succeeds. A provider error ends the run without retrying.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringP("provider", "p", string(types.ProviderClaude), "provider: claude, openai, openai-assistant, gemini")
	flags.StringP("output", "o", "", "output path (default: <input-dir>/<name>_testplan.xtp)")
	flags.String("model", "", "model identifier overriding the provider default")
	flags.Int("max-attempts", types.DefaultMaxAttempts, "attempt budget per document")
	flags.Bool("no-repair", false, "write the last invalid response as-is instead of patching truncated XML")
	_ = a.v.BindPFlag("provider", flags.Lookup("provider"))
	_ = a.v.BindPFlag("output", flags.Lookup("output"))
	_ = a.v.BindPFlag("max_attempts", flags.Lookup("max-attempts"))

	return cmd
}

func (a *app) runGenerate(cmd *cobra.Command, path string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	name, err := types.ParseProvider(a.v.GetString("provider"))
	if err != nil {
		return fmt.Errorf("%w: %v", provider.ErrUnknownProvider, err)
	}

	cfg := a.config()
	cfg.Generation.Provider = name
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		cfg.SetModel(name, model)
	}
	if noRepair, _ := cmd.Flags().GetBool("no-repair"); noRepair {
		cfg.Generation.Repair = false
	}

	p, err := newProvider(name, cfg, a.logger)
	if err != nil {
		return err
	}

	prompts, err := prompt.New()
	if err != nil {
		return err
	}

	gen := pipeline.NewGenerator(
		provider.NewCaller(p, a.logger),
		prompts,
		pipeline.Settings{
			Generation: cfg.Generation,
			Provider:   name,
			Model:      cfg.ModelFor(name),
		},
		cmd.OutOrStdout(),
		a.logger,
	)

	if dbPath := cfg.History.DBPath; dbPath != "" {
		store, err := history.NewStore(dbPath)
		if err != nil {
			a.logger.Warn("run history disabled", zap.String("db", dbPath), zap.Error(err))
		} else {
			defer store.Close()
			gen.WithRecorder(store)
		}
	}

	report, err := gen.Generate(ctx, path)
	if err != nil {
		return err
	}

	if report.Result.Outcome == types.OutcomeExhausted {
		a.logger.Warn("best-effort plan written",
			zap.String("output", report.OutputPath),
			zap.String("reason", report.Result.Validation.Reason),
			zap.Bool("repaired", report.Repaired))
	}
	return nil
}
