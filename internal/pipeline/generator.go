// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/vega/internal/document"
	"github.com/pdiddy/vega/internal/history"
	"github.com/pdiddy/vega/internal/xtp"
	"github.com/pdiddy/vega/pkg/types"
)

// OutputSuffix is appended to the input stem to name the output file.
const OutputSuffix = "_testplan.xtp"

// Recorder stores a finished run. *history.Store implements it.
type Recorder interface {
	Record(ctx context.Context, run history.Run) (history.Run, error)
}

// Settings configures a Generator.
type Settings struct {
	Generation types.GenerationConfig

	// Provider and Model label the banner and the history record.
	Provider types.ProviderName
	Model    string
}

// Report summarises one generate run.
type Report struct {
	Document   *types.Document
	OutputPath string
	Result     *Result

	// Repaired is true when the exhausted payload was patched before writing.
	Repaired bool

	// Written is the verdict on the text actually written to OutputPath.
	Written types.ValidationResult

	Duration time.Duration
}

// Generator turns one PDF into a written .xtp file.
type Generator struct {
	caller   ModelCaller
	prompts  PromptBuilder
	settings Settings
	recorder Recorder
	out      io.Writer
	logger   *zap.Logger
}

// NewGenerator returns a Generator. Progress goes to out; diagnostics to
// logger.
func NewGenerator(caller ModelCaller, prompts PromptBuilder, settings Settings, out io.Writer, logger *zap.Logger) *Generator {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		caller:   caller,
		prompts:  prompts,
		settings: settings,
		out:      out,
		logger:   logger,
	}
}

// WithRecorder enables run history. A nil recorder disables it.
func (g *Generator) WithRecorder(r Recorder) *Generator {
	g.recorder = r
	return g
}

// OutputPath returns the path the plan for doc is written to.
func (g *Generator) OutputPath(doc *types.Document) string {
	if g.settings.Generation.OutputPath != "" {
		return g.settings.Generation.OutputPath
	}
	return filepath.Join(filepath.Dir(doc.Path), doc.Stem()+OutputSuffix)
}

// Generate reads the PDF at path, coordinates the provider calls, and
// writes the plan. An exhausted budget still writes the best-effort plan
// and returns a nil error; callers inspect Report.Result.Outcome.
func (g *Generator) Generate(ctx context.Context, path string) (*Report, error) {
	start := time.Now()
	coord := NewCoordinator(g.prompts, g.caller, g.settings.Generation.MaxAttempts, g.out, g.logger)

	g.banner(coord.MaxAttempts())

	fmt.Fprintln(g.out, "[1/3] Reading PDF...")
	doc, err := document.Load(path)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(g.out, "      %s: %.1f KB, %s\n", doc.Name, float64(doc.Size())/1024, pageLabel(doc.Pages))

	report := &Report{Document: doc, OutputPath: g.OutputPath(doc)}

	fmt.Fprintln(g.out, "[2/3] Generating test plan...")
	res, err := coord.Run(ctx, doc)
	report.Result = res
	if err != nil {
		report.Duration = time.Since(start)
		g.record(ctx, report, err)
		return report, fmt.Errorf("generating plan for %s: %w", doc.Name, err)
	}

	payload := res.Payload
	report.Written = res.Validation
	if res.Outcome == types.OutcomeExhausted && g.settings.Generation.Repair {
		repaired := xtp.Repair(payload, doc.Name)
		if repaired != payload {
			payload = repaired
			report.Repaired = true
			report.Written = xtp.Validate(payload)
			g.logger.Info("best-effort plan repaired", zap.Bool("valid_after_repair", report.Written.OK))
		}
	}

	fmt.Fprintln(g.out, "[3/3] Writing output...")
	if err := os.WriteFile(report.OutputPath, []byte(payload), 0o644); err != nil {
		report.Duration = time.Since(start)
		g.record(ctx, report, err)
		return report, fmt.Errorf("writing %s: %w", report.OutputPath, err)
	}
	report.Duration = time.Since(start)

	switch res.Outcome {
	case types.OutcomeSucceeded:
		fmt.Fprintf(g.out, "      wrote %s (%d suites, %d cases)\n", report.OutputPath, report.Written.Suites, report.Written.Cases)
	default:
		fmt.Fprintf(g.out, "      wrote %s\n", report.OutputPath)
		fmt.Fprintf(g.out, "warning: no valid plan after %d attempts (%s); the file needs manual review\n",
			len(res.Attempts), res.Validation.Reason)
	}

	g.record(ctx, report, nil)
	return report, nil
}

func (g *Generator) banner(maxAttempts int) {
	fmt.Fprintln(g.out, "VEGA test plan generator")
	if g.settings.Model != "" {
		fmt.Fprintf(g.out, "Provider: %s (%s), up to %d attempts\n", g.settings.Provider, g.settings.Model, maxAttempts)
	} else {
		fmt.Fprintf(g.out, "Provider: %s, up to %d attempts\n", g.settings.Provider, maxAttempts)
	}
}

// record stores the run in history. Failures here never fail the run.
func (g *Generator) record(ctx context.Context, report *Report, runErr error) {
	if g.recorder == nil {
		return
	}

	run := history.Run{
		Document:  report.Document.Name,
		Provider:  string(g.settings.Provider),
		Model:     g.settings.Model,
		StartedAt: time.Now().Add(-report.Duration),
		Duration:  report.Duration,
	}
	if res := report.Result; res != nil {
		run.Outcome = res.Outcome
		run.Attempts = len(res.Attempts)
		run.Reason = res.Validation.Reason
	}
	if runErr != nil {
		run.Outcome = types.OutcomeFailed
		run.Reason = runErr.Error()
	} else {
		run.OutputPath = report.OutputPath
		run.Suites = report.Written.Suites
		run.Cases = report.Written.Cases
	}

	if _, err := g.recorder.Record(context.WithoutCancel(ctx), run); err != nil {
		g.logger.Warn("could not record run history", zap.Error(err))
	}
}

func pageLabel(n int) string {
	switch n {
	case 0:
		return "page count unknown"
	case 1:
		return "1 page"
	}
	return fmt.Sprintf("%d pages", n)
}
