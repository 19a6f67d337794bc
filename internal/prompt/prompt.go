// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt renders the instructions sent to a provider. The initial
// prompt asks for a full XTP test plan; the retry prompt adds the
// validator's failure reason and restates the minimum structure.
package prompt

import (
	"embed"
	"fmt"
	"strings"

	"github.com/tyler-sommer/stick"
)

//go:embed templates/*.twig
var templateFS embed.FS

const (
	tagInitial = "initial"
	tagRetry   = "retry"
	tagFormat  = "plan_format"
)

// Builder renders prompts from the embedded Twig templates. It holds no
// per-call state and is safe to reuse.
type Builder struct {
	env       *stick.Env
	templates map[string]string
}

// New loads the embedded templates.
func New() (*Builder, error) {
	b := &Builder{
		env:       stick.New(nil),
		templates: make(map[string]string),
	}
	for _, tag := range []string{tagInitial, tagRetry, tagFormat} {
		data, err := templateFS.ReadFile("templates/" + tag + ".twig")
		if err != nil {
			return nil, fmt.Errorf("loading template %s: %w", tag, err)
		}
		b.templates[tag] = string(data)
	}
	return b, nil
}

// Build returns the initial prompt for the named document.
func (b *Builder) Build(filename string) (string, error) {
	return b.render(tagInitial, map[string]stick.Value{
		"filename": filename,
	})
}

// BuildRetry returns the escalated prompt carrying the previous failure reason.
func (b *Builder) BuildRetry(filename, reason string) (string, error) {
	if strings.TrimSpace(reason) == "" {
		reason = "the response was not a valid test plan"
	}
	return b.render(tagRetry, map[string]stick.Value{
		"filename": filename,
		"reason":   reason,
	})
}

func (b *Builder) render(tag string, vars map[string]stick.Value) (string, error) {
	format, err := b.execute(tagFormat, vars)
	if err != nil {
		return "", err
	}
	vars["format"] = strings.TrimRight(format, "\n")
	return b.execute(tag, vars)
}

func (b *Builder) execute(tag string, vars map[string]stick.Value) (string, error) {
	tpl, ok := b.templates[tag]
	if !ok {
		return "", fmt.Errorf("template %q not found", tag)
	}
	var out strings.Builder
	if err := b.env.Execute(tpl, &out, vars); err != nil {
		return "", fmt.Errorf("execute %q: %w", tag, err)
	}
	return out.String(), nil
}
