// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"path/filepath"
	"strings"
)

// Document is a specification PDF read into memory. Data is not modified
// after Load returns.
type Document struct {
	// Path is the path the document was read from.
	Path string `json:"path" yaml:"path"`

	// Name is the display name (base name of Path).
	Name string `json:"name" yaml:"name"`

	// Data holds the raw file bytes.
	Data []byte `json:"-" yaml:"-"`

	// Pages is the page count, or 0 when the page tree could not be read.
	Pages int `json:"pages" yaml:"pages"`
}

// Size returns the document length in bytes.
func (d *Document) Size() int { return len(d.Data) }

// Stem returns Name without its extension ("proto_spec.pdf" -> "proto_spec").
func (d *Document) Stem() string {
	return strings.TrimSuffix(d.Name, filepath.Ext(d.Name))
}

// ValidationResult is the outcome of checking a candidate plan's structure.
type ValidationResult struct {
	// OK reports whether the plan passed every structural check.
	OK bool `json:"ok" yaml:"ok"`

	// Reason describes the first failed check. Empty when OK.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`

	Suites       int `json:"suites" yaml:"suites"`
	Cases        int `json:"cases" yaml:"cases"`
	Requirements int `json:"requirements" yaml:"requirements"`

	// Warnings lists non-fatal schema gaps (missing attributes or blocks).
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Attempt records one provider call made by the retry coordinator.
type Attempt struct {
	// Number is 1-based.
	Number int `json:"number" yaml:"number"`

	// Retry reports whether the escalated retry prompt was used.
	Retry bool `json:"retry" yaml:"retry"`

	// ResponseBytes is the length of the raw model response.
	ResponseBytes int `json:"response_bytes" yaml:"response_bytes"`

	Validation ValidationResult `json:"validation" yaml:"validation"`

	// Error is set when the provider call itself failed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Outcome is the terminal state of a generation run that produced a payload.
type Outcome string

const (
	// OutcomeSucceeded means the payload passed validation.
	OutcomeSucceeded Outcome = "succeeded"

	// OutcomeExhausted means the attempt budget ran out and the payload is
	// the last best-effort candidate, flagged for manual review.
	OutcomeExhausted Outcome = "exhausted"

	// OutcomeFailed is recorded in history when the provider call failed and
	// no payload exists.
	OutcomeFailed Outcome = "failed"
)
