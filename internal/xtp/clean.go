// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package xtp isolates, checks, and patches XTP (XML test plan) documents
// returned by a provider.
package xtp

import (
	"regexp"
	"strings"
)

// Element and declaration names of the XTP schema.
const (
	RootElement        = "testplan"
	SuiteElement       = "test_suite"
	CaseElement        = "test_case"
	RequirementElement = "requirement"

	declarationPrefix = "<?xml"
	rootOpenPrefix    = "<" + RootElement
	rootClose         = "</" + RootElement + ">"
)

var (
	// xmlFencePattern matches a fenced block tagged xml: ```xml ... ```.
	xmlFencePattern = regexp.MustCompile("(?s)```(?i:xml)\\b[ \\t]*\\r?\\n?(.*?)```")

	// anyFencePattern matches any fenced block, skipping an optional
	// language tag on the opening line.
	anyFencePattern = regexp.MustCompile("(?s)```[\\w+.-]*[ \\t]*\\r?\\n?(.*?)```")

	// declSpanPattern matches the first declaration through the last
	// closing root tag.
	declSpanPattern = regexp.MustCompile(`(?s)<\?xml.*</testplan>`)

	// rootSpanPattern matches the first opening root tag through the last
	// closing root tag.
	rootSpanPattern = regexp.MustCompile(`(?s)<testplan\b.*</testplan>`)
)

// Clean isolates the candidate XML payload in a model response. It applies
// the first matching rule:
//
//  1. a fenced block tagged xml: its trimmed interior
//  2. any fenced block: its trimmed interior
//  3. text already starting with the declaration or root tag: unchanged
//  4. the declaration through </testplan> span
//  5. the <testplan through </testplan> span
//  6. otherwise the text unchanged
//
// Surrounding whitespace is always trimmed. Clean is idempotent on its output.
func Clean(text string) string {
	text = strings.TrimSpace(text)

	if m := xmlFencePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := anyFencePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if strings.HasPrefix(text, declarationPrefix) || strings.HasPrefix(text, rootOpenPrefix) {
		return text
	}
	if m := declSpanPattern.FindString(text); m != "" {
		return m
	}
	if m := rootSpanPattern.FindString(text); m != "" {
		return m
	}
	return text
}
