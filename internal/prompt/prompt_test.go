// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := New()
	require.NoError(t, err)
	return b
}

func TestBuild(t *testing.T) {
	b := newBuilder(t)

	got, err := b.Build("proto_spec.pdf")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "Analyze the specification document: proto_spec.pdf"))
	assert.Contains(t, got, `<testplan name="proto_spec.pdf_verification" version="1.0">`)
	assert.Contains(t, got, "<source>proto_spec.pdf</source>")
	assert.Contains(t, got, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>")
	for _, tag := range []string{"<test_suite", "<test_case", "<preconditions>", "<stimulus>", "<step order=\"1\">", "<expected_results>", "<pass_criteria>", "<requirements>"} {
		assert.Contains(t, got, tag)
	}
	assert.Contains(t, got, "Output ONLY valid XML")
	assert.NotContains(t, got, "{{", "all template expressions rendered")
	assert.NotContains(t, got, "Validation failed")
}

func TestBuildIsPure(t *testing.T) {
	b := newBuilder(t)

	first, err := b.Build("a.pdf")
	require.NoError(t, err)
	second, err := b.Build("a.pdf")
	require.NoError(t, err)
	other, err := b.Build("b.pdf")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
}

func TestBuildRetry(t *testing.T) {
	b := newBuilder(t)

	got, err := b.BuildRetry("proto_spec.pdf", "no test-case elements found")
	require.NoError(t, err)

	assert.Contains(t, got, "Analyze the specification document: proto_spec.pdf")
	assert.Contains(t, got, "Validation failed with: no test-case elements found")
	assert.Contains(t, got, "Exactly one root element <testplan")
	assert.Contains(t, got, "At least one <test_suite>")
	assert.Contains(t, got, "At least one <test_case> element inside every <test_suite>")
	assert.Contains(t, got, `<testplan name="proto_spec.pdf_verification" version="1.0">`)
	assert.NotContains(t, got, "{{")

	again, err := b.BuildRetry("proto_spec.pdf", "no test-case elements found")
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestBuildRetryKeepsMarkupInReason(t *testing.T) {
	b := newBuilder(t)

	reason := "unexpected root element <foo>, want <testplan>"
	got, err := b.BuildRetry("x.pdf", reason)
	require.NoError(t, err)
	assert.Contains(t, got, reason)
}

func TestBuildRetryEmptyReason(t *testing.T) {
	b := newBuilder(t)

	got, err := b.BuildRetry("x.pdf", "  ")
	require.NoError(t, err)
	assert.Contains(t, got, "Validation failed with: the response was not a valid test plan")
}
