// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package xtp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const minimalPlan = `<?xml version="1.0" encoding="UTF-8"?>
<testplan name="spec.pdf_verification" version="1.0">
    <metadata><source>spec.pdf</source></metadata>
    <requirements><requirement id="REQ_001">Reset clears state</requirement></requirements>
    <test_suite name="reset_tests">
        <test_case id="TC_001" name="reset">
            <objective>Reset clears state</objective>
            <stimulus><step order="1">Assert reset</step></stimulus>
            <expected_results><result>All registers zero</result></expected_results>
            <pass_criteria>Registers read zero</pass_criteria>
        </test_case>
    </test_suite>
</testplan>`

const bareRootPlan = `<testplan name="x" version="1.0"><test_suite name="s"><test_case id="1"/></test_suite></testplan>`

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "xml fence",
			in:   "Here is the plan:\n\n```xml\n" + minimalPlan + "\n```\n\nLet me know!",
			want: minimalPlan,
		},
		{
			name: "xml fence with surrounding blank lines inside",
			in:   "```xml\n\n\n" + minimalPlan + "\n\n```",
			want: minimalPlan,
		},
		{
			name: "upper-case xml tag",
			in:   "```XML\n" + bareRootPlan + "\n```",
			want: bareRootPlan,
		},
		{
			name: "xml fence preferred over earlier plain fence",
			in:   "```\nnot this\n```\nthen\n```xml\n" + bareRootPlan + "\n```",
			want: bareRootPlan,
		},
		{
			name: "plain fence",
			in:   "```\n" + minimalPlan + "\n```",
			want: minimalPlan,
		},
		{
			name: "other language tag fence",
			in:   "Output:\n```html\n" + bareRootPlan + "\n```",
			want: bareRootPlan,
		},
		{
			name: "single-line xml fence",
			in:   "```xml " + bareRootPlan + "```",
			want: bareRootPlan,
		},
		{
			name: "bare document with declaration",
			in:   minimalPlan,
			want: minimalPlan,
		},
		{
			name: "bare document with leading whitespace",
			in:   "\n\n   " + minimalPlan + "\n  ",
			want: minimalPlan,
		},
		{
			name: "bare root without declaration",
			in:   bareRootPlan,
			want: bareRootPlan,
		},
		{
			name: "declaration span inside prose",
			in:   "Sure! " + minimalPlan + "\nThis covers the reset feature.",
			want: minimalPlan,
		},
		{
			name: "root span inside prose",
			in:   "The plan follows. " + bareRootPlan + " Done.",
			want: bareRootPlan,
		},
		{
			name: "truncated document left as is",
			in:   "Plan: <testplan name=\"x\"><test_suite>",
			want: "Plan: <testplan name=\"x\"><test_suite>",
		},
		{
			name: "plain prose",
			in:   "  I cannot read this PDF.  ",
			want: "I cannot read this PDF.",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	samples := []string{
		"```xml\n" + minimalPlan + "\n```",
		"```\n" + bareRootPlan + "\n```",
		"Sure! " + minimalPlan + " bye",
		"prefix " + bareRootPlan + " suffix",
		minimalPlan,
		"\t" + bareRootPlan + "\n",
		"no markup at all",
		"<testplan name=\"cut\"><test_suite><test_case>",
		"",
	}

	for _, s := range samples {
		once := Clean(s)
		if twice := Clean(once); twice != once {
			t.Errorf("Clean not idempotent for %q:\nonce:  %q\ntwice: %q", s, once, twice)
		}
	}
}
