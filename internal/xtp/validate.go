// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package xtp

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/vega/pkg/types"
)

// Failure reasons reported by Validate.
const (
	ReasonParseError     = "parse error"
	ReasonUnexpectedRoot = "unexpected root element"
	ReasonNoSuites       = "no test-suite elements found"
	ReasonNoCases        = "no test-case elements found"
)

// Validate parses text as XML and checks the minimal XTP structure: a
// testplan root with at least one test_suite and one test_case descendant.
// It does not judge the content of any element.
func Validate(text string) types.ValidationResult {
	if strings.TrimSpace(text) == "" {
		return fail(ReasonParseError + ": empty document")
	}

	dec := xml.NewDecoder(strings.NewReader(text))
	dec.Strict = true
	// The text is already decoded; accept whatever encoding the declaration names.
	dec.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }

	var res types.ValidationResult
	var depth int
	var root string
	var rootSeen, rootDone bool
	var rootAttrs map[string]bool
	children := make(map[string]bool)

	// casesInSuite counts the cases of the open suite; -1 outside a suite.
	casesInSuite := -1
	emptySuites := 0

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fail(fmt.Sprintf("%s: %v", ReasonParseError, err))
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if rootDone {
				return fail(fmt.Sprintf("%s: content after the root element <%s>", ReasonParseError, t.Name.Local))
			}
			if !rootSeen {
				rootSeen = true
				root = t.Name.Local
				rootAttrs = make(map[string]bool, len(t.Attr))
				for _, a := range t.Attr {
					rootAttrs[a.Name.Local] = true
				}
			}
			if depth == 1 {
				children[t.Name.Local] = true
			}
			switch t.Name.Local {
			case SuiteElement:
				res.Suites++
				casesInSuite = 0
			case CaseElement:
				res.Cases++
				if casesInSuite >= 0 {
					casesInSuite++
				}
			case RequirementElement:
				res.Requirements++
			}
			depth++

		case xml.EndElement:
			depth--
			if t.Name.Local == SuiteElement {
				if casesInSuite == 0 {
					emptySuites++
				}
				casesInSuite = -1
			}
			if depth == 0 {
				rootDone = true
			}

		case xml.CharData:
			if depth == 0 && strings.TrimSpace(string(t)) != "" {
				return fail(fmt.Sprintf("%s: text outside the root element", ReasonParseError))
			}
		}
	}

	if !rootSeen {
		return fail(ReasonParseError + ": no root element")
	}
	if !rootDone {
		return fail(fmt.Sprintf("%s: unclosed root element <%s>", ReasonParseError, root))
	}
	if root != RootElement {
		return fail(fmt.Sprintf("%s <%s>, want <%s>", ReasonUnexpectedRoot, root, RootElement))
	}
	if res.Suites == 0 {
		res.Reason = ReasonNoSuites
		return res
	}
	if res.Cases == 0 {
		res.Reason = ReasonNoCases
		return res
	}

	for _, attr := range []string{"name", "version"} {
		if !rootAttrs[attr] {
			res.Warnings = append(res.Warnings, fmt.Sprintf("root element has no %q attribute", attr))
		}
	}
	for _, child := range []string{"metadata", "requirements"} {
		if !children[child] {
			res.Warnings = append(res.Warnings, fmt.Sprintf("no <%s> block", child))
		}
	}
	if emptySuites > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%d test suite(s) without test cases", emptySuites))
	}

	res.OK = true
	return res
}

func fail(reason string) types.ValidationResult {
	return types.ValidationResult{Reason: reason}
}
