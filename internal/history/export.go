// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"go.yaml.in/yaml/v3"
)

// Output formats accepted by Write.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Formats returns the accepted output formats.
func Formats() []string { return []string{FormatTable, FormatJSON, FormatYAML} }

// Write renders runs to w in the given format.
func Write(w io.Writer, runs []Run, format string) error {
	switch strings.ToLower(format) {
	case "", FormatTable:
		return writeTable(w, runs)
	case FormatJSON:
		if runs == nil {
			runs = []Run{}
		}
		data, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		data, err := yaml.Marshal(runs)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("unknown format %q (supported: %s)", format, strings.Join(Formats(), ", "))
}

func writeTable(w io.Writer, runs []Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "no runs recorded")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tDOCUMENT\tPROVIDER\tOUTCOME\tATTEMPTS\tSUITES\tCASES\tDURATION")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Document, r.Provider, r.Outcome, r.Attempts, r.Suites, r.Cases,
			r.Duration.Round(time.Millisecond))
	}
	return tw.Flush()
}
