// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/vega/internal/provider"
	"github.com/pdiddy/vega/pkg/types"
)

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List supported providers and where their API keys are read from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defaults := types.DefaultConfig()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PROVIDER\tDEFAULT MODEL\tKEY VARIABLE\tSECRET FILE")
			for _, p := range types.SupportedProviders() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t.secrets/%s\n",
					p, defaults.ModelFor(p), provider.CredentialEnv(p), provider.SecretName(p))
			}
			return tw.Flush()
		},
	}
}
