// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/pdiddy/vega/internal/history"
)

var errHistoryDisabled = errors.New("run history is disabled: set history.db in the config or pass --history-db")

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded generation runs, newest first",
		Long: `History lists runs recorded in the SQLite database named by history.db
(or --history-db): document, provider, outcome, attempts, and plan size.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath := a.v.GetString("history.db")
			if dbPath == "" {
				return errHistoryDisabled
			}

			limit, _ := cmd.Flags().GetInt("limit")
			format, _ := cmd.Flags().GetString("format")

			store, err := history.NewStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return history.Write(cmd.OutOrStdout(), runs, format)
		},
	}

	cmd.Flags().Int("limit", history.DefaultListLimit, "maximum number of runs to show")
	cmd.Flags().String("format", history.FormatTable, "output format: table, json, yaml")
	return cmd
}
