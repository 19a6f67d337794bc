// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the vega CLI, which turns a hardware
// specification PDF into an XML test plan (.xtp).
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/vega/internal/logging"
	"github.com/pdiddy/vega/internal/provider"
	"github.com/pdiddy/vega/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// newProvider builds the generation backend; tests substitute a stub.
var newProvider = provider.New

// app holds the state shared by every command of one invocation.
type app struct {
	v          *viper.Viper
	secretsDir string
	getenv     func(string) string

	// secrets holds API keys loaded from secretsDir at startup.
	secrets map[string]string
	logger  *zap.Logger
}

func newApp() *app {
	return &app{
		v:          viper.New(),
		secretsDir: ".secrets/",
		getenv:     os.Getenv,
		logger:     zap.NewNop(),
	}
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(newApp())
}

func newRootCmdWith(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vega",
		Short: "Generate XML test plans from hardware specification PDFs",
		Long: `vega sends a specification PDF to a generative AI provider and writes the
returned test plan as <name>_testplan.xtp next to the input. Responses are
cleaned and structurally validated; an invalid plan is retried with a
stricter prompt until the attempt budget runs out.

Providers: claude, openai, openai-assistant, gemini. See "vega providers".`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./vega.yaml or ~/.config/vega/vega.yaml)")
	flags.String("log-level", logging.DefaultLevel, "log level: debug, info, warn, error")
	flags.Bool("log-json", false, "emit logs as JSON")
	flags.String("history-db", "", "SQLite database recording generation runs (empty disables history)")
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log.json", flags.Lookup("log-json"))
	_ = a.v.BindPFlag("history.db", flags.Lookup("history-db"))

	rootCmd.AddCommand(
		newGenerateCmd(a),
		newHistoryCmd(a),
		newProvidersCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// setup reads configuration, loads secrets, and builds the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	if err := a.initConfig(cmd, cfgFile); err != nil {
		return err
	}

	s, err := secrets.Load(a.secretsDir)
	if err != nil {
		return err
	}
	a.secrets = s
	if len(s) > 0 {
		keys := make([]string, 0, len(s))
		for k := range s {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintf(cmd.ErrOrStderr(), "Loaded secrets: %v\n", keys)
	}

	logger, err := logging.New(a.v.GetString("log.level"), a.v.GetBool("log.json"))
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

func (a *app) initConfig(cmd *cobra.Command, cfgFile string) error {
	setDefaults(a.v)

	if cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
	} else {
		a.v.SetConfigName("vega")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			a.v.AddConfigPath(filepath.Join(home, ".config", "vega"))
		}
	}

	a.v.SetEnvPrefix("VEGA")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
		return nil
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", a.v.ConfigFileUsed())
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
