package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yurifrl/tally/pkg/config"
	"github.com/yurifrl/tally/pkg/service"
	"github.com/yurifrl/tally/pkg/table"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "tally",
	Short:         "Merge and reconcile ledger and payment provider exports",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge [flags] <key_column> <sort_column> <file>...",
	Short: "Merge overlapping exports, keeping the last row per key",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		d, _ := cmd.Flags().GetString("delimiter")
		delimiter, err := table.Delimiter(d)
		if err != nil {
			return err
		}

		out := bufio.NewWriter(os.Stdout)
		processor := service.NewProcessor(cfg, logger)
		if err := processor.Merge(args[2:], []string{args[0]}, args[1], delimiter, out); err != nil {
			return err
		}
		return out.Flush()
	},
}

var mergeAccountsCmd = &cobra.Command{
	Use:   "merge-accounts -g <ledger>... -s <payments>...",
	Short: "Pair every ledger row with the payment that followed it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		ledger, _ := cmd.Flags().GetStringSlice("ledger")
		payments, _ := cmd.Flags().GetStringSlice("payments")

		out := bufio.NewWriter(os.Stdout)
		processor := service.NewProcessor(cfg, logger)
		report, err := processor.MergeAccounts(ledger, payments, out)
		if err != nil {
			return err
		}
		if err := out.Flush(); err != nil {
			return err
		}

		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			service.RenderSummary(os.Stderr, report)
		}
		return nil
	},
}

// setup resolves the configuration for cmd and builds the logger from it.
func setup(cmd *cobra.Command) (*config.Config, *log.Logger, error) {
	cfg, err := config.Build(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "tally",
		Level:           cfg.LogLevel(),
	})
	return cfg, logger, nil
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (YAML)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	mergeCmd.Flags().StringP("delimiter", "d", ",", "Input delimiter (comma, tab, pipe, semicolon or a single character)")

	mergeAccountsCmd.Flags().StringSliceP("ledger", "g", nil, "Ledger export (repeatable)")
	mergeAccountsCmd.Flags().StringSliceP("payments", "s", nil, "Payment provider export (repeatable)")
	mergeAccountsCmd.Flags().BoolP("quiet", "q", false, "Do not print the summary")
	_ = mergeAccountsCmd.MarkFlagRequired("ledger")
	_ = mergeAccountsCmd.MarkFlagRequired("payments")
	addAccountFlags(mergeAccountsCmd.Flags())
	addAccountFlags(configCmd.Flags())

	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(mergeAccountsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
