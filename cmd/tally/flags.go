package main

import (
	"fmt"
	"runtime"

	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yurifrl/tally/pkg/config"
	"github.com/yurifrl/tally/pkg/reconcile"
)

// Set at build time:
//
//	go build -ldflags "-X 'main.Version=1.0.0' -X 'main.BuildDate=2026-01-01'"
var (
	Version   = "dev"
	BuildDate = "unknown"
)

// addAccountFlags registers the flags that override reconciliation settings.
// Defaults mirror the configuration defaults so --help shows real values.
func addAccountFlags(fs *pflag.FlagSet) {
	fs.Uint64P("max-distance-seconds", "m", 5, "Largest accepted gap between a ledger row and its payment, in seconds")
	fs.StringP("notes", "n", "", "YAML rule file used to annotate output rows")
	fs.String("normalize-if-starts-with", "€$", "Rewrite numbers in fields starting with any of these characters (empty disables)")
	fs.String("thousands-separator", ".", "Thousands separator written by normalization")
	fs.String("decimal-separator", ",", "Decimal separator written by normalization")
	fs.String("ledger-date-column", "Transaction Date", "Ledger column holding the transaction date")
	fs.String("payment-date-column", "Date", "Payment column holding the date")
	fs.String("payment-time-column", "Time", "Payment column holding the time of day")
	fs.String("payment-layout", reconcile.DefaultPaymentLayout, "Go time layout of the concatenated payment date and time")
	fs.String("ledger-delimiter", ",", "Ledger input delimiter")
	fs.String("payment-delimiter", ",", "Payment input delimiter")
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		pp.Println(cfg)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Printf("Version:    %s\n", Version)
		fmt.Printf("Build Date: %s\n", BuildDate)
		fmt.Printf("Go Version: %s\n", runtime.Version())
		fmt.Printf("OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}
