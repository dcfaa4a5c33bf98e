package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hisab/internal/cli"
	applog "hisab/internal/log"
)

var (
	cfgFile string
	version = "dev"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hisab",
		Short: "Personal income and expense ledger",
		Long: `hisab records income and expense transactions against a catalog of
categories, suggests categories from free text, prices entries from
category defaults and builds per-category reports and exports.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./hisab.yaml or $HISAB_CONFIG)")

	root.AddCommand(serveCmd())
	root.AddCommand(txCmd())
	root.AddCommand(historyCmd())
	root.AddCommand(categoriesCmd())
	root.AddCommand(suggestCmd())
	root.AddCommand(amountCmd())
	root.AddCommand(reportCmd())
	root.AddCommand(versionCmd())
	return root
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

// openApp loads the ledger for one command. queue connects the export
// queue when one is configured.
func openApp(cmd *cobra.Command, queue bool) (*cli.App, error) {
	return cli.Bootstrap(cmd.Context(), cli.Options{
		ConfigFile: cfgFile,
		Component:  applog.ComponentCLI,
		Queue:      queue,
	})
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "hisab", version)
		},
	}
}
