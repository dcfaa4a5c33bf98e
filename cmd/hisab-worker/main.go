package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"hisab/internal/cli"
	applog "hisab/internal/log"
	"hisab/internal/worker"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "hisab-worker:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:   "hisab-worker",
		Short: "Run queued report exports",
		Long: `hisab-worker consumes export requests published by "hisab report --export --queue"
and POST /report/exports, and writes them with the configured exporters.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorker(cmd.Context(), configFile)
		},
	}
	cmd.Flags().StringVar(&configFile, "config", "", "config file (default: ./hisab.yaml or $HISAB_CONFIG)")
	return cmd
}

func runWorker(ctx context.Context, configFile string) error {
	app, err := cli.Bootstrap(ctx, cli.Options{
		ConfigFile:   configFile,
		Component:    applog.ComponentWorker,
		LogOutput:    os.Stdout,
		RequireQueue: true,
	})
	if err != nil {
		return err
	}
	defer app.Close()

	logger := app.Logger
	logger.Info("Starting hisab-worker",
		"backend", app.Config.DataBackend,
		"queue", app.Config.AMQPQueue,
		"export_dir", app.Config.ExportDir)

	exportWorker := worker.NewExportWorker(app.Ledger)

	consumed := make(chan struct{})
	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		// Give the handler in flight time to ack before the connection closes.
		select {
		case <-consumed:
		case <-shutdownCtx.Done():
		}
	})

	failed := make(chan error, 1)
	go func() {
		defer close(consumed)
		err := app.Queue.ConsumeExportRequests(shutdownCtx, exportWorker.HandleExportRequest)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
			failed <- err
		}
	}()

	select {
	case err := <-failed:
		return fmt.Errorf("consume export requests: %w", err)
	case <-shutdownCtx.Done():
		<-done
	}
	logger.Info("Worker shutdown complete")
	return nil
}
