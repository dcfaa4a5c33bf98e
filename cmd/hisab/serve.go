package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	apphttp "hisab/internal/http"
)

func serveCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp(cmd, true)
			if err != nil {
				return err
			}
			defer app.Close()

			cfg := app.Config
			if port == "" {
				port = cfg.Port
			}

			srv := apphttp.NewServer(":"+port, app.Ledger, apphttp.Options{
				Logger:          app.Logger,
				ReportCacheSize: cfg.ReportCacheSize,
				ReportCacheTTL:  cfg.ReportCacheTTL,
				Ready:           app.Ready,
			})
			srv.ReadTimeout = 10 * time.Second
			srv.WriteTimeout = 30 * time.Second
			srv.IdleTimeout = 60 * time.Second
			srv.MaxHeaderBytes = 1 << 16

			errCh := make(chan error, 1)
			go func() {
				app.Logger.Info("Starting hisab server", "port", port, "backend", cfg.DataBackend)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("server error: %w", err)
			case <-cmd.Context().Done():
				app.Logger.Info("Shutdown signal received")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown: %w", err)
			}
			app.Logger.Info("Server stopped gracefully")
			return nil
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (default from config)")
	return cmd
}
