// Package cli provides the startup steps shared by cmd/hisab and
// cmd/hisab-worker.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"hisab/internal/amqp"
	"hisab/internal/backend"
	"hisab/internal/config"
	"hisab/internal/export"
	applog "hisab/internal/log"
	"hisab/internal/services"
	"hisab/internal/storage"
	"hisab/internal/suggest"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig reads configFile (or the default locations) and
// validates the result.
func LoadAndValidateConfig(configFile string) (*config.Config, error) {
	cfg, err := config.Load(config.New(), configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogger builds the logger described by cfg and makes it the default.
func SetupLogger(cfg *config.Config, component string, out io.Writer) (*applog.Logger, error) {
	level, err := applog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := applog.New(applog.Config{
		Level:     level,
		Format:    cfg.LogFormat,
		Output:    out,
		Component: component,
	})
	applog.SetDefault(logger)
	return logger, nil
}

// Options selects the optional pieces Bootstrap wires.
type Options struct {
	ConfigFile string
	Component  string
	// LogOutput defaults to stderr so command output stays clean on stdout.
	LogOutput io.Writer
	// Queue connects to the broker when an AMQP URL is configured.
	Queue bool
	// RequireQueue turns a missing or unreachable broker into an error.
	RequireQueue bool
}

// App is a loaded ledger together with the resources backing it.
type App struct {
	Config *config.Config
	Logger *applog.Logger
	Ledger *services.LedgerService
	KV     storage.KV
	// Queue is nil when no broker is in use.
	Queue *amqp.Client

	cleanups []func() error
}

// Bootstrap loads configuration, opens the configured backend and loads the
// ledger from it.
func Bootstrap(ctx context.Context, opts Options) (*App, error) {
	LoadEnvFile()

	cfg, err := LoadAndValidateConfig(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}
	logger, err := SetupLogger(cfg, opts.Component, opts.LogOutput)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Logger: logger}

	keywords, err := loadKeywords(cfg.KeywordsFile)
	if err != nil {
		return nil, err
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}
	app.KV = res.Store
	if res.Cleanup != nil {
		app.cleanups = append(app.cleanups, res.Cleanup)
	}

	formats, err := export.ParseFormats(cfg.ExportFormats)
	if err != nil {
		app.Close()
		return nil, err
	}

	svcOpts := services.Options{
		Keywords:  keywords,
		WeekStart: cfg.WeekStartDay(),
		Formats:   formats,
		Logger:    logger.WithComponent(applog.ComponentLedger),
		Exporters: export.NewBuilder(export.Config{
			Dir: cfg.ExportDir,
			Sheets: export.SheetsConfig{
				SpreadsheetID:      cfg.GoogleSpreadsheetID,
				SheetName:          cfg.GoogleSheetName,
				ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
				ServiceAccountFile: cfg.GoogleServiceAccountFile,
			},
		}),
	}

	if opts.Queue || opts.RequireQueue {
		if err := app.connectQueue(opts.RequireQueue); err != nil {
			app.Close()
			return nil, err
		}
		if app.Queue != nil {
			svcOpts.Publisher = app.Queue
		}
	}

	app.Ledger = services.NewLedgerService(storage.NewRepository(app.KV), svcOpts)
	notices, err := app.Ledger.Load(ctx)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	for _, n := range notices {
		logger.Warn("Stored data could not be read", "notice", n)
	}
	return app, nil
}

func (a *App) connectQueue(required bool) error {
	cfg := a.Config
	if cfg.AMQPURL == "" {
		if required {
			return errors.New("amqp_url is required")
		}
		a.Logger.Info("Export queue disabled, no AMQP URL configured")
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		if required {
			return fmt.Errorf("connect to broker: %w", err)
		}
		a.Logger.Warn("Export queue unavailable", "error", err)
		return nil
	}
	a.Queue = client
	a.cleanups = append(a.cleanups, client.Close)
	a.Logger.Info("Connected to export queue", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return nil
}

// Ready pings the backing store when it supports it.
func (a *App) Ready(ctx context.Context) error {
	if p, ok := a.KV.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close releases the backend and the broker connection in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		if err := a.cleanups[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.cleanups = nil
	return errors.Join(errs...)
}

func loadKeywords(path string) (suggest.Keywords, error) {
	keywords := suggest.DefaultKeywords()
	if path == "" {
		return keywords, nil
	}
	extra, err := suggest.LoadKeywords(path)
	if err != nil {
		return nil, fmt.Errorf("load keywords: %w", err)
	}
	return keywords.Merge(extra), nil
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
			return
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}
