package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"hisab/internal/amqp"
	"hisab/internal/export"
	applog "hisab/internal/log"
	"hisab/internal/services"
)

// ExportWorker renders queued report exports from the shared store.
type ExportWorker struct {
	ledger *services.LedgerService
}

func NewExportWorker(ledger *services.LedgerService) *ExportWorker {
	return &ExportWorker{ledger: ledger}
}

// HandleExportRequest reloads the ledger and writes every requested format.
// Requests that can never succeed are logged and acknowledged; an error is
// returned only when no format was written, so the delivery is retried.
func (w *ExportWorker) HandleExportRequest(ctx context.Context, msg *amqp.ExportRequestMessage) error {
	logger := slog.With(
		applog.FieldComponent, applog.ComponentWorker,
		applog.FieldExportID, msg.ID,
		applog.FieldRevision, msg.Revision)
	logger.InfoContext(ctx, "Processing export request", applog.FieldFormats, msg.Formats)

	formats, err := export.ParseFormats(strings.Join(msg.Formats, ","))
	if err != nil {
		logger.ErrorContext(ctx, "Dropping export request", "error", err)
		return nil
	}
	q, err := services.QueryFromRequest(msg)
	if err != nil {
		logger.ErrorContext(ctx, "Dropping export request", "error", err)
		return nil
	}

	notices, err := w.ledger.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	for _, n := range notices {
		logger.WarnContext(ctx, "Ledger notice", "notice", n)
	}

	results, err := w.ledger.Export(ctx, formats, q)
	if err != nil && len(results) == 0 {
		return fmt.Errorf("export report: %w", err)
	}
	if err != nil {
		logger.WarnContext(ctx, "Some export formats failed", "error", err)
	}
	for _, r := range results {
		logger.InfoContext(ctx, "Export completed",
			"format", r.Format,
			"name", r.DisplayName,
			"location", r.Location)
	}
	return nil
}
