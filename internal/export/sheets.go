package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"hisab/internal/report"
)

// SheetsConfig locates the target tab and the service account credentials.
// ServiceAccountJSON wins over ServiceAccountFile; with neither set,
// GOOGLE_APPLICATION_CREDENTIALS is consulted.
type SheetsConfig struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

// valueWriter is the subset of the Sheets values API the exporter needs.
type valueWriter interface {
	Clear(ctx context.Context, rng string) error
	Update(ctx context.Context, rng string, rows [][]any) error
}

// SheetsExporter replaces the content of a Google Sheets tab with the report.
type SheetsExporter struct {
	values        valueWriter
	spreadsheetID string
	sheetName     string
}

func NewSheetsExporter(ctx context.Context, cfg SheetsConfig) (*SheetsExporter, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newSheetsExporter(&googleValues{svc: svc, spreadsheetID: cfg.SpreadsheetID}, cfg), nil
}

func newSheetsExporter(w valueWriter, cfg SheetsConfig) *SheetsExporter {
	name := strings.TrimSpace(cfg.SheetName)
	if name == "" {
		name = SheetName
	}
	return &SheetsExporter{values: w, spreadsheetID: cfg.SpreadsheetID, sheetName: name}
}

func (e *SheetsExporter) Format() Format { return Sheets }

func (e *SheetsExporter) Export(ctx context.Context, r report.Report, now time.Time) (Result, error) {
	if err := e.values.Clear(ctx, e.sheetName+"!A:C"); err != nil {
		return Result{}, fmt.Errorf("clear sheet %s: %w", e.sheetName, err)
	}
	rows := SheetRows(r)
	if err := e.values.Update(ctx, e.sheetName+"!A1", rows); err != nil {
		return Result{}, fmt.Errorf("update sheet %s: %w", e.sheetName, err)
	}
	return Result{
		Format:      Sheets,
		DisplayName: DisplayName(now, "sheets"),
		Location:    fmt.Sprintf("%s!A1:C%d", e.sheetName, len(rows)),
	}, nil
}

type googleValues struct {
	svc           *gsheet.Service
	spreadsheetID string
}

func (g *googleValues) Clear(ctx context.Context, rng string) error {
	_, err := g.svc.Spreadsheets.Values.Clear(g.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (g *googleValues) Update(ctx context.Context, rng string, rows [][]any) error {
	vr := &gsheet.ValueRange{Values: rows}
	_, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// newSheetsService initializes a Sheets Service using service account credentials.
func newSheetsService(ctx context.Context, cfg SheetsConfig) (*gsheet.Service, error) {
	jsonCreds := strings.TrimSpace(cfg.ServiceAccountJSON)
	file := strings.TrimSpace(cfg.ServiceAccountFile)
	if jsonCreds == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case jsonCreds != "":
		slog.InfoContext(ctx, "Using inline service account credentials")
		credentialsJSON = []byte(jsonCreds)
	case file != "":
		slog.InfoContext(ctx, "Reading service account credentials", "path", file)
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set google_service_account_json, google_service_account_file, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}
