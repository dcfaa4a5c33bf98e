package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"hisab/internal/report"
)

type Format string

const (
	PDF    Format = "pdf"
	XLSX   Format = "xlsx"
	Sheets Format = "sheets"
)

var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormats parses a comma separated list such as "pdf,xlsx". Duplicates
// are dropped.
func ParseFormats(s string) ([]Format, error) {
	var out []Format
	seen := map[Format]bool{}
	for _, part := range strings.Split(s, ",") {
		f := Format(strings.ToLower(strings.TrimSpace(part)))
		if f == "" {
			continue
		}
		switch f {
		case PDF, XLSX, Sheets:
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// Result describes a written export.
type Result struct {
	Format      Format `json:"format"`
	DisplayName string `json:"displayName"`
	Location    string `json:"location"`
}

// Exporter writes a report in one format.
type Exporter interface {
	Format() Format
	Export(ctx context.Context, r report.Report, now time.Time) (Result, error)
}

// Run executes the exporters concurrently. A failing exporter does not stop
// the others; successful results are returned alongside the joined errors.
func Run(ctx context.Context, r report.Report, now time.Time, exporters ...Exporter) ([]Result, error) {
	results := make([]Result, len(exporters))
	errs := make([]error, len(exporters))

	var g errgroup.Group
	g.SetLimit(4)
	for i, e := range exporters {
		g.Go(func() error {
			res, err := e.Export(ctx, r, now)
			if err != nil {
				slog.WarnContext(ctx, "Export failed", "format", e.Format(), "error", err)
				errs[i] = fmt.Errorf("export %s: %w", e.Format(), err)
				return nil
			}
			slog.InfoContext(ctx, "Export written", "format", e.Format(), "location", res.Location)
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	var out []Result
	for i, res := range results {
		if errs[i] == nil {
			out = append(out, res)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Format < out[j].Format })
	return out, errors.Join(errs...)
}

func prepareDir(dir string) error {
	if dir == "" {
		return errors.New("export directory not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	return nil
}

func outputPath(dir string, now time.Time, f Format) string {
	return filepath.Join(dir, FileName(now, string(f)))
}
