package export

import (
	"context"
	"fmt"
)

// Config configures every exporter Build can create.
type Config struct {
	Dir    string
	Sheets SheetsConfig
}

// Builder creates the exporters for the requested formats.
type Builder func(ctx context.Context, formats []Format) ([]Exporter, error)

// NewBuilder returns a Builder over cfg. The Sheets client is created per
// call so a missing credential only fails exports that ask for Sheets.
func NewBuilder(cfg Config) Builder {
	return func(ctx context.Context, formats []Format) ([]Exporter, error) {
		out := make([]Exporter, 0, len(formats))
		for _, f := range formats {
			switch f {
			case PDF:
				out = append(out, &PDFExporter{Dir: cfg.Dir})
			case XLSX:
				out = append(out, &XLSXExporter{Dir: cfg.Dir})
			case Sheets:
				e, err := NewSheetsExporter(ctx, cfg.Sheets)
				if err != nil {
					return nil, fmt.Errorf("build sheets exporter: %w", err)
				}
				out = append(out, e)
			default:
				return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
			}
		}
		return out, nil
	}
}
