package export

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"hisab/internal/report"
)

// PDFExporter writes A4 text reports.
type PDFExporter struct {
	Dir string
}

func (e *PDFExporter) Format() Format { return PDF }

func (e *PDFExporter) Export(ctx context.Context, r report.Report, now time.Time) (Result, error) {
	if err := prepareDir(e.Dir); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Report "+DisplayName(now, "pdf"), true)
	doc.AddPage()
	for i, line := range PDFLines(r) {
		switch line.Level {
		case 0:
			if i > 0 {
				doc.Ln(4)
			}
			doc.SetFont("Helvetica", "B", 13)
			doc.SetX(10)
		case 1:
			doc.SetFont("Helvetica", "", 11)
			doc.SetX(10)
		default:
			doc.SetFont("Helvetica", "", 10)
			doc.SetX(16)
		}
		doc.Cell(0, 6, doc.UnicodeTranslatorFromDescriptor("")(line.Text))
		doc.Ln(6)
	}

	path := outputPath(e.Dir, now, PDF)
	if err := doc.OutputFileAndClose(path); err != nil {
		return Result{}, fmt.Errorf("write pdf %s: %w", path, err)
	}
	return Result{Format: PDF, DisplayName: DisplayName(now, "pdf"), Location: path}, nil
}
