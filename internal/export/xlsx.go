package export

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"hisab/internal/report"
)

// XLSXExporter writes the report into a single "Report" worksheet.
type XLSXExporter struct {
	Dir string
}

func (e *XLSXExporter) Format() Format { return XLSX }

func (e *XLSXExporter) Export(ctx context.Context, r report.Report, now time.Time) (Result, error) {
	if err := prepareDir(e.Dir); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return Result{}, fmt.Errorf("name sheet: %w", err)
	}
	for i, row := range SheetRows(r) {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return Result{}, err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return Result{}, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	path := outputPath(e.Dir, now, XLSX)
	if err := f.SaveAs(path); err != nil {
		return Result{}, fmt.Errorf("write xlsx %s: %w", path, err)
	}
	return Result{Format: XLSX, DisplayName: DisplayName(now, "xlsx"), Location: path}, nil
}
