package output

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"bakerypay/payroll"
)

// ExcelWriter writes amounts as numeric cells so the sheet can be summed directly.
type ExcelWriter struct{}

func (w *ExcelWriter) Write(path string, entries []payroll.Entry) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	if err := writeHeaderRow(file, sheet, entryHeaders()); err != nil {
		return err
	}

	for i, entry := range entries {
		row := i + 2
		values := []any{
			entry.PeriodStart.Format(time.DateOnly),
			entry.PeriodEnd.Format(time.DateOnly),
			entry.Employee,
		}
		for _, amount := range entry.AmountFields() {
			values = append(values, amount.InexactFloat64())
		}

		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel output %s: %w", path, err)
	}

	return nil
}

func writeHeaderRow(file *excelize.File, sheet string, headers []string) error {
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}
	return nil
}
