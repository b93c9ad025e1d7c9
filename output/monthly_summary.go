package output

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"bakerypay/report"
)

var monthlySummaryHeaders = []string{"Month", "Branch", "Expenses"}

func WriteMonthlySummaries(path, format string, expenses []report.MonthlyExpense) error {
	switch normalizeFormat(format) {
	case "csv":
		return writeMonthlySummariesCSV(path, expenses)
	case "excel", "xlsx":
		return writeMonthlySummariesExcel(path, expenses)
	default:
		return fmt.Errorf("unsupported output format for monthly summaries: %s", format)
	}
}

func writeMonthlySummariesCSV(path string, expenses []report.MonthlyExpense) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv output %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(monthlySummaryHeaders); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}
	for _, expense := range expenses {
		row := []string{expense.Month, expense.Branch, expense.Expenses.StringFixed(2)}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}
	return nil
}

func writeMonthlySummariesExcel(path string, expenses []report.MonthlyExpense) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	if err := writeHeaderRow(file, sheet, monthlySummaryHeaders); err != nil {
		return err
	}

	for i, expense := range expenses {
		row := i + 2
		values := []any{expense.Month, expense.Branch, expense.Expenses.Round(2).InexactFloat64()}
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
