package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"bakerypay/payroll"
)

type CSVWriter struct{}

func (w *CSVWriter) Write(path string, entries []payroll.Entry) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv output %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(entryHeaders()); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}

	for _, entry := range entries {
		row := []string{
			entry.PeriodStart.Format(time.DateOnly),
			entry.PeriodEnd.Format(time.DateOnly),
			entry.Employee,
		}
		for _, amount := range entry.AmountFields() {
			row = append(row, amount.String())
		}
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
