package output

import (
	"fmt"
	"strings"

	"bakerypay/payroll"
)

type Writer interface {
	Write(path string, entries []payroll.Entry) error
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// ExtensionForFormat returns the file extension matching an output format.
func ExtensionForFormat(format string) string {
	if normalizeFormat(format) == "csv" {
		return "csv"
	}
	return "xlsx"
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}

func entryHeaders() []string {
	headers := []string{"period_start", "period_end", "employee"}
	return append(headers, payroll.AmountColumns...)
}
