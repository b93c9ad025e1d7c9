package importer

import "strings"

const (
	headerScanRows = 30
	headerScanCols = 10

	// FallbackDataStart is used when no column header is detected. Some templates have none.
	FallbackDataStart = 10

	maxHeaderLabelWords = 4
)

// FindDataStart returns the zero-based index of the first row after the employee column header.
func FindDataStart(grid *Grid) int {
	rows := min(grid.RowCount(), headerScanRows+1)
	for row := 0; row < rows; row++ {
		for col := 0; col <= headerScanCols; col++ {
			if isHeaderLabel(grid.Cell(row, col).StringValue()) {
				return row + 1
			}
		}
	}
	return FallbackDataStart
}

// isHeaderLabel accepts short labels such as "EMPLOYEE" or "Name of Employee" and rejects
// prose like the acknowledgment sentence that may mention "names".
func isHeaderLabel(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" || len(strings.Fields(lower)) > maxHeaderLabelWords {
		return false
	}
	return strings.Contains(lower, "employee") || strings.Contains(lower, "name")
}

// LocateRows returns the employee rows between the column header and the end of the sheet.
// Footer and signature rows carry no employee name and are dropped by HasEmployee.
//
// Older uploads trimmed a fixed number of rows from both ends of the sheet instead; that broke
// whenever the template gained or lost a header line.
func LocateRows(grid *Grid) []RawRow {
	start := FindDataStart(grid)
	rows := make([]RawRow, 0, max(grid.RowCount()-start, 0))
	for row := start; row < grid.RowCount(); row++ {
		raw := rawRowAt(grid, row)
		if HasEmployee(raw) {
			rows = append(rows, raw)
		}
	}
	return rows
}
