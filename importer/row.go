package importer

import (
	"strings"

	"github.com/shopspring/decimal"

	"bakerypay/payroll"
)

// Column is the fixed position of a value within a payroll data row.
type Column int

const (
	ColOrdinal Column = iota
	ColEmployee
	ColDaysWorked
	ColMonthlyRate
	ColDailyRate
	ColBasicRate
	ColOvertimeHours
	ColOvertimeAmount
	ColHolidayNo
	ColHolidayPay
	ColSpecialNo
	ColSpecialPay
	ColRestDayNo
	ColRestDayPay
	ColNightShiftHours
	ColNightShiftPay
	ColGrossPay
	ColSSS
	ColPhilHealth
	ColPagIBIG
	ColSSSLoan
	ColCashAdvance
	ColHidden
	ColNetSalary

	RowWidth = int(ColNetSalary) + 1
)

// RawRow is one sheet row cut to the payroll column layout.
type RawRow struct {
	// SheetRow is the zero-based row index in the sheet.
	SheetRow int
	Cells    [RowWidth]Cell
}

func rawRowAt(grid *Grid, row int) RawRow {
	raw := RawRow{SheetRow: row}
	for col := range raw.Cells {
		raw.Cells[col] = grid.Cell(row, col)
	}
	return raw
}

func (r RawRow) Cell(col Column) Cell {
	return r.Cells[col]
}

// Employee returns the trimmed employee name, or "" when the column holds no text.
func (r RawRow) Employee() string {
	return strings.TrimSpace(r.Cell(ColEmployee).StringValue())
}

// HasEmployee is the only gate deciding whether a row is an employee row.
func HasEmployee(r RawRow) bool {
	return r.Employee() != ""
}

// NormalizeRow maps a raw row to an entry of the given period.
// The second return value is false for rows without an employee name.
func NormalizeRow(r RawRow, period payroll.Period) (payroll.Entry, bool) {
	if !HasEmployee(r) {
		return payroll.Entry{}, false
	}

	entry := payroll.Entry{
		PeriodID:    period.ID,
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		Employee:    r.Employee(),
	}
	for i, field := range entry.AmountFields() {
		*field = CoerceAmount(r.Cell(ColDaysWorked + Column(i)))
	}
	return entry, true
}

// NormalizeRows converts every qualifying row.
func NormalizeRows(rows []RawRow, period payroll.Period) []payroll.Entry {
	entries := make([]payroll.Entry, 0, len(rows))
	for _, row := range rows {
		if entry, ok := NormalizeRow(row, period); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

// CoerceAmount returns the numeric value of a cell, or zero when the cell is blank or not numeric.
func CoerceAmount(cell Cell) decimal.Decimal {
	switch cell.Kind {
	case CellNumber:
		return decimal.NewFromFloat(cell.Number)
	case CellBool:
		return decimal.NewFromFloat(cell.Number)
	case CellText:
		cleaned := strings.ReplaceAll(strings.TrimSpace(cell.Text), ",", "")
		if cleaned == "" {
			return decimal.Zero
		}
		value, err := decimal.NewFromString(cleaned)
		if err != nil {
			return decimal.Zero
		}
		return value
	default:
		return decimal.Zero
	}
}
