package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"bakerypay/payroll"
	"bakerypay/report"
)

func sampleEntries() []payroll.Entry {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	return []payroll.Entry{
		{PeriodStart: start, PeriodEnd: end, Employee: "Ana Cruz", DaysWorked: decimal.NewFromInt(13), NetSalary: decimal.RequireFromString("6751.50")},
		{PeriodStart: start, PeriodEnd: end, Employee: "Ben Reyes", DaysWorked: decimal.NewFromInt(12), NetSalary: decimal.RequireFromString("6174")},
	}
}

func TestWriterForFormat(t *testing.T) {
	t.Parallel()

	if _, err := WriterForFormat(" CSV "); err != nil {
		t.Fatalf("csv: %v", err)
	}
	if _, err := WriterForFormat("xlsx"); err != nil {
		t.Fatalf("xlsx: %v", err)
	}
	if _, err := WriterForFormat("pdf"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
	if got := ExtensionForFormat("excel"); got != "xlsx" {
		t.Fatalf("expected xlsx extension, got %s", got)
	}
}

func TestCSVWriterWritesEntries(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "entries.csv")
	if err := (&CSVWriter{}).Write(path, sampleEntries()); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(records))
	}
	if len(records[0]) != 3+len(payroll.AmountColumns) || records[0][2] != "employee" {
		t.Fatalf("unexpected header %v", records[0])
	}
	last := len(records[1]) - 1
	if records[1][0] != "2025-01-01" || records[1][2] != "Ana Cruz" || records[1][3] != "13" || records[1][last] != "6751.5" {
		t.Fatalf("unexpected first row %v", records[1])
	}
}

func TestExcelWriterWritesNumericAmounts(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "entries.xlsx")
	if err := (&ExcelWriter{}).Write(path, sampleEntries()); err != nil {
		t.Fatalf("write excel: %v", err)
	}

	file, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open excel: %v", err)
	}
	defer file.Close()

	sheet := file.GetSheetName(0)
	rows, err := file.GetRows(sheet)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[2][2] != "Ben Reyes" {
		t.Fatalf("unexpected employee %q", rows[2][2])
	}

	netCell, _ := excelize.CoordinatesToCellName(3+len(payroll.AmountColumns), 3)
	cellType, err := file.GetCellType(sheet, netCell)
	if err != nil {
		t.Fatalf("cell type: %v", err)
	}
	if cellType == excelize.CellTypeSharedString || cellType == excelize.CellTypeInlineString {
		t.Fatalf("expected numeric net salary cell, got type %v", cellType)
	}
}

func TestWriteMonthlySummaries(t *testing.T) {
	t.Parallel()

	expenses := []report.MonthlyExpense{
		{Month: "2025-01", Branch: report.AllBranches, Expenses: decimal.RequireFromString("5200.355")},
		{Month: "2025-02", Branch: report.AllBranches, Expenses: decimal.RequireFromString("900")},
	}

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "summary.csv")
	if err := WriteMonthlySummaries(csvPath, "csv", expenses); err != nil {
		t.Fatalf("write csv summary: %v", err)
	}
	content, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("read csv summary: %v", err)
	}
	want := "Month,Branch,Expenses\n2025-01,All Branches,5200.36\n2025-02,All Branches,900.00\n"
	if string(content) != want {
		t.Fatalf("unexpected csv summary:\n%s", content)
	}

	xlsxPath := filepath.Join(dir, "summary.xlsx")
	if err := WriteMonthlySummaries(xlsxPath, "excel", expenses); err != nil {
		t.Fatalf("write excel summary: %v", err)
	}
	if _, err := os.Stat(xlsxPath); err != nil {
		t.Fatalf("expected excel summary file: %v", err)
	}

	if err := WriteMonthlySummaries(filepath.Join(dir, "summary.txt"), "txt", expenses); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}
