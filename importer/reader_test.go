package importer

import (
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"bakerypay/payroll"
)

// buildWorkbook writes rows into the first sheet of a new xlsx workbook.
func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()

	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	for rowIdx, row := range rows {
		for colIdx, value := range row {
			if value == nil {
				continue
			}
			name, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := file.SetCellValue(sheet, name, value); err != nil {
				t.Fatalf("set %s: %v", name, err)
			}
		}
	}

	buffer, err := file.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buffer.Bytes()
}

func TestReaderForFilename(t *testing.T) {
	t.Parallel()

	if reader, err := ReaderForFilename("Payroll.XLSX"); err != nil {
		t.Fatalf("xlsx: %v", err)
	} else if _, ok := reader.(*ExcelReader); !ok {
		t.Fatalf("expected ExcelReader, got %T", reader)
	}
	if reader, err := ReaderForFilename("legacy.xls"); err != nil {
		t.Fatalf("xls: %v", err)
	} else if _, ok := reader.(*XLSReader); !ok {
		t.Fatalf("expected XLSReader, got %T", reader)
	}

	for _, name := range []string{"payroll.csv", "payroll.pdf", "payroll"} {
		if _, err := ReaderForFilename(name); !errors.Is(err, payroll.ErrUnsupportedFormat) {
			t.Fatalf("%s: expected ErrUnsupportedFormat, got %v", name, err)
		}
	}
}

func TestReadWorkbookRejectsCorruptBytes(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"broken.xlsx", "broken.xls"} {
		_, err := ReadWorkbook(name, []byte("definitely not a workbook"))
		if !errors.Is(err, payroll.ErrCorruptFile) {
			t.Fatalf("%s: expected ErrCorruptFile, got %v", name, err)
		}
	}
}

func TestExcelReaderKeepsCellTypes(t *testing.T) {
	t.Parallel()

	data := buildWorkbook(t, [][]any{
		{"WE HEREBY ACKNOWLEDGE to have received from Annex, the sum"},
		{1, "Ana Cruz", 11.5, nil, true},
	})

	grid, err := ReadWorkbook("sample.xlsx", data)
	if err != nil {
		t.Fatalf("read workbook: %v", err)
	}
	if grid.RowCount() != 2 {
		t.Fatalf("expected 2 rows, got %d", grid.RowCount())
	}
	if got := grid.Cell(0, 0); got.Kind != CellText {
		t.Fatalf("expected text cell, got %+v", got)
	}
	if got := grid.Cell(1, 1).StringValue(); got != "Ana Cruz" {
		t.Fatalf("unexpected employee cell %q", got)
	}
	if got := grid.Cell(1, 2); got.Kind != CellNumber || got.Number != 11.5 {
		t.Fatalf("expected number 11.5, got %+v", got)
	}
	if got := grid.Cell(1, 3); !got.IsEmpty() {
		t.Fatalf("expected empty cell, got %+v", got)
	}
	if got := grid.Cell(1, 4); got.Kind != CellBool || got.Number != 1 {
		t.Fatalf("expected true bool cell, got %+v", got)
	}
	if got := grid.Cell(5, 5); !got.IsEmpty() {
		t.Fatalf("expected empty cell outside the used range, got %+v", got)
	}
}

func TestExcelReaderDetectsDateFormattedNumbers(t *testing.T) {
	t.Parallel()

	file := excelize.NewFile()
	defer file.Close()
	sheet := file.GetSheetName(0)

	style, err := file.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		t.Fatalf("new style: %v", err)
	}
	if err := file.SetCellValue(sheet, "A1", 45672); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if err := file.SetCellStyle(sheet, "A1", "A1", style); err != nil {
		t.Fatalf("set style: %v", err)
	}
	buffer, err := file.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	grid, err := (&ExcelReader{}).Read(buffer.Bytes())
	if err != nil {
		t.Fatalf("read workbook: %v", err)
	}
	cell := grid.Cell(0, 0)
	if cell.Kind != CellDate {
		t.Fatalf("expected date cell, got %+v", cell)
	}
	if want := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC); !cell.Time.Equal(want) {
		t.Fatalf("expected %s, got %s", want, cell.Time)
	}
	if !CoerceAmount(cell).IsZero() {
		t.Fatalf("expected date cell to coerce to zero")
	}
}
