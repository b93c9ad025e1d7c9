package importer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"bakerypay/payroll"
)

type ExcelReader struct{}

func (r *ExcelReader) Read(data []byte) (*Grid, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: open excel workbook: %v", payroll.ErrCorruptFile, err)
	}
	defer file.Close()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("%w: excel workbook has no sheets", payroll.ErrCorruptFile)
	}

	rows, err := file.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read rows from sheet %s: %v", payroll.ErrCorruptFile, sheetName, err)
	}

	dates := dateStyleCache{file: file, known: make(map[int]bool)}
	cells := make([][]Cell, len(rows))
	for rowIdx, row := range rows {
		cells[rowIdx] = make([]Cell, len(row))
		for colIdx, raw := range row {
			if raw == "" {
				continue
			}
			name, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", payroll.ErrCorruptFile, err)
			}
			cells[rowIdx][colIdx] = dates.typedCell(sheetName, name, raw)
		}
	}

	return NewGrid(cells), nil
}

// dateStyleCache remembers which style ids carry a date number format.
type dateStyleCache struct {
	file  *excelize.File
	known map[int]bool
}

func (c *dateStyleCache) typedCell(sheet, name, raw string) Cell {
	cellType, err := c.file.GetCellType(sheet, name)
	if err != nil {
		return classifyText(raw)
	}

	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return TextCell(raw)
	case excelize.CellTypeBool:
		return BoolCell(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeError:
		return Cell{}
	case excelize.CellTypeDate:
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if moment, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
				return DateCell(moment)
			}
		}
		return TextCell(raw)
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return TextCell(raw)
	}
	if c.isDate(sheet, name) {
		if moment, err := excelize.ExcelDateToTime(value, false); err == nil {
			return DateCell(moment)
		}
	}
	return NumberCell(value)
}

func (c *dateStyleCache) isDate(sheet, name string) bool {
	styleID, err := c.file.GetCellStyle(sheet, name)
	if err != nil || styleID == 0 {
		return false
	}
	if known, ok := c.known[styleID]; ok {
		return known
	}

	isDate := false
	if style, err := c.file.GetStyle(styleID); err == nil && style != nil {
		isDate = isDateNumFmt(style.NumFmt)
		if style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		}
	}
	c.known[styleID] = isDate
	return isDate
}

func isDateNumFmt(id int) bool {
	return (id >= 14 && id <= 22) || (id >= 45 && id <= 47)
}

func isDateFormatCode(code string) bool {
	lower := strings.ToLower(code)
	return strings.Contains(lower, "yy") || strings.Contains(lower, "mmm") || strings.Contains(lower, "dd")
}
