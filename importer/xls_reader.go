package importer

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"

	"bakerypay/payroll"
)

// XLSReader reads legacy BIFF workbooks. The xls library exposes formatted strings only,
// so numeric text is promoted to number cells.
type XLSReader struct {
	Charset string
}

func (r *XLSReader) Read(data []byte) (grid *Grid, err error) {
	// The BIFF parser panics on some truncated streams.
	defer func() {
		if recovered := recover(); recovered != nil {
			grid = nil
			err = fmt.Errorf("%w: parse xls workbook: %v", payroll.ErrCorruptFile, recovered)
		}
	}()

	charset := r.Charset
	if charset == "" {
		charset = "utf-8"
	}

	workbook, err := xls.OpenReader(bytes.NewReader(data), charset)
	if err != nil {
		return nil, fmt.Errorf("%w: open xls workbook: %v", payroll.ErrCorruptFile, err)
	}
	if workbook == nil {
		return nil, fmt.Errorf("%w: xls file has no workbook stream", payroll.ErrCorruptFile)
	}

	sheet := workbook.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("%w: xls workbook has no sheets", payroll.ErrCorruptFile)
	}

	rows := make([][]Cell, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheetRow(sheet, i)
		if row == nil || row.LastCol() <= 0 {
			continue
		}
		cells := make([]Cell, row.LastCol())
		for j := 0; j < row.LastCol(); j++ {
			cells[j] = classifyText(row.Col(j))
		}
		rows[i] = cells
	}

	return NewGrid(rows), nil
}

// sheetRow returns nil for rows that hold no cells. The library dereferences
// a missing row instead of reporting it.
func sheetRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}
