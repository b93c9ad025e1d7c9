package importer

import (
	"strconv"
	"strings"
	"time"
)

type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellDate
	CellBool
)

// Cell keeps the native type of a spreadsheet value. Only the field matching Kind is meaningful,
// except Text which always holds the raw textual form.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Time   time.Time
}

func TextCell(value string) Cell {
	if value == "" {
		return Cell{}
	}
	return Cell{Kind: CellText, Text: value}
}

func NumberCell(value float64) Cell {
	return Cell{Kind: CellNumber, Text: strconv.FormatFloat(value, 'f', -1, 64), Number: value}
}

func DateCell(value time.Time) Cell {
	return Cell{Kind: CellDate, Text: value.Format("2006-01-02"), Time: value}
}

func BoolCell(value bool) Cell {
	cell := Cell{Kind: CellBool, Text: "FALSE"}
	if value {
		cell.Text = "TRUE"
		cell.Number = 1
	}
	return cell
}

// StringValue returns the cell text when the cell holds text, otherwise "".
func (c Cell) StringValue() string {
	if c.Kind != CellText {
		return ""
	}
	return c.Text
}

func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// Grid is the first sheet of a workbook as rows of typed cells. Rows may have different lengths.
type Grid struct {
	rows [][]Cell
}

func NewGrid(rows [][]Cell) *Grid {
	return &Grid{rows: rows}
}

func (g *Grid) RowCount() int {
	return len(g.rows)
}

// ColCount returns the width of the widest row.
func (g *Grid) ColCount() int {
	width := 0
	for _, row := range g.rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// Cell returns the cell at the zero-based position, or an empty cell outside the used range.
func (g *Grid) Cell(row, col int) Cell {
	if row < 0 || row >= len(g.rows) {
		return Cell{}
	}
	cells := g.rows[row]
	if col < 0 || col >= len(cells) {
		return Cell{}
	}
	return cells[col]
}

// classifyText turns an untyped value into a cell, promoting numeric text to a number.
func classifyText(raw string) Cell {
	if strings.TrimSpace(raw) == "" {
		return Cell{}
	}
	if value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		return Cell{Kind: CellNumber, Text: raw, Number: value}
	}
	return TextCell(raw)
}
