package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"bakerypay/payroll"
)

// WorkbookReader parses workbook bytes into the grid of the first sheet.
type WorkbookReader interface {
	Read(data []byte) (*Grid, error)
}

// ReaderForFilename picks a reader by extension. Only .xlsx and .xls are accepted.
func ReaderForFilename(name string) (WorkbookReader, error) {
	switch FileExtension(name) {
	case "xlsx":
		return &ExcelReader{}, nil
	case "xls":
		return &XLSReader{}, nil
	default:
		return nil, fmt.Errorf("%w: %s is not a valid Excel file (.xlsx or .xls)", payroll.ErrUnsupportedFormat, name)
	}
}

// ReadWorkbook validates the extension before touching the bytes.
func ReadWorkbook(name string, data []byte) (*Grid, error) {
	reader, err := ReaderForFilename(name)
	if err != nil {
		return nil, err
	}

	grid, err := reader.Read(data)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return grid, nil
}

// FileExtension returns the lower-case extension without the dot.
func FileExtension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(strings.TrimSpace(name)), "."))
}
