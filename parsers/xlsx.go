package parsers

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ErrNoSheets is returned for a workbook without worksheets.
var ErrNoSheets = errors.New("excel file does not contain any sheets")

// ParseXLSX reads the first worksheet of a workbook as a roster: the first
// non-empty row is the header and every later non-empty row is resolved
// like a CSV line. GetRows drops trailing empty cells, so data rows are
// padded back to the header width before resolving.
func ParseXLSX(reader io.Reader) ([]Record, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			zap.L().Warn("closing excel file", zap.Error(err))
		}
	}()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrNoSheets
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from sheet %s: %w", sheetName, err)
	}

	out := []Record{}
	var header *Header
	width := 0
	for _, row := range rows {
		cells := make([]string, max(len(row), width))
		empty := true
		for i, c := range row {
			cells[i] = TrimField(c)
			if cells[i] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		if header == nil {
			h := DetectHeaderFields(cells)
			header = &h
			width = len(cells)
			continue
		}
		out = append(out, header.Resolve(cells).Record)
	}
	return out, nil
}
