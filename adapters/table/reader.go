package table

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"postpulse/domain/core"
	"postpulse/domain/tabular"

	"github.com/xuri/excelize/v2"
)

// ReadFile loads a metrics export into a table, dispatching on the file
// extension: .xlsx workbooks go through excelize, legacy spreadsheet
// formats are rejected, and everything else is read as UTF-8 CSV text.
func ReadFile(path string) (*tabular.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadWorkbook(path)
	case ".xls", ".xlsb", ".ods":
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedFile, path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	tbl, err := ParseCSV(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return tbl, nil
}

// ReadWorkbook reads the first sheet of an .xlsx workbook into a table.
// The first row is treated as the header.
func ReadWorkbook(path string) (*tabular.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return &tabular.Table{}, nil
	}
	return &tabular.Table{Header: rows[0], Rows: rows[1:]}, nil
}
