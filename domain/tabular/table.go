// Package tabular holds the row-of-strings table shape shared by every
// reader adapter and the downstream pipeline. Cells stay untyped here;
// numeric coercion happens at the point of use.
package tabular

import (
	"postpulse/domain/core"
)

// Table is an ordered header plus ordered rows of raw string fields.
// No type coercion and no whitespace trimming is applied to cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// ColumnIndex maps each header name to its position. When a header name
// repeats, the first occurrence wins.
func (t *Table) ColumnIndex() map[string]int {
	idx := make(map[string]int, len(t.Header))
	for i, name := range t.Header {
		if _, seen := idx[name]; !seen {
			idx[name] = i
		}
	}
	return idx
}

// RequireColumns fails with a single error naming every missing column.
func (t *Table) RequireColumns(names ...string) error {
	idx := t.ColumnIndex()
	var missing []string
	for _, name := range names {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return core.NewMissingColumnError(missing)
	}
	return nil
}

// Cell returns the raw field at (row, column index), tolerating ragged rows
// by returning "" when the row is shorter than the header.
func (t *Table) Cell(row, col int) string {
	if col < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	fields := t.Rows[row]
	if col >= len(fields) {
		return ""
	}
	return fields[col]
}
