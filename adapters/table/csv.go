// Package table reads metrics exports (RFC 4180 CSV text or .xlsx
// workbooks) into the shared tabular.Table shape.
package table

import (
	"strings"

	"postpulse/domain/core"
	"postpulse/domain/tabular"
)

// ParseCSV parses RFC 4180 text into a header row plus data rows. Quoted
// fields may contain commas and newlines; a literal quote inside a quoted
// field is escaped by doubling. Fields are not trimmed. An unmatched quote
// at end of input is an error.
func ParseCSV(text string) (*tabular.Table, error) {
	var (
		rows     [][]string
		row      []string
		field    strings.Builder
		inQuotes bool
	)

	i, n := 0, len(text)
	for i < n {
		c := text[i]

		if inQuotes {
			if c == '"' {
				if i+1 < n && text[i+1] == '"' {
					field.WriteByte('"')
					i += 2
					continue
				}
				inQuotes = false
				i++
				continue
			}
			field.WriteByte(c)
			i++
			continue
		}

		switch c {
		case '"':
			inQuotes = true
			i++
		case ',':
			row = append(row, field.String())
			field.Reset()
			i++
		case '\r', '\n':
			if c == '\r' && i+1 < n && text[i+1] == '\n' {
				i++ // fold CRLF into one terminator
			}
			row = append(row, field.String())
			rows = append(rows, row)
			row = nil
			field.Reset()
			i++
		default:
			field.WriteByte(c)
			i++
		}
	}

	if inQuotes {
		return nil, core.ErrUnterminatedQuote
	}

	// Trailing row without a final newline: emit only when something was
	// actually accumulated.
	if field.Len() > 0 || len(row) > 0 {
		row = append(row, field.String())
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return &tabular.Table{}, nil
	}
	return &tabular.Table{Header: rows[0], Rows: rows[1:]}, nil
}

// WriteCSV serializes a table back to RFC 4180 text with a trailing
// newline. Fields containing commas, quotes or line breaks are quoted,
// quotes doubled, so ParseCSV(WriteCSV(t)) reproduces t exactly.
func WriteCSV(t *tabular.Table) string {
	var out strings.Builder
	writeRecord(&out, t.Header)
	for _, row := range t.Rows {
		writeRecord(&out, row)
	}
	return out.String()
}

func writeRecord(out *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			out.WriteByte(',')
		}
		if strings.ContainsAny(f, ",\"\n\r") {
			out.WriteByte('"')
			out.WriteString(strings.ReplaceAll(f, `"`, `""`))
			out.WriteByte('"')
		} else {
			out.WriteString(f)
		}
	}
	out.WriteByte('\n')
}
