package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postpulse/domain/core"
	"postpulse/domain/tabular"
)

func TestParseCSV_QuotedFields(t *testing.T) {
	text := "id,note\n1,\"hello, world\"\n2,\"line one\nline two\"\n3,\"she said \"\"hi\"\"\"\n"

	tbl, err := ParseCSV(text)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "note"}, tbl.Header)
	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, []string{"1", "hello, world"}, tbl.Rows[0])
	assert.Equal(t, []string{"2", "line one\nline two"}, tbl.Rows[1])
	assert.Equal(t, []string{"3", `she said "hi"`}, tbl.Rows[2])
}

func TestParseCSV_TrailingRowWithoutNewline(t *testing.T) {
	tbl, err := ParseCSV("a,b\n1,2")
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, []string{"1", "2"}, tbl.Rows[0])
}

func TestParseCSV_CRLF(t *testing.T) {
	tbl, err := ParseCSV("a,b\r\n1,2\r\n")
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, []string{"1", "2"}, tbl.Rows[0])
}

func TestParseCSV_UnterminatedQuote(t *testing.T) {
	_, err := ParseCSV("a,b\n1,\"oops")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnterminatedQuote)
}

func TestParseCSV_NoPhantomTrailingRow(t *testing.T) {
	// A final newline must not produce an extra empty row.
	tbl, err := ParseCSV("a,b\n1,2\n")
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 1)
}

func TestParseCSV_PreservesWhitespace(t *testing.T) {
	tbl, err := ParseCSV("a,b\n  x ,\ty\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"  x ", "\ty"}, tbl.Rows[0])
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	original := &tabular.Table{
		Header: []string{"post_id", "note", "value"},
		Rows: [][]string{
			{"p1", "plain", "1"},
			{"p2", "comma, inside", "2"},
			{"p3", "quote \" inside", "3"},
			{"p4", "multi\nline", "4"},
			{"p5", "", " padded "},
		},
	}

	parsed, err := ParseCSV(WriteCSV(original))
	require.NoError(t, err)
	assert.Equal(t, original.Header, parsed.Header)
	assert.Equal(t, original.Rows, parsed.Rows)
}

func TestTable_RequireColumns(t *testing.T) {
	tbl := &tabular.Table{Header: []string{"post_id", "views"}}

	require.NoError(t, tbl.RequireColumns("post_id", "views"))

	err := tbl.RequireColumns("post_id", "bucket_ts", "reposts")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrMissingColumn)
	assert.Contains(t, err.Error(), "bucket_ts")
	assert.Contains(t, err.Error(), "reposts")
}
