package formats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floedb/floe"
	"github.com/floedb/floe/table"
)

func TestOpenUnknownFormat(t *testing.T) {
	_, err := Open(nil, table.FileScanTask{
		File: table.DataFile{Path: "data.xyz", Format: table.FormatUnknown},
	}, floe.Schema{}, floe.Schema{}, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot read unknown file format: unknown")
}

func TestVirtualReaderProjectsRows(t *testing.T) {
	tableSchema := floe.NewSchema(
		floe.Field{ID: 1, Name: "id", Type: floe.Int},
		floe.Field{ID: 2, Name: "name", Type: floe.String},
	)
	readSchema := floe.NewSchema(
		floe.Field{ID: 2, Name: "Name", Type: floe.String},
	)

	r, err := Open(nil, table.FileScanTask{
		Rows: []floe.Values{
			{floe.NewInt(1), floe.NewString("books")},
			{floe.NewInt(2), floe.NewString("games")},
		},
	}, readSchema, tableSchema, false)
	require.NoError(t, err)
	defer r.Close()

	rows := readAll(t, r)
	assert.Equal(t, []floe.Values{
		{floe.NewString("books")},
		{floe.NewString("games")},
	}, rows)
}

func TestVirtualReaderUnknownColumn(t *testing.T) {
	tableSchema := floe.NewSchema(floe.Field{ID: 1, Name: "id", Type: floe.Int})
	readSchema := floe.NewSchema(floe.Field{ID: 9, Name: "bogus", Type: floe.Int})

	_, err := Open(nil, table.FileScanTask{Rows: []floe.Values{}}, readSchema, tableSchema, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column 'bogus' is missing from the table schema")
}

func TestParseTextValue(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		typ     floe.Type
		want    floe.Value
		wantErr bool
	}{
		{name: "empty is null", text: "", typ: floe.Int, want: floe.NewNull()},
		{name: "boolean", text: "true", typ: floe.Boolean, want: floe.NewBoolean(true)},
		{name: "int", text: "-42", typ: floe.Int, want: floe.NewInt(-42)},
		{name: "float", text: "1.5", typ: floe.Float, want: floe.NewFloat(1.5)},
		{name: "string", text: "books", typ: floe.String, want: floe.NewString("books")},
		{name: "bytes", text: "abc", typ: floe.Bytes, want: floe.NewBytes([]byte("abc"))},
		{name: "bad int", text: "seven", typ: floe.Int, wantErr: true},
		{name: "bad time", text: "yesterday", typ: floe.Time, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTextValue(tt.text, tt.typ)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equals(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}
