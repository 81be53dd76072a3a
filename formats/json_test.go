package formats

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floedb/floe"
	"github.com/floedb/floe/expr"
	"github.com/floedb/floe/table"
)

func writeFile(t *testing.T, name, content string) (table.InputFile, int64) {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return table.LocalFileIO{}.NewInputFile(path), int64(len(content))
}

func readAll(t *testing.T, r RowReader) []floe.Values {
	t.Helper()
	var out []floe.Values
	for {
		row, err := r.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, floe.CopyRow(row))
	}
}

func TestJSONReaderDecodesTypes(t *testing.T) {
	in, size := writeFile(t, "data.json",
		`{"active": true, "count": 3, "ratio": 0.5, "amount": "12.34", "name": "books", "at": "2023-05-01T12:00:00Z", "missing_in_next": 1}
{"active": false, "count": -1, "ratio": 2, "amount": 7.5, "name": null, "at": null}
`)

	schema := floe.NewSchema(
		floe.Field{ID: 1, Name: "active", Type: floe.Boolean},
		floe.Field{ID: 2, Name: "count", Type: floe.Int},
		floe.Field{ID: 3, Name: "ratio", Type: floe.Float},
		floe.Field{ID: 4, Name: "amount", Type: floe.Decimal(2)},
		floe.Field{ID: 5, Name: "name", Type: floe.String},
		floe.Field{ID: 6, Name: "at", Type: floe.Time},
		floe.Field{ID: 7, Name: "absent", Type: floe.String},
	)

	r, err := newJSONReader(in, table.FileScanTask{
		File:     table.DataFile{Format: table.FormatJSON},
		Length:   size,
		Residual: expr.AlwaysTrue(),
	}, schema, true)
	require.NoError(t, err)
	defer r.Close()

	rows := readAll(t, r)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.True(t, first[0].Equals(floe.NewBoolean(true)))
	assert.True(t, first[1].Equals(floe.NewInt(3)))
	assert.True(t, first[2].Equals(floe.NewFloat(0.5)))
	assert.True(t, first[3].Equals(floe.NewDecimal(decimal.RequireFromString("12.34"))))
	assert.True(t, first[4].Equals(floe.NewString("books")))
	assert.True(t, first[5].Equals(floe.NewTime(time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC))))
	assert.True(t, first[6].IsNull(), "missing object keys decode as null")

	second := rows[1]
	assert.True(t, second[0].Equals(floe.NewBoolean(false)))
	assert.True(t, second[1].Equals(floe.NewInt(-1)))
	assert.True(t, second[3].Equals(floe.NewDecimal(decimal.RequireFromString("7.5"))), "numeric decimals decode from their textual form")
	assert.True(t, second[4].IsNull())
	assert.True(t, second[5].IsNull())
}

func TestJSONReaderCaseInsensitiveKeys(t *testing.T) {
	in, size := writeFile(t, "data.json", `{"UserID": 7}`+"\n")

	schema := floe.NewSchema(floe.Field{ID: 1, Name: "userid", Type: floe.Int})

	r, err := newJSONReader(in, table.FileScanTask{Length: size}, schema, false)
	require.NoError(t, err)
	defer r.Close()

	rows := readAll(t, r)
	require.Len(t, rows, 1)
	assert.True(t, rows[0][0].Equals(floe.NewInt(7)))
}

func TestJSONReaderTypeMismatch(t *testing.T) {
	in, size := writeFile(t, "data.json", `{"count": "seven"}`+"\n")

	schema := floe.NewSchema(floe.Field{ID: 1, Name: "count", Type: floe.Int})

	r, err := newJSONReader(in, table.FileScanTask{Length: size}, schema, true)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column 'count'")
}

// Splits must tile the file: every line read exactly once no matter where the
// byte boundary lands.
func TestJSONReaderSplits(t *testing.T) {
	content := `{"id": 1}
{"id": 2}
{"id": 3}
`
	schema := floe.NewSchema(floe.Field{ID: 1, Name: "id", Type: floe.Int})
	size := int64(len(content)) // three lines of 10 bytes

	tests := []struct {
		name     string
		boundary int64
	}{
		{"boundary on a line start", 20},
		{"boundary mid-line", 15},
		{"boundary right after a newline start", 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, _ := writeFile(t, "data.json", content)

			var ids []int64
			for _, span := range [][2]int64{{0, tt.boundary}, {tt.boundary, size - tt.boundary}} {
				r, err := newJSONReader(in, table.FileScanTask{Start: span[0], Length: span[1]}, schema, true)
				require.NoError(t, err)
				for _, row := range readAll(t, r) {
					ids = append(ids, row[0].Int)
				}
				require.NoError(t, r.Close())
			}
			assert.Equal(t, []int64{1, 2, 3}, ids)
		})
	}
}
