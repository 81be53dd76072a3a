// Package formats opens physical file regions as row streams in a requested
// schema. Each on-disk encoding gets one reader; all readers expose the same
// pull contract, so the assembler never branches on encoding.
package formats

import (
	"fmt"

	"github.com/floedb/floe"
	"github.com/floedb/floe/table"
)

// RowReader is a lazily decoded stream of rows in the schema Open was given.
// Next returns io.EOF after the last row. A reader owns exactly one open
// file; Close releases it.
type RowReader interface {
	Next() (floe.Row, error)
	Close() error
}

// Open returns a reader for the task's file region, decoded into readSchema.
// Virtual tasks serve their embedded rows (kept in tableSchema order) and
// never touch in. Unknown encodings are an error, never skipped.
func Open(in table.InputFile, task table.FileScanTask, readSchema, tableSchema floe.Schema, caseSensitive bool) (RowReader, error) {
	if task.IsVirtual() {
		return newVirtualReader(task.Rows, tableSchema, readSchema, caseSensitive)
	}

	switch task.File.Format {
	case table.FormatParquet:
		return newParquetReader(in, task, readSchema, caseSensitive)
	case table.FormatJSON:
		return newJSONReader(in, task, readSchema, caseSensitive)
	case table.FormatCSV:
		return newCSVReader(in, task, readSchema, caseSensitive)
	default:
		return nil, fmt.Errorf("cannot read unknown file format: %s", task.File.Format)
	}
}
