package formats

import (
	"fmt"
	"io"

	"github.com/floedb/floe"
)

// virtualReader serves in-memory rows, re-projected from table-schema order
// to the read schema so virtual and file-backed tasks are indistinguishable
// downstream.
type virtualReader struct {
	rows  []floe.Values
	slots []int
	index int
}

func newVirtualReader(rows []floe.Values, tableSchema, readSchema floe.Schema, caseSensitive bool) (*virtualReader, error) {
	slots := make([]int, len(readSchema.Fields))
	for i, field := range readSchema.Fields {
		slots[i] = tableSchema.IndexOf(field.Name, caseSensitive)
		if slots[i] == -1 {
			return nil, fmt.Errorf("column '%s' is missing from the table schema", field.Name)
		}
	}
	return &virtualReader{rows: rows, slots: slots}, nil
}

func (r *virtualReader) Next() (floe.Row, error) {
	if r.index >= len(r.rows) {
		return nil, io.EOF
	}
	row := r.rows[r.index]
	r.index++

	values := make(floe.Values, len(r.slots))
	for i, slot := range r.slots {
		values[i] = row[slot]
	}
	return values, nil
}

func (r *virtualReader) Close() error {
	return nil
}
