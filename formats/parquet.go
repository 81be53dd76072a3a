package formats

import (
	"fmt"
	"io"
	"math/big"

	"github.com/segmentio/parquet-go"
	"github.com/shopspring/decimal"

	"github.com/floedb/floe"
	"github.com/floedb/floe/expr"
	"github.com/floedb/floe/table"
)

// parquetReader decodes a byte-range split of a parquet file into rows of
// the read schema, evaluating the residual predicate during the decode loop
// so filtered-out rows never surface.
type parquetReader struct {
	file     table.File
	reader   *parquet.Reader
	fields   []parquetField
	residual expr.Expression
	columns  map[string]int // read-schema field name -> output slot

	row       parquet.Row // reused decode buffer
	current   floe.Values
	remaining int64
}

type parquetField struct {
	field  floe.Field
	column int // leaf column index in the file
}

func newParquetReader(in table.InputFile, task table.FileScanTask, readSchema floe.Schema, caseSensitive bool) (*parquetReader, error) {
	f, err := in.Open()
	if err != nil {
		return nil, fmt.Errorf("couldn't open parquet file: %w", err)
	}
	size, err := in.Size()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("couldn't get parquet file size: %w", err)
	}

	pf, err := parquet.OpenFile(f, size, &parquet.FileConfig{
		SkipPageIndex:    true,
		SkipBloomFilters: true,
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("couldn't open parquet file: %w", err)
	}

	fields, err := matchParquetFields(pf.Schema(), readSchema, caseSensitive)
	if err != nil {
		f.Close()
		return nil, err
	}

	columns := make(map[string]int, len(readSchema.Fields))
	for i := range readSchema.Fields {
		columns[readSchema.Fields[i].Name] = i
	}

	r := &parquetReader{
		file:     f,
		reader:   parquet.NewReader(pf),
		fields:   fields,
		residual: task.Residual,
		columns:  columns,
	}

	// The pinned parquet library exposes no public row-group byte offsets,
	// so the byte-range split maps onto a row range proportionally. Splits
	// that tile the file's bytes tile its rows with no overlap, because
	// every boundary row is computed from the same boundary offset.
	total := r.reader.NumRows()
	startRow := splitBoundaryRow(total, task.Start, size)
	endRow := splitBoundaryRow(total, task.Start+task.Length, size)
	if startRow > 0 {
		if err := r.reader.SeekToRow(startRow); err != nil {
			f.Close()
			return nil, fmt.Errorf("couldn't seek to row %d: %w", startRow, err)
		}
	}
	r.remaining = endRow - startRow

	return r, nil
}

func splitBoundaryRow(totalRows, offset, size int64) int64 {
	if size <= 0 || offset >= size {
		return totalRows
	}
	if offset <= 0 {
		return 0
	}
	return int64(float64(totalRows) * (float64(offset) / float64(size)))
}

func matchParquetFields(schema *parquet.Schema, readSchema floe.Schema, caseSensitive bool) ([]parquetField, error) {
	fileFields := schema.Fields()
	out := make([]parquetField, 0, len(readSchema.Fields))
	for _, field := range readSchema.Fields {
		found := false
		for column, fileField := range fileFields {
			if !nameEquals(fileField.Name(), field.Name, caseSensitive) {
				continue
			}
			if !fileField.Leaf() {
				return nil, fmt.Errorf("nested parquet column '%s' is not supported", fileField.Name())
			}
			out = append(out, parquetField{field: field, column: column})
			found = true
			break
		}
		if !found {
			return nil, fmt.Errorf("column '%s' is missing from the parquet file", field.Name)
		}
	}
	return out, nil
}

func (r *parquetReader) Next() (floe.Row, error) {
	for r.remaining > 0 {
		row, err := r.reader.ReadRow(r.row[:0])
		if err == io.EOF {
			r.remaining = 0
			break
		} else if err != nil {
			return nil, fmt.Errorf("couldn't read parquet row: %w", err)
		}
		r.row = row
		r.remaining--

		values := make(floe.Values, len(r.fields))
		for i, field := range r.fields {
			value, err := parquetValueAt(row, field.column, field.field.Type)
			if err != nil {
				return nil, fmt.Errorf("column '%s': %w", field.field.Name, err)
			}
			values[i] = value
		}

		if r.residual != nil && !expr.IsAlwaysTrue(r.residual) {
			matches, err := r.residual.Matches(func(column string) (floe.Value, bool) {
				i, ok := r.columns[column]
				if !ok {
					return floe.Value{}, false
				}
				return values[i], true
			})
			if err != nil {
				return nil, fmt.Errorf("couldn't evaluate residual predicate: %w", err)
			}
			if !matches {
				continue
			}
		}

		r.current = values
		return r.current, nil
	}
	return nil, io.EOF
}

func (r *parquetReader) Close() error {
	return r.file.Close()
}

func parquetValueAt(row parquet.Row, column int, t floe.Type) (floe.Value, error) {
	for _, v := range row {
		if v.Column() != column {
			continue
		}
		if v.IsNull() {
			return floe.NewNull(), nil
		}
		return convertParquetValue(v, t)
	}
	return floe.Value{}, fmt.Errorf("row is missing leaf column %d", column)
}

func convertParquetValue(v parquet.Value, t floe.Type) (floe.Value, error) {
	switch t.TypeID {
	case floe.TypeIDBoolean:
		if v.Kind() == parquet.Boolean {
			return floe.NewBoolean(v.Boolean()), nil
		}
	case floe.TypeIDInt:
		switch v.Kind() {
		case parquet.Int32:
			return floe.NewInt(int64(v.Int32())), nil
		case parquet.Int64:
			return floe.NewInt(v.Int64()), nil
		}
	case floe.TypeIDFloat:
		switch v.Kind() {
		case parquet.Float:
			return floe.NewFloat(float64(v.Float())), nil
		case parquet.Double:
			return floe.NewFloat(v.Double()), nil
		}
	case floe.TypeIDDecimal:
		switch v.Kind() {
		case parquet.Int32:
			return floe.NewDecimal(decimal.New(int64(v.Int32()), -t.Scale)), nil
		case parquet.Int64:
			return floe.NewDecimal(decimal.New(v.Int64(), -t.Scale)), nil
		case parquet.ByteArray, parquet.FixedLenByteArray:
			// Big-endian two's complement unscaled integer.
			return floe.NewDecimal(decimalFromBigEndian(v.ByteArray(), t.Scale)), nil
		}
	case floe.TypeIDString:
		if v.Kind() == parquet.ByteArray {
			return floe.NewString(string(v.ByteArray())), nil
		}
	case floe.TypeIDBytes:
		switch v.Kind() {
		case parquet.ByteArray, parquet.FixedLenByteArray:
			buf := v.ByteArray()
			owned := make([]byte, len(buf))
			copy(owned, buf)
			return floe.NewBytes(owned), nil
		}
	case floe.TypeIDTime:
		if v.Kind() == parquet.Int64 {
			// Microseconds since epoch, the usual timestamp physical form.
			return floe.NewTime(microsToTime(v.Int64())), nil
		}
	}
	return floe.Value{}, fmt.Errorf("cannot decode parquet %s value as %s", v.Kind(), t)
}

func decimalFromBigEndian(buf []byte, scale int32) decimal.Decimal {
	unscaled := new(big.Int).SetBytes(buf)
	if len(buf) > 0 && buf[0]&0x80 != 0 {
		offset := new(big.Int).Lsh(big.NewInt(1), uint(len(buf))*8)
		unscaled.Sub(unscaled, offset)
	}
	return decimal.NewFromBigInt(unscaled, -scale)
}
