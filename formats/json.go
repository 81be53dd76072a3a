package formats

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/valyala/fastjson"

	"github.com/floedb/floe"
	"github.com/floedb/floe/table"
)

// jsonReader decodes line-delimited, self-describing JSON. One parser is
// reused across all rows of the split, so decode buffers are shared row to
// row. A split owns the lines that begin after its start offset, up to and
// including a line beginning exactly at its end; together with discarding the
// first line of every non-zero split this makes adjacent splits tile the file
// with no lost or duplicated lines.
type jsonReader struct {
	file          table.File
	scanner       *bufio.Scanner
	parser        fastjson.Parser
	fields        []floe.Field
	caseSensitive bool

	pos int64 // offset of the next unread line
	end int64
}

func newJSONReader(in table.InputFile, task table.FileScanTask, readSchema floe.Schema, caseSensitive bool) (*jsonReader, error) {
	f, err := in.Open()
	if err != nil {
		return nil, fmt.Errorf("couldn't open json file: %w", err)
	}
	size, err := in.Size()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("couldn't get json file size: %w", err)
	}

	sc := bufio.NewScanner(io.NewSectionReader(f, task.Start, size-task.Start))
	sc.Buffer(nil, 1024*1024)

	r := &jsonReader{
		file:          f,
		scanner:       sc,
		fields:        readSchema.Fields,
		caseSensitive: caseSensitive,
		pos:           task.Start,
		end:           task.Start + task.Length,
	}

	// A non-zero start lands mid-line or exactly on a line boundary; either
	// way that line belongs to the previous split, so discard up to the next
	// boundary.
	if task.Start > 0 {
		if sc.Scan() {
			r.pos += int64(len(sc.Bytes())) + 1
		} else if err := sc.Err(); err != nil {
			f.Close()
			return nil, fmt.Errorf("couldn't skip partial first line: %w", err)
		}
	}

	return r, nil
}

func (r *jsonReader) Next() (floe.Row, error) {
	if r.pos > r.end {
		return nil, io.EOF
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, fmt.Errorf("couldn't scan json line: %w", err)
		}
		return nil, io.EOF
	}
	r.pos += int64(len(r.scanner.Bytes())) + 1

	v, err := r.parser.ParseBytes(r.scanner.Bytes())
	if err != nil {
		return nil, fmt.Errorf("couldn't parse json: %w", err)
	}
	if v.Type() != fastjson.TypeObject {
		return nil, fmt.Errorf("expected JSON object, got '%s'", r.scanner.Text())
	}
	o, err := v.Object()
	if err != nil {
		return nil, fmt.Errorf("expected JSON object, got '%s'", r.scanner.Text())
	}

	values := make(floe.Values, len(r.fields))
	for i := range r.fields {
		value, err := jsonValue(r.fields[i].Type, r.jsonField(o, r.fields[i].Name))
		if err != nil {
			return nil, fmt.Errorf("column '%s': %w", r.fields[i].Name, err)
		}
		values[i] = value
	}
	return values, nil
}

func (r *jsonReader) jsonField(o *fastjson.Object, name string) *fastjson.Value {
	if value := o.Get(name); value != nil || r.caseSensitive {
		return value
	}
	var out *fastjson.Value
	o.Visit(func(key []byte, v *fastjson.Value) {
		if out == nil && nameEquals(string(key), name, false) {
			out = v
		}
	})
	return out
}

func (r *jsonReader) Close() error {
	return r.file.Close()
}

func jsonValue(t floe.Type, value *fastjson.Value) (floe.Value, error) {
	if value == nil || value.Type() == fastjson.TypeNull {
		return floe.NewNull(), nil
	}

	switch t.TypeID {
	case floe.TypeIDBoolean:
		if value.Type() == fastjson.TypeTrue {
			return floe.NewBoolean(true), nil
		} else if value.Type() == fastjson.TypeFalse {
			return floe.NewBoolean(false), nil
		}
	case floe.TypeIDInt:
		if value.Type() == fastjson.TypeNumber {
			v, _ := value.Float64()
			if v == math.Trunc(v) {
				return floe.NewInt(int64(v)), nil
			}
		}
	case floe.TypeIDFloat:
		if value.Type() == fastjson.TypeNumber {
			v, _ := value.Float64()
			return floe.NewFloat(v), nil
		}
	case floe.TypeIDDecimal, floe.TypeIDString, floe.TypeIDBytes, floe.TypeIDTime:
		if value.Type() == fastjson.TypeString {
			v, _ := value.StringBytes()
			return parseTextValue(string(v), t)
		}
		if value.Type() == fastjson.TypeNumber && t.TypeID == floe.TypeIDDecimal {
			return parseTextValue(value.String(), t)
		}
	}
	return floe.Value{}, fmt.Errorf("cannot decode json %s value as %s", value.Type(), t)
}
