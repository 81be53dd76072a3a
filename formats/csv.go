package formats

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/floedb/floe"
	"github.com/floedb/floe/table"
)

// csvReader decodes header-first CSV. Splits follow the same line-ownership
// rule as JSON; the header is always read from offset zero regardless of the
// split, so every split sees the same column layout. CSV carries no residual
// evaluation: rows stream out unfiltered.
type csvReader struct {
	file    table.File
	scanner *bufio.Scanner
	slots   []int // per read-schema field: index into the CSV record
	fields  []floe.Field

	pos int64
	end int64
}

func newCSVReader(in table.InputFile, task table.FileScanTask, readSchema floe.Schema, caseSensitive bool) (*csvReader, error) {
	f, err := in.Open()
	if err != nil {
		return nil, fmt.Errorf("couldn't open csv file: %w", err)
	}
	size, err := in.Size()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("couldn't get csv file size: %w", err)
	}

	header, headerLen, err := readCSVHeader(f, size)
	if err != nil {
		f.Close()
		return nil, err
	}

	slots := make([]int, len(readSchema.Fields))
	for i, field := range readSchema.Fields {
		slots[i] = -1
		for j, name := range header {
			if nameEquals(name, field.Name, caseSensitive) {
				slots[i] = j
				break
			}
		}
		if slots[i] == -1 {
			f.Close()
			return nil, fmt.Errorf("column '%s' is missing from the csv header", field.Name)
		}
	}

	// Data begins after the header; a later split begins mid-line and skips
	// forward to the next line boundary.
	start := task.Start
	if start < headerLen {
		start = headerLen
	}
	sc := bufio.NewScanner(io.NewSectionReader(f, start, size-start))
	sc.Buffer(nil, 1024*1024)

	r := &csvReader{
		file:    f,
		scanner: sc,
		slots:   slots,
		fields:  readSchema.Fields,
		pos:     start,
		end:     task.Start + task.Length,
	}

	if task.Start >= headerLen {
		if sc.Scan() {
			r.pos += int64(len(sc.Bytes())) + 1
		} else if err := sc.Err(); err != nil {
			f.Close()
			return nil, fmt.Errorf("couldn't skip partial first line: %w", err)
		}
	}

	return r, nil
}

func readCSVHeader(f table.File, size int64) ([]string, int64, error) {
	br := bufio.NewReader(io.NewSectionReader(f, 0, size))
	line, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, 0, fmt.Errorf("couldn't read csv header: %w", err)
	}
	headerLen := int64(len(line))
	record, err := csv.NewReader(strings.NewReader(line)).Read()
	if err != nil {
		return nil, 0, fmt.Errorf("couldn't parse csv header: %w", err)
	}
	return record, headerLen, nil
}

func (r *csvReader) Next() (floe.Row, error) {
	if r.pos > r.end {
		return nil, io.EOF
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, fmt.Errorf("couldn't scan csv line: %w", err)
		}
		return nil, io.EOF
	}
	r.pos += int64(len(r.scanner.Bytes())) + 1

	record, err := csv.NewReader(strings.NewReader(r.scanner.Text())).Read()
	if err != nil {
		return nil, fmt.Errorf("couldn't parse csv line: %w", err)
	}

	values := make(floe.Values, len(r.fields))
	for i := range r.fields {
		if r.slots[i] >= len(record) {
			return nil, fmt.Errorf("csv line has %d fields, column '%s' needs field %d", len(record), r.fields[i].Name, r.slots[i])
		}
		value, err := parseTextValue(record[r.slots[i]], r.fields[i].Type)
		if err != nil {
			return nil, fmt.Errorf("column '%s': %w", r.fields[i].Name, err)
		}
		values[i] = value
	}
	return values, nil
}

func (r *csvReader) Close() error {
	return r.file.Close()
}
