package table

import (
	"github.com/floedb/floe"
	"github.com/floedb/floe/expr"
)

// FileFormat is the on-disk encoding of a data file.
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	// FormatParquet is columnar; readers take byte-range splits and push the
	// residual predicate down into the decode loop.
	FormatParquet
	// FormatJSON is row-oriented, self-describing, line-delimited. Readers
	// take byte-range splits and reuse decode buffers across rows.
	FormatJSON
	// FormatCSV takes byte-range splits but cannot evaluate residuals.
	FormatCSV
)

func (f FileFormat) String() string {
	switch f {
	case FormatParquet:
		return "parquet"
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	}
	return "unknown"
}

// DataFile describes one data file as recorded in table metadata.
type DataFile struct {
	Path        string
	Format      FileFormat
	SizeBytes   int64
	RecordCount int64
	// PartitionValues is the file's partition tuple, one value per field of
	// the partition spec, in spec field order.
	PartitionValues floe.Values
	// KeyMetadata is the opaque encryption key material for the file, nil
	// for unencrypted files.
	KeyMetadata []byte
}

// FileScanTask is one physical region of one file, planned to be read with
// the residual predicate that file-level pruning could not resolve.
type FileScanTask struct {
	File     DataFile
	Start    int64
	Length   int64
	Residual expr.Expression
	Spec     PartitionSpec
	// Rows, when non-nil, makes this a virtual task: the rows are served
	// from memory (in table-schema order) and File is never opened.
	Rows []floe.Values
}

func (t FileScanTask) IsVirtual() bool {
	return t.Rows != nil
}

// TaskGroup is a bundle of tasks processed together as one unit of parallel
// work. Immutable once planned; plain data so it can be shipped to workers.
type TaskGroup struct {
	Tasks []FileScanTask
}
