package table

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/floedb/floe"
)

func TestPartitionSpecIdentityFields(t *testing.T) {
	spec := PartitionSpec{Fields: []PartitionField{
		{SourceID: 2, Name: "category", Transform: TransformIdentity},
		{SourceID: 4, Name: "day", Transform: TransformDay},
		{SourceID: 5, Name: "region", Transform: TransformIdentity},
	}}

	assert.Equal(t, map[int]struct{}{2: {}, 5: {}}, spec.IdentitySourceIDs(),
		"only identity-transformed fields are recoverable without the file")

	assert.Equal(t, 0, spec.IdentityFieldIndex(2))
	assert.Equal(t, 2, spec.IdentityFieldIndex(5))
	assert.Equal(t, -1, spec.IdentityFieldIndex(4), "a non-identity transform of the column doesn't count")
	assert.Equal(t, -1, spec.IdentityFieldIndex(9))
}

func TestFileFormatString(t *testing.T) {
	assert.Equal(t, "parquet", FormatParquet.String())
	assert.Equal(t, "json", FormatJSON.String())
	assert.Equal(t, "csv", FormatCSV.String())
	assert.Equal(t, "unknown", FormatUnknown.String())
}

func TestFileScanTaskIsVirtual(t *testing.T) {
	assert.False(t, FileScanTask{}.IsVirtual())
	assert.True(t, FileScanTask{Rows: []floe.Values{}}.IsVirtual())
}
