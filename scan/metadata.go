package scan

import (
	"github.com/pkg/errors"

	"github.com/floedb/floe"
	"github.com/floedb/floe/table"
)

// MetadataFilePath is the synthetic column carrying the source file path of
// each row. It is the only metadata column supported for injection.
const MetadataFilePath = "_file"

// Reserved field id, guaranteed not to collide with table schema ids.
const metadataFilePathID = 2147483646

func metadataSchema(metaColumns []string) (floe.Schema, error) {
	fields := make([]floe.Field, len(metaColumns))
	for i, name := range metaColumns {
		if name != MetadataFilePath {
			return floe.Schema{}, errors.Errorf("unsupported metadata column '%s': only %s is supported", name, MetadataFilePath)
		}
		fields[i] = floe.Field{ID: metadataFilePathID, Name: MetadataFilePath, Type: floe.String}
	}
	return floe.Schema{Fields: fields}, nil
}

func metadataRow(metaColumns []string, file table.DataFile) floe.Row {
	values := make(floe.Values, len(metaColumns))
	for i := range metaColumns {
		values[i] = floe.NewString(file.Path)
	}
	return values
}
