package scan

import (
	"github.com/pkg/errors"

	"github.com/floedb/floe"
	"github.com/floedb/floe/table"
)

// materializePartitionRow builds the constant tuple of identity-partitioned
// column values for one task, converting each value from its stored form
// into the output representation. The tuple is built once per task and
// joined onto every decoded row.
func materializePartitionRow(partitionSchema floe.Schema, spec table.PartitionSpec, values floe.Values) (floe.Row, error) {
	out := make(floe.Values, len(partitionSchema.Fields))
	for i, field := range partitionSchema.Fields {
		pos := spec.IdentityFieldIndex(field.ID)
		if pos == -1 {
			return nil, errors.Errorf("no identity partition field for column '%s' (id %d)", field.Name, field.ID)
		}
		if pos >= len(values) {
			return nil, errors.Errorf("partition tuple has %d values, field '%s' needs position %d", len(values), field.Name, pos)
		}
		out[i] = convertPartitionValue(values[pos], field.Type)
	}
	return out, nil
}

func convertPartitionValue(value floe.Value, t floe.Type) floe.Value {
	if value.IsNull() {
		return value
	}

	switch t.TypeID {
	case floe.TypeIDString:
		if value.TypeID == floe.TypeIDBytes {
			return floe.NewString(string(value.Bytes))
		}
	case floe.TypeIDBytes:
		if value.TypeID == floe.TypeIDBytes {
			owned := make([]byte, len(value.Bytes))
			copy(owned, value.Bytes)
			return floe.NewBytes(owned)
		}
	case floe.TypeIDDecimal:
		if value.TypeID == floe.TypeIDDecimal {
			return floe.NewDecimal(value.Decimal.Round(t.Scale))
		}
	}
	return value
}
