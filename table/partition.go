package table

// Transform names how a partition field value is derived from its source
// column. Only identity-transformed fields carry the column value verbatim,
// which is what makes them recoverable without reading the file.
type Transform string

const (
	TransformIdentity Transform = "identity"
	TransformBucket   Transform = "bucket"
	TransformTruncate Transform = "truncate"
	TransformYear     Transform = "year"
	TransformMonth    Transform = "month"
	TransformDay      Transform = "day"
)

// PartitionField maps one partition tuple position to the source column it
// was derived from.
type PartitionField struct {
	SourceID  int
	Name      string
	Transform Transform
}

type PartitionSpec struct {
	Fields []PartitionField
}

// IdentitySourceIDs returns the source column ids whose values are constant
// per task and recoverable from the partition tuple.
func (s PartitionSpec) IdentitySourceIDs() map[int]struct{} {
	out := make(map[int]struct{}, len(s.Fields))
	for _, field := range s.Fields {
		if field.Transform == TransformIdentity {
			out[field.SourceID] = struct{}{}
		}
	}
	return out
}

// IdentityFieldIndex returns the position in the partition tuple of the
// identity field sourced from the given column id, or -1.
func (s PartitionSpec) IdentityFieldIndex(sourceID int) int {
	for i, field := range s.Fields {
		if field.SourceID == sourceID && field.Transform == TransformIdentity {
			return i
		}
	}
	return -1
}
