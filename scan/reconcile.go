package scan

import (
	"github.com/pkg/errors"

	"github.com/floedb/floe"
	"github.com/floedb/floe/table"
)

// readPlan is the per-task decision of which columns come from the file,
// which are synthesized, and how the assembled row maps into the final
// column order. Resolved once per task; every row then flows through the
// same pipeline regardless of which shape was picked.
type readPlan struct {
	// readSchema is what the format reader is asked to decode.
	readSchema floe.Schema
	// constant is the partition/metadata tuple joined onto every decoded
	// row, nil when nothing is injected.
	constant floe.Row
	// project maps the assembled intermediate row into final column order.
	project *projection
}

func planTaskRead(task table.FileScanTask, tableSchema, expectedSchema floe.Schema, metaColumns []string, caseSensitive bool) (*readPlan, error) {
	metaSchema, err := metadataSchema(metaColumns)
	if err != nil {
		return nil, err
	}

	// finalSchema is what rows returned to the caller look like.
	finalSchema, err := expectedSchema.Join(metaSchema)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't extend expected schema with metadata columns")
	}

	idColumns := task.Spec.IdentitySourceIDs()

	// requiredSchema covers projection plus residual filtering: the file
	// pruning step may leave residual columns that are not in the output.
	var residualRefs []string
	if task.Residual != nil {
		residualRefs = task.Residual.References()
	}
	requiredSchema := tableSchema.Prune(finalSchema, residualRefs, caseSensitive)

	hasJoinedPartitionColumns := len(idColumns) > 0
	hasExtraFilterColumns := len(requiredSchema.Fields) != len(finalSchema.Fields)

	var iterSchema floe.Schema
	plan := &readPlan{}

	switch {
	case hasJoinedPartitionColumns || len(metaColumns) > 0:
		// Identity-partitioned columns never come from the file; read the
		// rest and join the constant partition/metadata tuple onto each row.
		plan.readSchema = requiredSchema.SelectNot(idColumns)
		partitionSchema := requiredSchema.Select(idColumns)
		partitionRow, err := materializePartitionRow(partitionSchema, task.Spec, task.File.PartitionValues)
		if err != nil {
			return nil, err
		}

		joinedSchema := partitionSchema
		joinedRow := partitionRow
		if len(metaColumns) > 0 {
			if joinedSchema, err = partitionSchema.Join(metaSchema); err != nil {
				return nil, errors.Wrap(err, "couldn't join metadata columns onto partition schema")
			}
			joinedRow = floe.JoinRows(partitionRow, metadataRow(metaColumns, task.File))
		}

		if iterSchema, err = plan.readSchema.Join(joinedSchema); err != nil {
			return nil, errors.Wrap(err, "couldn't join partition columns onto read schema")
		}
		plan.constant = joinedRow

	case hasExtraFilterColumns:
		plan.readSchema = requiredSchema
		iterSchema = requiredSchema

	default:
		plan.readSchema = finalSchema
		iterSchema = finalSchema
	}

	if plan.project, err = newProjection(finalSchema, iterSchema, caseSensitive); err != nil {
		return nil, err
	}
	return plan, nil
}

// projection re-orders an intermediate row into the final column order by
// name-matched lookup, so callers never observe column-order drift caused by
// the read-plan shape.
type projection struct {
	slots []int
}

func newProjection(finalSchema, iterSchema floe.Schema, caseSensitive bool) (*projection, error) {
	slots := make([]int, len(finalSchema.Fields))
	for i, field := range finalSchema.Fields {
		slots[i] = iterSchema.IndexOf(field.Name, caseSensitive)
		if slots[i] == -1 {
			return nil, errors.Errorf("couldn't project column '%s': not present in the assembled row schema %s", field.Name, iterSchema)
		}
	}
	return &projection{slots: slots}, nil
}

func (p *projection) apply(row floe.Row) floe.Row {
	out := make(floe.Values, len(p.slots))
	for i, slot := range p.slots {
		out[i] = row.Get(slot)
	}
	return out
}
