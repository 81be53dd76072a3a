// Package scan turns a logical table scan into a memoized list of physical
// task groups and assembles each group's files back into projected rows.
package scan

import (
	"context"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/floedb/floe"
	"github.com/floedb/floe/expr"
	"github.com/floedb/floe/table"
)

// Scan option keys recognized by NewBatchScan. All optional; absent options
// fall back to the table format's own defaults.
const (
	OptionSnapshotID        = "snapshot-id"
	OptionAsOfTimestamp     = "as-of-timestamp"
	OptionSplitSize         = "split-size"
	OptionSplitLookback     = "lookback"
	OptionSplitOpenFileCost = "file-open-cost"
)

// BatchScan is an immutable logical scan over one table snapshot. It plans
// once (memoized per instance and process-wide by cache key) and hands out
// one independently consumable partition descriptor per planned task group.
type BatchScan struct {
	table          table.Table
	caseSensitive  bool
	expectedSchema floe.Schema
	readSchema     floe.Schema
	metaColumns    []string
	filters        []expr.Expression

	snapshotID        *int64
	asOfTimestamp     *int64
	splitSize         *int64
	splitLookback     *int64
	splitOpenFileCost *int64

	mu         sync.Mutex
	taskGroups []table.TaskGroup
}

// NewBatchScan validates the scan configuration and fails fast on
// contradictory snapshot selection or unsupported metadata columns, before
// any planning or file access happens.
func NewBatchScan(tbl table.Table, caseSensitive bool, expectedSchema floe.Schema, metaColumns []string, filters []expr.Expression, options map[string]string) (*BatchScan, error) {
	s := &BatchScan{
		table:          tbl,
		caseSensitive:  caseSensitive,
		expectedSchema: expectedSchema,
		metaColumns:    metaColumns,
		filters:        filters,
	}

	var err error
	if s.snapshotID, err = optionalInt(options, OptionSnapshotID); err != nil {
		return nil, err
	}
	if s.asOfTimestamp, err = optionalInt(options, OptionAsOfTimestamp); err != nil {
		return nil, err
	}
	if s.snapshotID != nil && s.asOfTimestamp != nil {
		return nil, errors.Errorf("cannot scan using both %s and %s to select the table snapshot", OptionSnapshotID, OptionAsOfTimestamp)
	}

	if s.splitSize, err = optionalInt(options, OptionSplitSize); err != nil {
		return nil, err
	}
	if s.splitLookback, err = optionalInt(options, OptionSplitLookback); err != nil {
		return nil, err
	}
	if s.splitOpenFileCost, err = optionalInt(options, OptionSplitOpenFileCost); err != nil {
		return nil, err
	}

	metaSchema, err := metadataSchema(metaColumns)
	if err != nil {
		return nil, err
	}
	if s.readSchema, err = expectedSchema.Join(metaSchema); err != nil {
		return nil, errors.Wrap(err, "couldn't extend expected schema with metadata columns")
	}

	return s, nil
}

func optionalInt(options map[string]string, key string) (*int64, error) {
	raw, ok := options[key]
	if !ok {
		return nil, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't parse option %s value '%s'", key, raw)
	}
	return &value, nil
}

// ReadSchema is the column set and order every assembled row has: the
// expected schema extended with any requested metadata columns.
func (s *BatchScan) ReadSchema() floe.Schema {
	return s.readSchema
}

// PlanPartitions plans the scan (memoized) and returns one plain-data
// descriptor per task group, each reconstructable into a TaskReader with no
// shared state.
func (s *BatchScan) PlanPartitions(ctx context.Context) ([]*ReadTask, error) {
	groups, err := s.tasks(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*ReadTask, len(groups))
	for i := range groups {
		out[i] = &ReadTask{
			Group:          groups[i],
			TableSchema:    s.table.Schema(),
			ExpectedSchema: s.expectedSchema,
			MetaColumns:    s.metaColumns,
			CaseSensitive:  s.caseSensitive,
			IO:             s.table.IO(),
			Encryption:     s.table.Encryption(),
		}
	}
	return out, nil
}

// Stats is a scan size estimate summed from file metadata, not from decoding.
type Stats struct {
	SizeBytes int64
	Rows      int64
}

func (s *BatchScan) EstimateStatistics(ctx context.Context) (Stats, error) {
	groups, err := s.tasks(ctx)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	for i := range groups {
		for _, task := range groups[i].Tasks {
			stats.SizeBytes += task.Length
			stats.Rows += task.File.RecordCount
		}
	}
	return stats, nil
}

// tasks resolves the logical scan into task groups. Memoized twice: a
// per-instance lazy field (set only on success) over the process-wide
// planning cache keyed by the realized scan state.
func (s *BatchScan) tasks(ctx context.Context) ([]table.TaskGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.taskGroups != nil {
		return s.taskGroups, nil
	}

	sc := s.table.NewScan().
		CaseSensitive(s.caseSensitive).
		Project(s.expectedSchema)

	if s.snapshotID != nil {
		sc = sc.UseSnapshot(*s.snapshotID)
	}
	if s.asOfTimestamp != nil {
		sc = sc.AsOfTime(*s.asOfTimestamp)
	}
	if s.splitSize != nil {
		sc = sc.Option(table.SplitSize, strconv.FormatInt(*s.splitSize, 10))
	}
	if s.splitLookback != nil {
		sc = sc.Option(table.SplitLookback, strconv.FormatInt(*s.splitLookback, 10))
	}
	if s.splitOpenFileCost != nil {
		sc = sc.Option(table.SplitOpenFileCost, strconv.FormatInt(*s.splitOpenFileCost, 10))
	}
	for _, filter := range s.filters {
		sc = sc.Filter(filter)
	}

	key := cacheKeyFrom(sc, s.splitSize)
	groups, err := sharedPlanningCache.get(key, func() ([]table.TaskGroup, error) {
		return planTasks(ctx, sc)
	})
	if err != nil {
		return nil, err
	}

	s.taskGroups = groups
	return groups, nil
}

// planTasks materializes the collaborator's lazy task sequence into a
// concrete list, releasing the sequence whether or not materialization
// succeeded.
func planTasks(ctx context.Context, sc table.ScanBuilder) ([]table.TaskGroup, error) {
	groupsIter, err := sc.PlanTasks(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't plan scan tasks")
	}

	var groups []table.TaskGroup
	for groupsIter.Next() {
		groups = append(groups, groupsIter.TaskGroup())
	}
	planErr := groupsIter.Err()
	closeErr := groupsIter.Close()

	if planErr != nil {
		return nil, errors.Wrap(planErr, "couldn't materialize scan tasks")
	}
	if closeErr != nil {
		return nil, errors.Wrap(closeErr, "couldn't close table scan")
	}
	return groups, nil
}
