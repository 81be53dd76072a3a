// Package table defines the surface of the table-format collaborator: the
// handle a host engine registers, the scan builder used to plan, and the
// physical task model planning produces. The planning itself (snapshot
// resolution, file pruning, residual computation, split sizing) lives behind
// these interfaces.
package table

import (
	"context"

	"github.com/floedb/floe"
	"github.com/floedb/floe/expr"
)

// Table property keys recognized by ScanBuilder.Option for split sizing.
const (
	SplitSize         = "read.split.target-size"
	SplitLookback     = "read.split.planning-lookback"
	SplitOpenFileCost = "read.split.open-file-cost"
)

// Snapshot is one immutable, identified version of a table's contents.
type Snapshot struct {
	ID          int64
	TimestampMs int64
}

type Table interface {
	// Name returns the table's identity string. Two handles for the same
	// logical table must return equal names, it keys the planning cache.
	Name() string
	Schema() floe.Schema
	NewScan() ScanBuilder
	IO() FileIO
	Encryption() EncryptionManager
}

// ScanBuilder configures one logical scan. Builder methods return the
// builder for chaining; getters report the realized configuration after
// defaults and snapshot resolution are applied.
type ScanBuilder interface {
	CaseSensitive(caseSensitive bool) ScanBuilder
	Project(schema floe.Schema) ScanBuilder
	UseSnapshot(snapshotID int64) ScanBuilder
	AsOfTime(timestampMs int64) ScanBuilder
	Option(key, value string) ScanBuilder
	Filter(filter expr.Expression) ScanBuilder

	Table() Table
	// Snapshot returns the resolved snapshot the scan will read: the
	// requested one, or the table's latest when none was requested. Nil
	// means the table has no snapshot at all.
	Snapshot() *Snapshot
	// CombinedFilter returns the conjunction of all filters applied so far,
	// or the always-true expression.
	CombinedFilter() expr.Expression
	IsCaseSensitive() bool

	// PlanTasks resolves the scan into a lazy sequence of task groups. The
	// sequence must be closed whether or not it is fully consumed.
	PlanTasks(ctx context.Context) (TaskGroups, error)
}

// TaskGroups is a closeable lazy sequence of planned task groups. Next
// returns false when the sequence is exhausted or failed; Err distinguishes.
type TaskGroups interface {
	Next() bool
	TaskGroup() TaskGroup
	Err() error
	Close() error
}
