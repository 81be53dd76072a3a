package scan

import (
	"context"
	"sync/atomic"

	"github.com/floedb/floe"
	"github.com/floedb/floe/expr"
	"github.com/floedb/floe/table"
)

type fakeTable struct {
	name       string
	schema     floe.Schema
	io         table.FileIO
	encryption table.EncryptionManager
	current    *table.Snapshot
	groups     []table.TaskGroup

	planErr   error
	planCalls int32
	lastScan  *fakeScanBuilder
	lastIter  *fakeTaskGroups
}

func (t *fakeTable) Name() string {
	return t.name
}

func (t *fakeTable) Schema() floe.Schema {
	return t.schema
}

func (t *fakeTable) NewScan() table.ScanBuilder {
	sc := &fakeScanBuilder{tbl: t, snapshot: t.current}
	t.lastScan = sc
	return sc
}

func (t *fakeTable) IO() table.FileIO {
	if t.io == nil {
		return table.LocalFileIO{}
	}
	return t.io
}

func (t *fakeTable) Encryption() table.EncryptionManager {
	if t.encryption == nil {
		return table.PlaintextEncryption{}
	}
	return t.encryption
}

type fakeScanBuilder struct {
	tbl           *fakeTable
	caseSensitive bool
	projected     floe.Schema
	snapshot      *table.Snapshot
	asOf          *int64
	options       map[string]string
	filters       []expr.Expression
}

func (b *fakeScanBuilder) CaseSensitive(caseSensitive bool) table.ScanBuilder {
	b.caseSensitive = caseSensitive
	return b
}

func (b *fakeScanBuilder) Project(schema floe.Schema) table.ScanBuilder {
	b.projected = schema
	return b
}

func (b *fakeScanBuilder) UseSnapshot(snapshotID int64) table.ScanBuilder {
	b.snapshot = &table.Snapshot{ID: snapshotID}
	return b
}

func (b *fakeScanBuilder) AsOfTime(timestampMs int64) table.ScanBuilder {
	// Time travel resolves to the table's current snapshot in the fake.
	b.asOf = &timestampMs
	b.snapshot = b.tbl.current
	return b
}

func (b *fakeScanBuilder) Option(key, value string) table.ScanBuilder {
	if b.options == nil {
		b.options = map[string]string{}
	}
	b.options[key] = value
	return b
}

func (b *fakeScanBuilder) Filter(filter expr.Expression) table.ScanBuilder {
	b.filters = append(b.filters, filter)
	return b
}

func (b *fakeScanBuilder) Table() table.Table {
	return b.tbl
}

func (b *fakeScanBuilder) Snapshot() *table.Snapshot {
	return b.snapshot
}

func (b *fakeScanBuilder) CombinedFilter() expr.Expression {
	if len(b.filters) == 0 {
		return expr.AlwaysTrue()
	}
	return expr.And(b.filters...)
}

func (b *fakeScanBuilder) IsCaseSensitive() bool {
	return b.caseSensitive
}

func (b *fakeScanBuilder) PlanTasks(ctx context.Context) (table.TaskGroups, error) {
	atomic.AddInt32(&b.tbl.planCalls, 1)
	if b.tbl.planErr != nil {
		return nil, b.tbl.planErr
	}
	iter := &fakeTaskGroups{groups: b.tbl.groups, index: -1}
	b.tbl.lastIter = iter
	return iter, nil
}

type fakeTaskGroups struct {
	groups []table.TaskGroup
	index  int
	err    error
	closed bool
}

func (g *fakeTaskGroups) Next() bool {
	if g.index+1 >= len(g.groups) {
		return false
	}
	g.index++
	return true
}

func (g *fakeTaskGroups) TaskGroup() table.TaskGroup {
	return g.groups[g.index]
}

func (g *fakeTaskGroups) Err() error {
	return g.err
}

func (g *fakeTaskGroups) Close() error {
	g.closed = true
	return nil
}

// countingIO wraps a FileIO and counts file opens and closes, so tests can
// assert on the one-open-file-at-a-time and release-on-close behavior.
type countingIO struct {
	inner  table.FileIO
	opens  int32
	closes int32
}

func (io *countingIO) NewInputFile(location string) table.InputFile {
	return &countingInputFile{inner: io.inner.NewInputFile(location), io: io}
}

func (io *countingIO) openCount() int32 {
	return atomic.LoadInt32(&io.opens)
}

func (io *countingIO) closeCount() int32 {
	return atomic.LoadInt32(&io.closes)
}

type countingInputFile struct {
	inner table.InputFile
	io    *countingIO
}

func (f *countingInputFile) Location() string {
	return f.inner.Location()
}

func (f *countingInputFile) Size() (int64, error) {
	return f.inner.Size()
}

func (f *countingInputFile) Open() (table.File, error) {
	file, err := f.inner.Open()
	if err != nil {
		return nil, err
	}
	atomic.AddInt32(&f.io.opens, 1)
	return &countingFile{File: file, io: f.io}, nil
}

type countingFile struct {
	table.File
	io *countingIO
}

func (f *countingFile) Close() error {
	atomic.AddInt32(&f.io.closes, 1)
	return f.File.Close()
}

// countingEncryption records Decrypt calls and the number of files per call.
type countingEncryption struct {
	calls     int32
	fileCount int32
}

func (e *countingEncryption) Decrypt(files []table.EncryptedFile) ([]table.InputFile, error) {
	atomic.AddInt32(&e.calls, 1)
	atomic.AddInt32(&e.fileCount, int32(len(files)))
	return table.PlaintextEncryption{}.Decrypt(files)
}
