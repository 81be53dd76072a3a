package scan

import (
	"io"

	"github.com/pkg/errors"

	"github.com/floedb/floe"
	"github.com/floedb/floe/formats"
	"github.com/floedb/floe/table"
)

// ReadTask is the opaque partition descriptor handed to the host execution
// layer: one task group plus everything needed to read it in a worker with
// no shared process state. It holds no live resources; NewTaskReader is the
// boundary where files get opened.
type ReadTask struct {
	Group          table.TaskGroup
	TableSchema    floe.Schema
	ExpectedSchema floe.Schema
	MetaColumns    []string
	CaseSensitive  bool
	IO             table.FileIO
	Encryption     table.EncryptionManager
}

// TaskReader assembles one task group into a pull-based row stream. Tasks
// are opened strictly one at a time, in planned order; at most one file is
// open per reader.
type TaskReader struct {
	task       *ReadTask
	inputFiles map[string]table.InputFile

	index   int
	current *rowSource
	row     floe.Row
}

type rowSource struct {
	reader   formats.RowReader
	constant floe.Row
	project  *projection
}

// NewTaskReader decrypts every distinct file of the group in one batch call
// and eagerly opens the first task, so the reader either fails here or has a
// row source ready for the first Next.
func NewTaskReader(task *ReadTask) (*TaskReader, error) {
	inputFiles, err := batchDecrypt(task)
	if err != nil {
		return nil, err
	}

	r := &TaskReader{
		task:       task,
		inputFiles: inputFiles,
	}
	if len(task.Group.Tasks) == 0 {
		return r, nil
	}
	if err := r.openTask(0); err != nil {
		return nil, err
	}
	return r, nil
}

// batchDecrypt issues one decrypt call covering every distinct file in the
// group, amortizing any shared key-unwrap cost, and keys the result by file
// location for task opens.
func batchDecrypt(task *ReadTask) (map[string]table.InputFile, error) {
	var encrypted []table.EncryptedFile
	seen := map[string]struct{}{}
	for _, t := range task.Group.Tasks {
		if t.IsVirtual() {
			continue
		}
		if _, ok := seen[t.File.Path]; ok {
			continue
		}
		seen[t.File.Path] = struct{}{}
		encrypted = append(encrypted, table.EncryptedFile{
			Encrypted:   task.IO.NewInputFile(t.File.Path),
			KeyMetadata: t.File.KeyMetadata,
		})
	}
	if len(encrypted) == 0 {
		return nil, nil
	}

	decrypted, err := task.Encryption.Decrypt(encrypted)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't decrypt task group files")
	}

	inputFiles := make(map[string]table.InputFile, len(decrypted))
	for _, file := range decrypted {
		inputFiles[file.Location()] = file
	}
	return inputFiles, nil
}

// Next advances to the next row of the group. When the open task is
// exhausted its source is closed and the next task is opened, lazily, until
// the whole group is exhausted.
func (r *TaskReader) Next() (bool, error) {
	for {
		if r.current == nil {
			return false, nil
		}

		row, err := r.current.reader.Next()
		if err == io.EOF {
			if err := r.closeCurrent(); err != nil {
				return false, err
			}
			if r.index+1 < len(r.task.Group.Tasks) {
				if err := r.openTask(r.index + 1); err != nil {
					return false, err
				}
				continue
			}
			return false, nil
		} else if err != nil {
			// Decode failures propagate as-is; the caller abandons the
			// reader and releases it.
			return false, err
		}

		if r.current.constant != nil {
			row = floe.JoinRows(row, r.current.constant)
		}
		r.row = r.current.project.apply(row)
		return true, nil
	}
}

// Row returns the row made current by the last successful Next.
func (r *TaskReader) Row() floe.Row {
	return r.row
}

// Close releases the open row source, if any, and drains the remaining
// tasks without opening them, so partial consumption never leaks a file.
func (r *TaskReader) Close() error {
	r.index = len(r.task.Group.Tasks)
	if r.current == nil {
		return nil
	}
	current := r.current
	r.current = nil
	if err := current.reader.Close(); err != nil {
		return errors.Wrap(err, "couldn't close row source")
	}
	return nil
}

func (r *TaskReader) openTask(i int) error {
	t := r.task.Group.Tasks[i]

	plan, err := planTaskRead(t, r.task.TableSchema, r.task.ExpectedSchema, r.task.MetaColumns, r.task.CaseSensitive)
	if err != nil {
		return err
	}

	var in table.InputFile
	if !t.IsVirtual() {
		in = r.inputFiles[t.File.Path]
		if in == nil {
			return errors.Errorf("could not find decrypted input file for task file %s", t.File.Path)
		}
	}

	reader, err := formats.Open(in, t, plan.readSchema, r.task.TableSchema, r.task.CaseSensitive)
	if err != nil {
		return errors.Wrapf(err, "couldn't open task for file %s", t.File.Path)
	}

	r.index = i
	r.current = &rowSource{
		reader:   reader,
		constant: plan.constant,
		project:  plan.project,
	}
	return nil
}

func (r *TaskReader) closeCurrent() error {
	current := r.current
	r.current = nil
	if err := current.reader.Close(); err != nil {
		return errors.Wrap(err, "couldn't close exhausted row source")
	}
	return nil
}
