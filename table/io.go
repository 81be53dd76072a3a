package table

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// File is an open data file. Readers need random access (columnar footers
// live at the end of the file) on top of sequential reading.
type File interface {
	io.Reader
	io.ReaderAt
	io.Seeker
	io.Closer
}

// InputFile is a file that can be opened by location. It carries no open
// resources until Open is called.
type InputFile interface {
	Location() string
	Size() (int64, error)
	Open() (File, error)
}

// FileIO opens files by location.
type FileIO interface {
	NewInputFile(location string) InputFile
}

// LocalFileIO serves files from the local filesystem.
type LocalFileIO struct{}

func (LocalFileIO) NewInputFile(location string) InputFile {
	return localInputFile(location)
}

type localInputFile string

func (f localInputFile) Location() string {
	return string(f)
}

func (f localInputFile) Size() (int64, error) {
	stat, err := os.Stat(string(f))
	if err != nil {
		return 0, errors.Wrapf(err, "couldn't stat file %s", string(f))
	}
	return stat.Size(), nil
}

func (f localInputFile) Open() (File, error) {
	file, err := os.Open(string(f))
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't open file %s", string(f))
	}
	return file, nil
}
